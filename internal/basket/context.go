package basket

import (
	"github.com/google/uuid"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
)

// Actor is the caller of a basket operation: anonymous, or a stable user id.
type Actor struct {
	UserID *uuid.UUID
}

// Anonymous returns an actor without a user identity.
func Anonymous() Actor {
	return Actor{}
}

// Authenticated returns an actor bound to userID.
func Authenticated(userID uuid.UUID) Actor {
	id := userID
	return Actor{UserID: &id}
}

func (a Actor) IsAuthenticated() bool {
	return a.UserID != nil && *a.UserID != uuid.Nil
}

// RequestContext is everything the resolver needs from one inbound request.
// BasketToken is the raw, unverified basket reference presented by the caller.
type RequestContext struct {
	Actor       Actor
	BasketToken string
}

// Session is the result of resolving a RequestContext. It is built once per
// request and handed to every basket and checkout operation.
type Session struct {
	Actor  Actor
	Basket *models.Basket

	// ClearToken asks the transport to drop the inbound basket reference.
	ClearToken bool

	// referencedID is the basket id carried by a valid inbound reference.
	referencedID uint64
	// presentedID is the id a valid inbound reference named, even when that
	// basket is no longer open.
	presentedID uint64
}

// PresentedBasketID returns the basket id named by the caller's verified
// reference, or 0 when none was presented.
func (s *Session) PresentedBasketID() uint64 {
	if s == nil {
		return 0
	}
	return s.presentedID
}

// NeedsToken reports whether an anonymous caller holds a persisted basket it
// has no valid reference for yet.
func (s *Session) NeedsToken() bool {
	if s == nil || s.Actor.IsAuthenticated() || !s.Basket.IsPersisted() {
		return false
	}
	return s.referencedID != s.Basket.ID
}

func newTransientBasket(actor Actor) *models.Basket {
	return &models.Basket{OwnerID: actor.UserID, Status: enums.BasketStatusOpen}
}
