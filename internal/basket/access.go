package basket

import "github.com/homeshopping/homeshopping-backend/pkg/db/models"

// Allows reports whether the session may read or change resource. Baskets and
// basket lines are the only guarded kinds; anything else is refused.
func Allows(session *Session, resource any) bool {
	if session == nil {
		return false
	}
	switch r := resource.(type) {
	case *models.Basket:
		return basketAllowed(session, r)
	case *models.BasketLine:
		if r == nil || !session.Basket.IsPersisted() || r.BasketID != session.Basket.ID {
			return false
		}
		return basketAllowed(session, session.Basket)
	default:
		return false
	}
}

// An editable basket is open to its owner, or to the anonymous caller it was
// resolved for.
func basketAllowed(session *Session, basket *models.Basket) bool {
	if basket == nil || !basket.CanBeEdited() {
		return false
	}
	if session.Actor.IsAuthenticated() {
		return basket.IsOwnedBy(*session.Actor.UserID)
	}
	return basket.IsAnonymous() && session.Basket.IsPersisted() && session.Basket.ID == basket.ID
}
