package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/homeshopping/homeshopping-backend/internal/basket"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxIsStaff contextKey = "is_staff"
	ctxSession contextKey = "basket_session"
)

// WithUser marks the request as authenticated.
func WithUser(ctx context.Context, userID uuid.UUID, isStaff bool) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxIsStaff, isStaff)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxUserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func IsStaffFromContext(ctx context.Context) bool {
	staff, _ := ctx.Value(ctxIsStaff).(bool)
	return staff
}

// ActorFromContext returns the basket actor for the request.
func ActorFromContext(ctx context.Context) basket.Actor {
	if id, ok := UserIDFromContext(ctx); ok {
		return basket.Authenticated(id)
	}
	return basket.Anonymous()
}

func WithSession(ctx context.Context, session *basket.Session) context.Context {
	return context.WithValue(ctx, ctxSession, session)
}

// SessionFromContext returns the basket session resolved by BasketIdentity.
func SessionFromContext(ctx context.Context) (*basket.Session, bool) {
	session, ok := ctx.Value(ctxSession).(*basket.Session)
	return session, ok && session != nil
}
