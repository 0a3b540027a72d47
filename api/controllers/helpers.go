package controllers

import (
	"net/http"

	"github.com/homeshopping/homeshopping-backend/api/middleware"
	"github.com/homeshopping/homeshopping-backend/internal/basket"
	pkgerrors "github.com/homeshopping/homeshopping-backend/pkg/errors"
)

// requestSession returns the basket session attached by BasketIdentity.
func requestSession(r *http.Request) (*basket.Session, error) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "basket session not resolved")
	}
	return session, nil
}
