package controllers

import (
	"net/http"
	"strings"

	"github.com/homeshopping/homeshopping-backend/api/responses"
	"github.com/homeshopping/homeshopping-backend/api/validators"
	"github.com/homeshopping/homeshopping-backend/internal/checkout"
	"github.com/homeshopping/homeshopping-backend/pkg/logger"
)

type shippingAddressRequest struct {
	FirstName string `json:"first_name" validate:"max=255"`
	LastName  string `json:"last_name" validate:"max=255"`
	Line1     string `json:"line1" validate:"required,max=255"`
	Line2     string `json:"line2" validate:"max=255"`
	Phone     string `json:"phone" validate:"max=32"`
	Notes     string `json:"notes" validate:"max=1000"`
}

type checkoutRequest struct {
	BasketID        uint64                  `json:"basket_id" validate:"required"`
	GuestEmail      string                  `json:"guest_email"`
	ShippingAddress *shippingAddressRequest `json:"shipping_address"`
}

// Checkout turns the referenced basket into an order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := requestSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req checkoutRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Blank means absent; the service checks the address only for anonymous callers.
		input := checkout.Input{BasketID: req.BasketID, GuestEmail: strings.TrimSpace(req.GuestEmail)}
		if addr := req.ShippingAddress; addr != nil {
			input.ShippingAddress = &checkout.ShippingAddressInput{
				FirstName: addr.FirstName,
				LastName:  addr.LastName,
				Line1:     addr.Line1,
				Line2:     addr.Line2,
				Phone:     addr.Phone,
				Notes:     addr.Notes,
			}
		}

		order, err := svc.Checkout(r.Context(), session, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
