package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/homeshopping/homeshopping-backend/pkg/errors"
)

type addressBody struct {
	Line1 string `json:"line1" validate:"required"`
}

type checkoutBody struct {
	BasketID        uint64       `json:"basket_id" validate:"required"`
	GuestEmail      string       `json:"guest_email" validate:"omitempty,email"`
	ShippingAddress *addressBody `json:"shipping_address"`
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		body    string
		wantErr bool
		field   string
	}{
		{name: "valid", body: `{"basket_id":7,"guest_email":"a@b.co"}`},
		{name: "unknown field", body: `{"basket_id":7,"coupon":"X"}`, wantErr: true},
		{name: "missing basket", body: `{}`, wantErr: true, field: "basket_id"},
		{name: "bad email", body: `{"basket_id":7,"guest_email":"nope"}`, wantErr: true, field: "guest_email"},
		{name: "nested", body: `{"basket_id":7,"shipping_address":{}}`, wantErr: true, field: "shipping_address.line1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dest checkoutBody
			err := DecodeJSONBody(httptest.NewRecorder(), req, &dest)
			if !tc.wantErr {
				require.NoError(t, err)
				require.Equal(t, uint64(7), dest.BasketID)
				return
			}
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
			if tc.field != "" {
				details, ok := pkgerrors.As(err).Details().(map[string]string)
				require.True(t, ok)
				require.Contains(t, details, tc.field)
			}
		})
	}
}

func TestParseIDParam(t *testing.T) {
	t.Parallel()

	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("basketID", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	id, err := ParseIDParam(withParam("42"), "basketID")
	require.NoError(t, err)
	require.Equal(t, uint64(42), id)

	for _, raw := range []string{"", "0", "-1", "abc"} {
		_, err := ParseIDParam(withParam(raw), "basketID")
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), raw)
	}
}

func TestParsePagination(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/?limit=10&cursor=abc", nil)
	params, err := ParsePagination(req)
	require.NoError(t, err)
	require.Equal(t, 10, params.Limit)
	require.Equal(t, "abc", params.Cursor)

	_, err = ParsePagination(httptest.NewRequest(http.MethodGet, "/?limit=1000", nil))
	require.Error(t, err)
}
