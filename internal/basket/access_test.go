package basket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/homeshopping/homeshopping-backend/pkg/db/models"
	"github.com/homeshopping/homeshopping-backend/pkg/enums"
)

func TestAllows(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	other := uuid.New()
	owned := &models.Basket{ID: 1, OwnerID: &owner, Status: enums.BasketStatusOpen}
	frozen := &models.Basket{ID: 2, OwnerID: &owner, Status: enums.BasketStatusFrozen}
	anon := &models.Basket{ID: 3, Status: enums.BasketStatusOpen}
	otherAnon := &models.Basket{ID: 4, Status: enums.BasketStatusOpen}

	ownerSession := &Session{Actor: Authenticated(owner), Basket: owned}
	otherSession := &Session{Actor: Authenticated(other), Basket: &models.Basket{ID: 9, OwnerID: &other, Status: enums.BasketStatusOpen}}
	anonSession := &Session{Actor: Anonymous(), Basket: anon}
	transient := &Session{Actor: Anonymous(), Basket: newTransientBasket(Anonymous())}

	cases := []struct {
		name     string
		session  *Session
		resource any
		want     bool
	}{
		{"owner reads own basket", ownerSession, owned, true},
		{"owner frozen basket", ownerSession, frozen, false},
		{"other user", otherSession, owned, false},
		{"anonymous resolved basket", anonSession, anon, true},
		{"anonymous other basket", anonSession, otherAnon, false},
		{"anonymous owned basket", anonSession, owned, false},
		{"transient session", transient, anon, false},
		{"line in session basket", ownerSession, &models.BasketLine{ID: 1, BasketID: owned.ID}, true},
		{"line elsewhere", ownerSession, &models.BasketLine{ID: 2, BasketID: frozen.ID}, false},
		{"anonymous line", anonSession, &models.BasketLine{ID: 3, BasketID: anon.ID}, true},
		{"nil session", nil, owned, false},
		{"nil basket", ownerSession, (*models.Basket)(nil), false},
		{"unknown kind", ownerSession, &models.Order{ID: 1}, false},
		{"value not pointer", ownerSession, *owned, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Allows(tc.session, tc.resource))
		})
	}
}
