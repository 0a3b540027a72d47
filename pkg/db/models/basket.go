package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/homeshopping/homeshopping-backend/pkg/enums"
)

// Basket is an actor's in-progress cart. A nil OwnerID marks an anonymous basket.
type Basket struct {
	ID            uint64             `gorm:"column:id;primaryKey;autoIncrement"`
	OwnerID       *uuid.UUID         `gorm:"column:owner_id;type:uuid;index"`
	Status        enums.BasketStatus `gorm:"column:status;not null;default:'Open'"`
	DateSubmitted *time.Time         `gorm:"column:date_submitted"`
	Lines         []BasketLine       `gorm:"foreignKey:BasketID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// IsPersisted reports whether the basket has been written to storage.
func (b *Basket) IsPersisted() bool {
	return b != nil && b.ID != 0
}

// IsAnonymous reports whether no user owns the basket.
func (b *Basket) IsAnonymous() bool {
	return b == nil || b.OwnerID == nil
}

// CanBeEdited reports whether the basket lines may still change.
func (b *Basket) CanBeEdited() bool {
	return b != nil && b.Status.IsEditable()
}

// IsOwnedBy reports whether userID owns the basket.
func (b *Basket) IsOwnedBy(userID uuid.UUID) bool {
	return b != nil && b.OwnerID != nil && *b.OwnerID == userID
}
