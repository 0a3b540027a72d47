package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the immutable snapshot produced by checkout.
type Order struct {
	ID                uint64           `gorm:"column:id;primaryKey;autoIncrement"`
	Number            string           `gorm:"column:number;not null;uniqueIndex:ux_orders_number"`
	Total             decimal.Decimal  `gorm:"column:total;type:numeric(12,2);not null"`
	GuestEmail        string           `gorm:"column:guest_email;not null;default:''"`
	BasketID          *uint64          `gorm:"column:basket_id"`
	UserID            *uuid.UUID       `gorm:"column:user_id;type:uuid;index"`
	User              *User            `gorm:"foreignKey:UserID"`
	ShippingAddressID *uint64          `gorm:"column:shipping_address_id"`
	ShippingAddress   *ShippingAddress `gorm:"foreignKey:ShippingAddressID"`
	Lines             []OrderLine      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DatePlaced        time.Time        `gorm:"column:date_placed;autoCreateTime"`
}

// IsAnonymous reports whether a guest placed the order.
func (o *Order) IsAnonymous() bool {
	return o.UserID == nil && strings.TrimSpace(o.GuestEmail) != ""
}

// Email resolves the contact address: the owner's email, else the guest email.
func (o *Order) Email() string {
	if o.User != nil {
		return o.User.Email
	}
	return o.GuestEmail
}

// OrderLine snapshots a basket line at checkout time.
type OrderLine struct {
	ID            uint64               `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID       uint64               `gorm:"column:order_id;not null;index"`
	ProductID     *uint64              `gorm:"column:product_id"`
	StockRecordID *uint64              `gorm:"column:stock_record_id"`
	Quantity      int                  `gorm:"column:quantity;not null"`
	Attributes    []OrderLineAttribute `gorm:"foreignKey:LineID;constraint:OnDelete:CASCADE"`
}

// OrderLineAttribute keeps a rendered product attribute value on an order line.
type OrderLineAttribute struct {
	ID     uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	LineID uint64 `gorm:"column:line_id;not null;index"`
	Type   string `gorm:"column:type;not null"`
	Value  string `gorm:"column:value;not null"`
}

// ShippingAddress is the optional delivery destination captured at checkout.
type ShippingAddress struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	FirstName string `gorm:"column:first_name;not null;default:''"`
	LastName  string `gorm:"column:last_name;not null;default:''"`
	Line1     string `gorm:"column:line1;not null"`
	Line2     string `gorm:"column:line2;not null;default:''"`
	Phone     string `gorm:"column:phone;not null;default:''"`
	Notes     string `gorm:"column:notes;not null;default:''"`
}
