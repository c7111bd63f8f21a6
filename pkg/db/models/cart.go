package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jengamart/jengamart-backend/pkg/types"
)

// Cart is the splitter input: a buyer's multi-vendor line-item set plus one
// shared shipping address.
type Cart struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID         uuid.UUID      `gorm:"column:buyer_id;type:uuid;not null"`
	Status          string         `gorm:"column:status;not null;default:'active'"`
	ShippingAddress *types.Address `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Items           []CartItem     `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

const (
	CartStatusActive     = "active"
	CartStatusCheckedOut = "checked_out"
)

// CartItem is a single line tagged with the vendor that fulfills it.
type CartItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID  `gorm:"column:cart_id;type:uuid;not null"`
	VendorID       uuid.UUID  `gorm:"column:vendor_id;type:uuid;not null"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid"`
	Name           string     `gorm:"column:name;not null"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents;not null"`
	Qty            int        `gorm:"column:qty;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
