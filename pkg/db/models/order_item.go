package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem snapshots a cart line at order-creation time. CommissionRate is
// frozen here; later changes to the vendor's rate never touch placed orders.
// CommissionAmountCents is written exactly once by commission processing.
type OrderItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID      *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	Name           string          `gorm:"column:name;not null"`
	UnitPriceCents int64           `gorm:"column:unit_price_cents;not null"`
	Qty            int             `gorm:"column:qty;not null"`
	CommissionRate decimal.Decimal `gorm:"column:commission_rate;type:numeric(5,2);not null"`

	CommissionAmountCents *int64 `gorm:"column:commission_amount_cents"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// RevenueCents is the gross revenue for the line.
func (i OrderItem) RevenueCents() int64 {
	return i.UnitPriceCents * int64(i.Qty)
}
