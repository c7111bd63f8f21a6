package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jengamart/jengamart-backend/pkg/enums"
	"github.com/jengamart/jengamart-backend/pkg/types"
)

// VendorOrder is the per-vendor order produced by splitting one checkout.
// CartGroupID correlates the sibling orders created from the same cart.
type VendorOrder struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartGroupID uuid.UUID         `gorm:"column:cart_group_id;type:uuid;not null"`
	CartID      uuid.UUID         `gorm:"column:cart_id;type:uuid;not null"`
	BuyerID     uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null"`
	VendorID    uuid.UUID         `gorm:"column:vendor_id;type:uuid;not null"`
	Currency    enums.Currency    `gorm:"column:currency;type:text;not null;default:'KES'"`
	Status      enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'created_pending'"`

	SubtotalCents    int64 `gorm:"column:subtotal_cents;not null"`
	ShippingFeeCents int64 `gorm:"column:shipping_fee_cents;not null;default:0"`
	TotalCents       int64 `gorm:"column:total_cents;not null"`

	ShippingAddress *types.Address `gorm:"column:shipping_address;type:jsonb;serializer:json"`

	CommissionProcessed   bool       `gorm:"column:commission_processed;not null;default:false"`
	CommissionProcessedAt *time.Time `gorm:"column:commission_processed_at"`
	PaidAt                *time.Time `gorm:"column:paid_at"`
	DeliveredAt           *time.Time `gorm:"column:delivered_at"`
	CanceledAt            *time.Time `gorm:"column:canceled_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// SettledForCommission reports whether the order reached the terminal
// "fulfilled and paid" state that triggers commission processing.
func (o *VendorOrder) SettledForCommission() bool {
	return o != nil && o.PaidAt != nil && o.DeliveredAt != nil && o.CanceledAt == nil
}
