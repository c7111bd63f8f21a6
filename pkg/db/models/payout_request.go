package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jengamart/jengamart-backend/pkg/enums"
)

// PayoutRequest is one vendor's disbursement for one period. Created pending,
// driven through pending -> processing -> completed/failed; terminal rows are
// never reopened. A failed payout's amount stays eligible for the next cycle
// because its items are released.
type PayoutRequest struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID    uuid.UUID          `gorm:"column:vendor_id;type:uuid;not null"`
	PeriodStart time.Time          `gorm:"column:period_start;not null"`
	PeriodEnd   time.Time          `gorm:"column:period_end;not null"`
	AmountCents int64              `gorm:"column:amount_cents;not null"`
	Currency    enums.Currency     `gorm:"column:currency;type:text;not null;default:'KES'"`
	Method      enums.PayoutMethod `gorm:"column:method;type:payout_method;not null"`
	Status      enums.PayoutStatus `gorm:"column:status;type:payout_status;not null;default:'pending'"`

	TransactionRef *string `gorm:"column:transaction_ref"`
	FailureReason  *string `gorm:"column:failure_reason"`

	ProcessingAt *time.Time `gorm:"column:processing_at"`
	CompletedAt  *time.Time `gorm:"column:completed_at"`
	FailedAt     *time.Time `gorm:"column:failed_at"`

	Items []VendorPayoutItem `gorm:"foreignKey:PayoutID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// VendorPayoutItem enumerates the ledger transactions bundled into a payout.
// TransactionID is unique among live rows (released_at IS NULL): an earned
// amount feeds at most one live payout. A failed payout stamps released_at
// instead of deleting, so the failed attempt's bundle stays auditable.
type VendorPayoutItem struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PayoutID      uuid.UUID  `gorm:"column:payout_id;type:uuid;not null"`
	TransactionID uuid.UUID  `gorm:"column:transaction_id;type:uuid;not null"`
	OrderID       *uuid.UUID `gorm:"column:order_id;type:uuid"`
	AmountCents   int64      `gorm:"column:amount_cents;not null"`
	ReleasedAt    *time.Time `gorm:"column:released_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
