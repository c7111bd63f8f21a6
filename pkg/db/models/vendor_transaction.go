package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jengamart/jengamart-backend/pkg/enums"
)

// VendorTransaction is an immutable ledger row. Corrections are new offsetting
// rows, never updates. Invariant: BalanceAfterCents = BalanceBeforeCents +
// AmountCents, and replaying a vendor's rows in creation order reproduces the
// cached balances on the vendor record.
type VendorTransaction struct {
	ID       uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID uuid.UUID             `gorm:"column:vendor_id;type:uuid;not null"`
	Type     enums.TransactionType `gorm:"column:type;type:vendor_transaction_type;not null"`

	AmountCents        int64 `gorm:"column:amount_cents;not null"`
	BalanceBeforeCents int64 `gorm:"column:balance_before_cents;not null"`
	BalanceAfterCents  int64 `gorm:"column:balance_after_cents;not null"`

	OrderID  *uuid.UUID      `gorm:"column:order_id;type:uuid"`
	PayoutID *uuid.UUID      `gorm:"column:payout_id;type:uuid"`
	Metadata json.RawMessage `gorm:"column:metadata;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
