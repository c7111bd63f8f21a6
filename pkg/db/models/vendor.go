package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jengamart/jengamart-backend/pkg/enums"
)

// Vendor is a selling party on the marketplace. BalanceCents is the lifetime
// net amount earned (commission already deducted); PendingBalanceCents is the
// portion earned but not yet disbursed. Both are caches over the transaction
// ledger and must always tie to it.
type Vendor struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string             `gorm:"column:name;not null"`
	Email          *string            `gorm:"column:email"`
	Status         enums.VendorStatus `gorm:"column:status;type:vendor_status;not null;default:'active'"`
	CommissionRate *decimal.Decimal   `gorm:"column:commission_rate;type:numeric(5,2)"`

	BalanceCents        int64 `gorm:"column:balance_cents;not null;default:0"`
	PendingBalanceCents int64 `gorm:"column:pending_balance_cents;not null;default:0"`

	PayoutMethod        enums.PayoutMethod `gorm:"column:payout_method;type:payout_method;not null;default:'mobile_money'"`
	MobileMoneyProvider *string            `gorm:"column:mobile_money_provider"`
	MobileMoneyPhone    *string            `gorm:"column:mobile_money_phone"`
	BankName            *string            `gorm:"column:bank_name"`
	BankAccount         *string            `gorm:"column:bank_account"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectiveCommissionRate resolves the vendor override against the platform default.
func (v *Vendor) EffectiveCommissionRate(platformDefault decimal.Decimal) decimal.Decimal {
	if v != nil && v.CommissionRate != nil {
		return *v.CommissionRate
	}
	return platformDefault
}
