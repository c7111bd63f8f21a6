package enums

import "fmt"

// TransactionType maps to the vendor_transaction_type enum in Postgres.
type TransactionType string

const (
	TransactionTypeSaleCommission   TransactionType = "sale_commission"
	TransactionTypePayout           TransactionType = "payout"
	TransactionTypeRefundAdjustment TransactionType = "refund_adjustment"
	TransactionTypeBonus            TransactionType = "bonus"
	TransactionTypePenalty          TransactionType = "penalty"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeSaleCommission,
	TransactionTypePayout,
	TransactionTypeRefundAdjustment,
	TransactionTypeBonus,
	TransactionTypePenalty,
}

// PayoutEligibleTransactionTypes lists the types that count toward a payout.
// Payout rows themselves never feed a later payout.
var PayoutEligibleTransactionTypes = []TransactionType{
	TransactionTypeSaleCommission,
	TransactionTypeRefundAdjustment,
	TransactionTypeBonus,
	TransactionTypePenalty,
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionType.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionType converts raw input into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
