package enums

import "fmt"

// PayoutMethod describes how a vendor receives a disbursement.
type PayoutMethod string

const (
	PayoutMethodMobileMoney  PayoutMethod = "mobile_money"
	PayoutMethodBankTransfer PayoutMethod = "bank_transfer"
	PayoutMethodCash         PayoutMethod = "cash"
)

var validPayoutMethods = []PayoutMethod{
	PayoutMethodMobileMoney,
	PayoutMethodBankTransfer,
	PayoutMethodCash,
}

// String implements fmt.Stringer.
func (m PayoutMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PayoutMethod.
func (m PayoutMethod) IsValid() bool {
	for _, candidate := range validPayoutMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePayoutMethod converts raw input into a PayoutMethod.
func ParsePayoutMethod(value string) (PayoutMethod, error) {
	for _, candidate := range validPayoutMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout method %q", value)
}
