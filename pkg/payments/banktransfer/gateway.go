// Package banktransfer settles payouts by bank transfer. Until the banking
// partner integration lands this path acknowledges synchronously, but it runs
// through the same completion transaction as every other method.
package banktransfer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/payments"
)

// Gateway is the bank-transfer implementation of payments.Gateway.
type Gateway struct{}

// NewGateway builds the bank transfer gateway.
func NewGateway() *Gateway {
	return &Gateway{}
}

// Method implements payments.Gateway.
func (g *Gateway) Method() enums.PayoutMethod {
	return enums.PayoutMethodBankTransfer
}

// Payout acknowledges the transfer and issues an internal reference.
func (g *Gateway) Payout(_ context.Context, order payments.PayoutOrder) (payments.Receipt, error) {
	if strings.TrimSpace(order.BankAccount) == "" {
		return payments.Receipt{}, pkgerrors.New(pkgerrors.CodeValidation, "bank account is required")
	}
	if order.AmountCents <= 0 {
		return payments.Receipt{}, pkgerrors.New(pkgerrors.CodeValidation, "payout amount must be positive")
	}
	return payments.Receipt{
		TransactionRef: fmt.Sprintf("bank-%s", uuid.NewString()),
	}, nil
}
