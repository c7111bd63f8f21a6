// Package cash settles payouts handed over in person. The acknowledgment is
// synchronous; the ledger work still happens in the shared completion
// transaction.
package cash

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/payments"
)

// Gateway is the cash implementation of payments.Gateway.
type Gateway struct{}

// NewGateway builds the cash gateway.
func NewGateway() *Gateway {
	return &Gateway{}
}

// Method implements payments.Gateway.
func (g *Gateway) Method() enums.PayoutMethod {
	return enums.PayoutMethodCash
}

// Payout records the hand-over and issues an internal reference.
func (g *Gateway) Payout(_ context.Context, order payments.PayoutOrder) (payments.Receipt, error) {
	if order.AmountCents <= 0 {
		return payments.Receipt{}, pkgerrors.New(pkgerrors.CodeValidation, "payout amount must be positive")
	}
	return payments.Receipt{
		TransactionRef: fmt.Sprintf("cash-%s", uuid.NewString()),
	}, nil
}
