package banktransfer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/payments"
)

func TestGatewayMethod(t *testing.T) {
	assert.Equal(t, enums.PayoutMethodBankTransfer, NewGateway().Method())
}

func TestGatewayPayout(t *testing.T) {
	gw := NewGateway()

	receipt, err := gw.Payout(context.Background(), payments.PayoutOrder{
		PayoutID:    uuid.New(),
		AmountCents: 13500,
		Currency:    enums.CurrencyKES,
		BankName:    "Equity Bank",
		BankAccount: "0123456789",
	})
	require.NoError(t, err)
	assert.Contains(t, receipt.TransactionRef, "bank-")
}

func TestGatewayPayoutValidation(t *testing.T) {
	gw := NewGateway()

	t.Run("missing bank account", func(t *testing.T) {
		_, err := gw.Payout(context.Background(), payments.PayoutOrder{AmountCents: 100})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})

	t.Run("non positive amount", func(t *testing.T) {
		_, err := gw.Payout(context.Background(), payments.PayoutOrder{BankAccount: "0123456789"})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})
}
