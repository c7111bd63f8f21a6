package cash

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
	assert.Equal(t, enums.PayoutMethodCash, NewGateway().Method())
}

func TestGatewayPayout(t *testing.T) {
	receipt, err := NewGateway().Payout(context.Background(), payments.PayoutOrder{
		PayoutID:    uuid.New(),
		AmountCents: 2500,
		Currency:    enums.CurrencyKES,
	})
	require.NoError(t, err)
	assert.Contains(t, receipt.TransactionRef, "cash-")
}

func TestGatewayPayoutRejectsNonPositiveAmount(t *testing.T) {
	_, err := NewGateway().Payout(context.Background(), payments.PayoutOrder{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
