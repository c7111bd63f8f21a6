package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jengamart/jengamart-backend/internal/vendors"
	"github.com/jengamart/jengamart-backend/pkg/db"
	"github.com/jengamart/jengamart-backend/pkg/db/models"
	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS vendors (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  commission_rate TEXT,
  balance_cents INTEGER NOT NULL DEFAULT 0,
  pending_balance_cents INTEGER NOT NULL DEFAULT 0,
  payout_method TEXT NOT NULL DEFAULT 'mobile_money',
  mobile_money_provider TEXT,
  mobile_money_phone TEXT,
  bank_name TEXT,
  bank_account TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS vendor_transactions (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  balance_before_cents INTEGER NOT NULL,
  balance_after_cents INTEGER NOT NULL,
  order_id TEXT,
  payout_id TEXT,
  metadata TEXT,
  created_at DATETIME
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS uq_vendor_transactions_order_commission
  ON vendor_transactions (order_id)
  WHERE type = 'sale_commission';`,
	}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newLedgerService(t *testing.T, conn *gorm.DB) (Service, vendors.Repository, *db.Client) {
	t.Helper()

	client, err := db.NewFromConn(conn)
	require.NoError(t, err)

	vendorsRepo := vendors.NewRepository(conn)
	svc, err := NewService(NewRepository(conn), vendorsRepo, newTestLogger())
	require.NoError(t, err)
	return svc, vendorsRepo, client
}

func seedVendor(t *testing.T, conn *gorm.DB) *models.Vendor {
	t.Helper()

	vendor := &models.Vendor{
		ID:     uuid.New(),
		Name:   "Mama Njeri Electronics",
		Status: enums.VendorStatusActive,
	}
	require.NoError(t, conn.Create(vendor).Error)
	return vendor
}

func TestServiceAppendRecordsContiguousBalances(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc, vendorsRepo, client := newLedgerService(t, conn)
	vendor := seedVendor(t, conn)
	ctx := context.Background()

	orderID := uuid.New()
	var first *models.VendorTransaction
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		first, err = svc.Append(ctx, tx, AppendInput{
			VendorID:    vendor.ID,
			Type:        enums.TransactionTypeSaleCommission,
			AmountCents: 8500,
			OrderID:     &orderID,
			Metadata:    json.RawMessage(`{"gross_cents":10000}`),
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.BalanceBeforeCents)
	assert.Equal(t, int64(8500), first.BalanceAfterCents)

	secondOrder := uuid.New()
	var second *models.VendorTransaction
	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		second, err = svc.Append(ctx, tx, AppendInput{
			VendorID:    vendor.ID,
			Type:        enums.TransactionTypeSaleCommission,
			AmountCents: 4250,
			OrderID:     &secondOrder,
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8500), second.BalanceBeforeCents)
	assert.Equal(t, int64(12750), second.BalanceAfterCents)

	stored, err := vendorsRepo.FindByID(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12750), stored.BalanceCents)
	assert.Equal(t, int64(12750), stored.PendingBalanceCents)
}

func TestServiceAppendValidation(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc, _, client := newLedgerService(t, conn)
	vendor := seedVendor(t, conn)
	ctx := context.Background()

	tests := []struct {
		name  string
		input AppendInput
	}{
		{
			name:  "missing vendor id",
			input: AppendInput{Type: enums.TransactionTypeBonus, AmountCents: 100},
		},
		{
			name:  "invalid type",
			input: AppendInput{VendorID: vendor.ID, Type: enums.TransactionType("bogus"), AmountCents: 100},
		},
		{
			name:  "payout without payout id",
			input: AppendInput{VendorID: vendor.ID, Type: enums.TransactionTypePayout, AmountCents: -100},
		},
		{
			name:  "sale commission without order id",
			input: AppendInput{VendorID: vendor.ID, Type: enums.TransactionTypeSaleCommission, AmountCents: 100},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := client.WithTx(ctx, func(tx *gorm.DB) error {
				_, err := svc.Append(ctx, tx, tc.input)
				return err
			})
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "expected validation error, got %v", err)
		})
	}
}

func TestServiceAppendRollsBackWithTransaction(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc, vendorsRepo, client := newLedgerService(t, conn)
	vendor := seedVendor(t, conn)
	ctx := context.Background()

	orderID := uuid.New()
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := svc.Append(ctx, tx, AppendInput{
			VendorID:    vendor.ID,
			Type:        enums.TransactionTypeSaleCommission,
			AmountCents: 5000,
			OrderID:     &orderID,
		}); err != nil {
			return err
		}
		return fmt.Errorf("business write failed")
	})
	require.Error(t, err)

	stored, err := vendorsRepo.FindByID(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.BalanceCents)

	rows, err := svc.ListByVendor(ctx, vendor.ID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestServiceReplayBalanceReproducesCachedBalance(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc, _, client := newLedgerService(t, conn)
	vendor := seedVendor(t, conn)
	ctx := context.Background()

	amounts := []int64{8500, 4250, -6000, 1200}
	types := []enums.TransactionType{
		enums.TransactionTypeSaleCommission,
		enums.TransactionTypeSaleCommission,
		enums.TransactionTypePayout,
		enums.TransactionTypeBonus,
	}
	for i, amount := range amounts {
		input := AppendInput{VendorID: vendor.ID, Type: types[i], AmountCents: amount}
		switch types[i] {
		case enums.TransactionTypeSaleCommission:
			orderID := uuid.New()
			input.OrderID = &orderID
		case enums.TransactionTypePayout:
			payoutID := uuid.New()
			input.PayoutID = &payoutID
		}
		err := client.WithTx(ctx, func(tx *gorm.DB) error {
			_, err := svc.Append(ctx, tx, input)
			return err
		})
		require.NoError(t, err)
	}

	replay, err := svc.ReplayBalance(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, replay.Transactions)
	assert.Equal(t, int64(7950), replay.BalanceCents)

	verified, err := svc.Verify(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, replay.BalanceCents, verified.BalanceCents)
}

func TestServiceVerifyDetectsDriftedCachedBalance(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc, _, client := newLedgerService(t, conn)
	vendor := seedVendor(t, conn)
	ctx := context.Background()

	orderID := uuid.New()
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := svc.Append(ctx, tx, AppendInput{
			VendorID:    vendor.ID,
			Type:        enums.TransactionTypeSaleCommission,
			AmountCents: 8500,
			OrderID:     &orderID,
		})
		return err
	})
	require.NoError(t, err)

	// Simulate drift introduced outside the ledger.
	require.NoError(t, conn.Model(&models.Vendor{}).
		Where("id = ?", vendor.ID).
		Update("balance_cents", 9999).Error)

	_, err = svc.Verify(ctx, vendor.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeIntegrity), "expected integrity error, got %v", err)
}

func TestServiceReplayDetectsBrokenChain(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc, _, _ := newLedgerService(t, conn)
	vendor := seedVendor(t, conn)
	ctx := context.Background()

	// A row whose before/after pair skips ahead of the chain.
	row := &models.VendorTransaction{
		ID:                 uuid.New(),
		VendorID:           vendor.ID,
		Type:               enums.TransactionTypeBonus,
		AmountCents:        100,
		BalanceBeforeCents: 500,
		BalanceAfterCents:  600,
	}
	require.NoError(t, conn.Create(row).Error)

	_, err := svc.ReplayBalance(ctx, vendor.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeIntegrity))
}

func TestServiceHasOrderCommission(t *testing.T) {
	conn := setupLedgerTestDB(t)
	svc, _, client := newLedgerService(t, conn)
	vendor := seedVendor(t, conn)
	ctx := context.Background()

	orderID := uuid.New()
	seen, err := svc.HasOrderCommission(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, seen)

	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := svc.Append(ctx, tx, AppendInput{
			VendorID:    vendor.ID,
			Type:        enums.TransactionTypeSaleCommission,
			AmountCents: 8500,
			OrderID:     &orderID,
		})
		return err
	})
	require.NoError(t, err)

	seen, err = svc.HasOrderCommission(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, seen)
}
