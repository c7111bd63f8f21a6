package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jengamart/jengamart-backend/api/responses"
	"github.com/jengamart/jengamart-backend/api/validators"
	"github.com/jengamart/jengamart-backend/internal/ledger"
	"github.com/jengamart/jengamart-backend/internal/vendors"
	"github.com/jengamart/jengamart-backend/pkg/db/models"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

// TransactionResponse is the public shape of one ledger row.
type TransactionResponse struct {
	ID                 uuid.UUID       `json:"id"`
	VendorID           uuid.UUID       `json:"vendor_id"`
	Type               string          `json:"type"`
	AmountCents        int64           `json:"amount_cents"`
	BalanceBeforeCents int64           `json:"balance_before_cents"`
	BalanceAfterCents  int64           `json:"balance_after_cents"`
	OrderID            *uuid.UUID      `json:"order_id,omitempty"`
	PayoutID           *uuid.UUID      `json:"payout_id,omitempty"`
	Metadata           json.RawMessage `json:"metadata,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

func toTransactionResponse(txn *models.VendorTransaction) TransactionResponse {
	return TransactionResponse{
		ID:                 txn.ID,
		VendorID:           txn.VendorID,
		Type:               txn.Type.String(),
		AmountCents:        txn.AmountCents,
		BalanceBeforeCents: txn.BalanceBeforeCents,
		BalanceAfterCents:  txn.BalanceAfterCents,
		OrderID:            txn.OrderID,
		PayoutID:           txn.PayoutID,
		Metadata:           txn.Metadata,
		CreatedAt:          txn.CreatedAt,
	}
}

// ListVendorTransactions returns a vendor's ledger, optionally bounded by
// from/to timestamps.
func ListVendorTransactions(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		vendorID, err := validators.PathUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListByVendor(ctx, vendorID, from, to)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]TransactionResponse, 0, len(rows))
		for i := range rows {
			out = append(out, toTransactionResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// BalanceResponse reports the cached balances together with the ledger replay
// that proves them.
type BalanceResponse struct {
	VendorID             uuid.UUID `json:"vendor_id"`
	BalanceCents         int64     `json:"balance_cents"`
	PendingBalanceCents  int64     `json:"pending_balance_cents"`
	ReplayedBalanceCents int64     `json:"replayed_balance_cents"`
	Transactions         int       `json:"transactions"`
}

// VendorBalance verifies the vendor's ledger and returns the balances. A
// drifted ledger surfaces as an integrity error instead of a number.
func VendorBalance(svc ledger.Service, vendorsRepo vendors.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		vendorID, err := validators.PathUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		vendor, err := vendorsRepo.FindByID(ctx, vendorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		replay, err := svc.Verify(ctx, vendorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, BalanceResponse{
			VendorID:             vendor.ID,
			BalanceCents:         vendor.BalanceCents,
			PendingBalanceCents:  vendor.PendingBalanceCents,
			ReplayedBalanceCents: replay.BalanceCents,
			Transactions:         replay.Transactions,
		})
	}
}
