package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jengamart/jengamart-backend/api/responses"
	"github.com/jengamart/jengamart-backend/api/validators"
	"github.com/jengamart/jengamart-backend/internal/payouts"
	"github.com/jengamart/jengamart-backend/pkg/db/models"
	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

// PayoutResponse is the public shape of a payout request.
type PayoutResponse struct {
	ID             uuid.UUID  `json:"id"`
	VendorID       uuid.UUID  `json:"vendor_id"`
	PeriodStart    time.Time  `json:"period_start"`
	PeriodEnd      time.Time  `json:"period_end"`
	AmountCents    int64      `json:"amount_cents"`
	Currency       string     `json:"currency"`
	Method         string     `json:"method"`
	Status         string     `json:"status"`
	Transactions   int        `json:"transactions,omitempty"`
	TransactionRef *string    `json:"transaction_ref,omitempty"`
	FailureReason  *string    `json:"failure_reason,omitempty"`
	ProcessingAt   *time.Time `json:"processing_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	FailedAt       *time.Time `json:"failed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toPayoutResponse(payout *models.PayoutRequest) PayoutResponse {
	return PayoutResponse{
		ID:             payout.ID,
		VendorID:       payout.VendorID,
		PeriodStart:    payout.PeriodStart,
		PeriodEnd:      payout.PeriodEnd,
		AmountCents:    payout.AmountCents,
		Currency:       string(payout.Currency),
		Method:         payout.Method.String(),
		Status:         payout.Status.String(),
		Transactions:   len(payout.Items),
		TransactionRef: payout.TransactionRef,
		FailureReason:  payout.FailureReason,
		ProcessingAt:   payout.ProcessingAt,
		CompletedAt:    payout.CompletedAt,
		FailedAt:       payout.FailedAt,
		CreatedAt:      payout.CreatedAt,
	}
}

type generatePayoutRequest struct {
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required"`
}

// GenerateVendorPayout creates a pending payout for one vendor and period.
func GenerateVendorPayout(gen payouts.Generator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		vendorID, err := validators.PathUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req generatePayoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		payout, err := gen.CalculateVendorPayout(ctx, vendorID, req.PeriodStart, req.PeriodEnd)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payout == nil {
			responses.WriteSuccess(w, map[string]any{"created": false})
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toPayoutResponse(payout))
	}
}

// GenerateMonthlyPayouts runs the previous-month payout sweep for all active
// vendors.
func GenerateMonthlyPayouts(gen payouts.Generator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ids, err := gen.GenerateMonthlyPayouts(ctx)
		if err != nil && len(ids) == 0 {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		payload := map[string]any{"payout_ids": ids}
		if err != nil {
			payload["partial_failure"] = err.Error()
		}
		responses.WriteSuccess(w, payload)
	}
}

// ProcessPayout drives one payout through the gateway.
func ProcessPayout(proc payouts.Processor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		payoutID, err := validators.PathUUID(r, "payoutId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		payout, err := proc.ProcessPayout(ctx, payoutID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, toPayoutResponse(payout))
	}
}

// ListPayouts returns payouts filtered by vendor and status.
func ListPayouts(repo payouts.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		filter := payouts.ListFilter{}

		if raw := r.URL.Query().Get("vendor_id"); raw != "" {
			vendorID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vendor_id must be a uuid"))
				return
			}
			filter.VendorID = &vendorID
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParsePayoutStatus(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = &status
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 500)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filter.Limit = limit

		rows, err := repo.List(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]PayoutResponse, 0, len(rows))
		for i := range rows {
			out = append(out, toPayoutResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// ListVendorCompletedPayouts is the vendor-facing history of disbursements.
func ListVendorCompletedPayouts(repo payouts.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		vendorID, err := validators.PathUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		completed := enums.PayoutStatusCompleted
		rows, err := repo.List(ctx, payouts.ListFilter{VendorID: &vendorID, Status: &completed})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]PayoutResponse, 0, len(rows))
		for i := range rows {
			out = append(out, toPayoutResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
