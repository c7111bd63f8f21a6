package cron

import (
	"context"
	"errors"
	"fmt"

	"github.com/jengamart/jengamart-backend/internal/payouts"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

const pendingPayoutBatchSize = 100

// PendingPayoutsJobParams configure the payout processing sweep.
type PendingPayoutsJobParams struct {
	Logger    *logger.Logger
	Repo      payouts.Repository
	Processor payouts.Processor
	BatchSize int
}

// NewPendingPayoutsJob builds the job that pushes pending payouts through the
// gateway.
func NewPendingPayoutsJob(params PendingPayoutsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("payouts repository required")
	}
	if params.Processor == nil {
		return nil, fmt.Errorf("payout processor required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = pendingPayoutBatchSize
	}
	return &pendingPayoutsJob{
		logg:      params.Logger,
		repo:      params.Repo,
		processor: params.Processor,
		batchSize: batchSize,
	}, nil
}

type pendingPayoutsJob struct {
	logg      *logger.Logger
	repo      payouts.Repository
	processor payouts.Processor
	batchSize int
}

func (j *pendingPayoutsJob) Name() string { return "pending-payouts" }

func (j *pendingPayoutsJob) Run(ctx context.Context) error {
	ids, err := j.repo.ListPendingIDs(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("list pending payouts: %w", err)
	}

	var (
		processed int
		halted    int
		errs      []error
	)
	for _, id := range ids {
		_, err := j.processor.ProcessPayout(ctx, id)
		if err != nil {
			logCtx := j.logg.WithPayoutID(ctx, id.String())
			if pkgerrors.IsCode(err, pkgerrors.CodeIntegrity) {
				// Drifted ledger: the payout stays pending for manual audit.
				halted++
				j.logg.Error(logCtx, "payout halted on ledger integrity check", err)
				continue
			}
			if pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
				continue
			}
			errs = append(errs, fmt.Errorf("payout %s: %w", id, err))
			j.logg.Error(logCtx, "payout processing failed", err)
			continue
		}
		processed++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"pending":   len(ids),
		"processed": processed,
		"halted":    halted,
		"failed":    len(errs),
	})
	j.logg.Info(logCtx, "pending payout sweep complete")
	return errors.Join(errs...)
}
