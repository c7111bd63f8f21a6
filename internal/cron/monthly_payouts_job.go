package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/jengamart/jengamart-backend/internal/payouts"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

// MonthlyPayoutsJobParams configure the monthly payout generation job.
type MonthlyPayoutsJobParams struct {
	Logger    *logger.Logger
	Generator payouts.Generator
}

// NewMonthlyPayoutsJob builds the job that creates pending payouts for the
// previous calendar month. The generator itself is a no-op for vendors whose
// eligible earnings are below the minimum, so re-runs within the same month
// are safe.
func NewMonthlyPayoutsJob(params MonthlyPayoutsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Generator == nil {
		return nil, fmt.Errorf("payout generator required")
	}
	return &monthlyPayoutsJob{
		logg:      params.Logger,
		generator: params.Generator,
		now:       time.Now,
	}, nil
}

type monthlyPayoutsJob struct {
	logg      *logger.Logger
	generator payouts.Generator
	now       func() time.Time
}

func (j *monthlyPayoutsJob) Name() string { return "monthly-payouts" }

// Run generates payouts only on the first day of the month; the cron loop
// ticks far more often than the job needs to act.
func (j *monthlyPayoutsJob) Run(ctx context.Context) error {
	if j.now().UTC().Day() != 1 {
		return nil
	}

	created, err := j.generator.GenerateMonthlyPayouts(ctx)
	logCtx := j.logg.WithField(ctx, "created", len(created))
	if err != nil {
		j.logg.Warn(logCtx, "monthly payout generation finished with vendor failures")
		return err
	}
	j.logg.Info(logCtx, "monthly payout generation complete")
	return nil
}
