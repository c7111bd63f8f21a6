package cron

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jengamart/jengamart-backend/internal/payouts"
	"github.com/jengamart/jengamart-backend/pkg/db/models"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
)

type fakeGenerator struct {
	runs    int
	created []uuid.UUID
	err     error
}

func (g *fakeGenerator) CalculateVendorPayout(ctx context.Context, vendorID uuid.UUID, periodStart, periodEnd time.Time) (*models.PayoutRequest, error) {
	return nil, nil
}

func (g *fakeGenerator) GenerateMonthlyPayouts(ctx context.Context) ([]uuid.UUID, error) {
	g.runs++
	return g.created, g.err
}

type fakeProcessor struct {
	processed []uuid.UUID
	errByID   map[uuid.UUID]error
}

func (p *fakeProcessor) ProcessPayout(ctx context.Context, payoutID uuid.UUID) (*models.PayoutRequest, error) {
	p.processed = append(p.processed, payoutID)
	if err, ok := p.errByID[payoutID]; ok {
		return nil, err
	}
	return &models.PayoutRequest{ID: payoutID}, nil
}

type fakePayoutsRepo struct {
	payouts.Repository

	pendingIDs []uuid.UUID
	listErr    error
	limit      int
}

func (r *fakePayoutsRepo) WithTx(tx *gorm.DB) payouts.Repository { return r }

func (r *fakePayoutsRepo) ListPendingIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	r.limit = limit
	return r.pendingIDs, r.listErr
}

func TestMonthlyPayoutsJobRunsOnlyOnFirstOfMonth(t *testing.T) {
	gen := &fakeGenerator{}
	job, err := NewMonthlyPayoutsJob(MonthlyPayoutsJobParams{Logger: cronTestLogger(), Generator: gen})
	require.NoError(t, err)
	assert.Equal(t, "monthly-payouts", job.Name())

	monthly := job.(*monthlyPayoutsJob)

	monthly.now = func() time.Time { return time.Date(2026, 8, 15, 3, 0, 0, 0, time.UTC) }
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 0, gen.runs)

	monthly.now = func() time.Time { return time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC) }
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, gen.runs)
}

func TestMonthlyPayoutsJobSurfacesVendorFailures(t *testing.T) {
	gen := &fakeGenerator{
		created: []uuid.UUID{uuid.New()},
		err:     fmt.Errorf("vendor x: ledger unavailable"),
	}
	job, err := NewMonthlyPayoutsJob(MonthlyPayoutsJobParams{Logger: cronTestLogger(), Generator: gen})
	require.NoError(t, err)

	job.(*monthlyPayoutsJob).now = func() time.Time { return time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC) }

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger unavailable")
}

func TestPendingPayoutsJobProcessesBatch(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	repo := &fakePayoutsRepo{pendingIDs: ids}
	proc := &fakeProcessor{}

	job, err := NewPendingPayoutsJob(PendingPayoutsJobParams{
		Logger:    cronTestLogger(),
		Repo:      repo,
		Processor: proc,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending-payouts", job.Name())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, ids, proc.processed)
	assert.Equal(t, pendingPayoutBatchSize, repo.limit)
}

func TestPendingPayoutsJobToleratesHaltsAndConflicts(t *testing.T) {
	halted := uuid.New()
	claimed := uuid.New()
	failed := uuid.New()
	healthy := uuid.New()

	repo := &fakePayoutsRepo{pendingIDs: []uuid.UUID{halted, claimed, failed, healthy}}
	proc := &fakeProcessor{errByID: map[uuid.UUID]error{
		halted:  pkgerrors.New(pkgerrors.CodeIntegrity, "ledger drift"),
		claimed: pkgerrors.New(pkgerrors.CodeStateConflict, "already claimed"),
		failed:  pkgerrors.New(pkgerrors.CodeDependency, "gateway down"),
	}}

	job, err := NewPendingPayoutsJob(PendingPayoutsJobParams{
		Logger:    cronTestLogger(),
		Repo:      repo,
		Processor: proc,
	})
	require.NoError(t, err)

	err = job.Run(context.Background())

	// Integrity halts and claim races are expected; only the real failure
	// surfaces. All four payouts were still attempted.
	require.Error(t, err)
	assert.Contains(t, err.Error(), failed.String())
	assert.NotContains(t, err.Error(), halted.String())
	assert.NotContains(t, err.Error(), claimed.String())
	assert.Len(t, proc.processed, 4)
}

func TestPendingPayoutsJobListError(t *testing.T) {
	repo := &fakePayoutsRepo{listErr: fmt.Errorf("db down")}
	job, err := NewPendingPayoutsJob(PendingPayoutsJobParams{
		Logger:    cronTestLogger(),
		Repo:      repo,
		Processor: &fakeProcessor{},
	})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list pending payouts")
}

func TestPendingPayoutsJobCustomBatchSize(t *testing.T) {
	repo := &fakePayoutsRepo{}
	job, err := NewPendingPayoutsJob(PendingPayoutsJobParams{
		Logger:    cronTestLogger(),
		Repo:      repo,
		Processor: &fakeProcessor{},
		BatchSize: 7,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 7, repo.limit)
}
