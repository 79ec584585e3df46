package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/record"
	"github.com/riskibarqy/kz-leaderboard/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/kz-leaderboard/internal/infrastructure/repository/memory"
	pointsmock "github.com/riskibarqy/kz-leaderboard/internal/mocks/domain/points"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/logging"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/nig"
)

var (
	t0         = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	testParams = nig.Params{A: 2, B: 1, Loc: 10, Scale: 5}
)

func rankedFilter(id int64) filter.Filter {
	return filter.Filter{
		ID:        id,
		CourseID:  id,
		Mode:      filter.ModeVanilla,
		NubTier:   filter.TierMedium,
		ProTier:   filter.TierHard,
		NubRanked: true,
		ProRanked: true,
		UpdatedAt: t0,
	}
}

type harness struct {
	store     *memory.Store
	scheduler *RecalcScheduler
	records   *RecordService
	recalc    *RecalcService
	boards    *LeaderboardService
	filters   *FilterService
	fitter    *pointsmock.Fitter
}

func newHarness(t *testing.T, filters ...filter.Filter) *harness {
	t.Helper()

	logger := logging.NewNop()
	st := memory.NewStore(filters...)
	sched := NewRecalcScheduler(RecalcSchedulerConfig{Workers: 1}, jobqueue.NewMemoryQueue(), jobqueue.NewMemoryQueue(), logger)
	fitter := pointsmock.NewFitter(t)

	h := &harness{
		store:     st,
		scheduler: sched,
		records:   NewRecordService(st, sched, DefaultRefitThreshold, logger),
		recalc:    NewRecalcService(st, fitter, sched, logger),
		boards:    NewLeaderboardService(st, sched),
		filters:   NewFilterService(st.Filters(), sched, logger),
		fitter:    fitter,
	}
	return h
}

// fitAlways makes the fitter succeed on any sample.
func (h *harness) fitAlways() {
	h.fitter.On("Fit", mock.Anything, mock.Anything).
		Return(func(_ context.Context, times []float64) (points.Distribution, error) {
			return points.NewDistribution(testParams, times)
		}).
		Maybe()
}

func (h *harness) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, h.scheduler.DrainOnce(context.Background(), h.recalc))
}

func (h *harness) submit(t *testing.T, playerID, filterID int64, seconds float64, teleports int, at time.Time) record.Record {
	t.Helper()
	rec, err := h.records.Submit(context.Background(), record.NewRecord{
		PlayerID:    playerID,
		FilterID:    filterID,
		Time:        seconds,
		Teleports:   teleports,
		SubmittedAt: at,
	})
	require.NoError(t, err)
	return rec
}
