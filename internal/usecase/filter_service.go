package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/logging"
)

// RequestRefitPriority outranks any pending-count priority. It stays well
// inside the range a float64 sorted-set score represents exactly.
const RequestRefitPriority int64 = 1 << 52

type FilterService struct {
	filters  filter.Repository
	enqueuer RecalcEnqueuer
	logger   *logging.Logger
}

func NewFilterService(filters filter.Repository, enqueuer RecalcEnqueuer, logger *logging.Logger) *FilterService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FilterService{filters: filters, enqueuer: enqueuer, logger: logger}
}

func (s *FilterService) Get(ctx context.Context, filterID int64) (filter.Filter, error) {
	if filterID <= 0 {
		return filter.Filter{}, fmt.Errorf("%w: filter id must be greater than zero", ErrInvalidInput)
	}
	f, exists, err := s.filters.GetByID(ctx, filterID)
	if err != nil {
		return filter.Filter{}, fmt.Errorf("get filter: %w", err)
	}
	if !exists {
		return filter.Filter{}, fmt.Errorf("%w: filter=%d", ErrNotFound, filterID)
	}
	return f, nil
}

func (s *FilterService) List(ctx context.Context) ([]filter.Filter, error) {
	items, err := s.filters.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	return items, nil
}

// Upsert stores filter metadata. Changing a tier or ranked flag reprices the
// whole filter, so a refit is requested ahead of routine work.
func (s *FilterService) Upsert(ctx context.Context, f filter.Filter) (filter.Filter, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FilterService.Upsert", attribute.Int64("filter.id", f.ID))
	defer span.End()

	if err := validateFilter(f); err != nil {
		return filter.Filter{}, err
	}

	prev, existed, err := s.filters.GetByID(ctx, f.ID)
	if err != nil {
		return filter.Filter{}, fmt.Errorf("get filter: %w", err)
	}
	if err := s.filters.Upsert(ctx, f); err != nil {
		return filter.Filter{}, fmt.Errorf("upsert filter: %w", err)
	}

	if existed && prev.ScoringChanged(f) {
		if err := s.enqueuer.EnqueueFilter(ctx, f.ID, RequestRefitPriority); err != nil {
			s.logger.WarnContext(ctx, "enqueue refit after filter change failed", "filter_id", f.ID, "error", err)
		} else {
			s.logger.InfoContext(ctx, "filter scoring changed, refit requested", "filter_id", f.ID)
		}
	}

	stored, _, err := s.filters.GetByID(ctx, f.ID)
	if err != nil {
		return filter.Filter{}, fmt.Errorf("reload filter: %w", err)
	}
	return stored, nil
}

func validateFilter(f filter.Filter) error {
	switch {
	case f.ID <= 0:
		return fmt.Errorf("%w: filter id must be greater than zero", ErrInvalidInput)
	case f.CourseID <= 0:
		return fmt.Errorf("%w: course id must be greater than zero", ErrInvalidInput)
	case !f.Mode.Valid():
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, f.Mode)
	case !f.NubTier.Valid() || !f.ProTier.Valid():
		return fmt.Errorf("%w: %v", ErrInvalidInput, filter.ErrInvalidTier)
	}
	return nil
}
