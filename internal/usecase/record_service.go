package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/record"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/store"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/logging"
)

type RecordService struct {
	store      store.Store
	enqueuer   RecalcEnqueuer
	maintainer bestRecordMaintainer
	logger     *logging.Logger
	now        func() time.Time
}

func NewRecordService(st store.Store, enqueuer RecalcEnqueuer, refitThreshold int64, logger *logging.Logger) *RecordService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecordService{
		store:      st,
		enqueuer:   enqueuer,
		maintainer: newBestRecordMaintainer(refitThreshold),
		logger:     logger,
		now:        time.Now,
	}
}

// Submit stores a new run and refreshes the submitter's best records.
func (s *RecordService) Submit(ctx context.Context, in record.NewRecord) (record.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecordService.Submit",
		attribute.Int64("filter.id", in.FilterID), attribute.Int64("player.id", in.PlayerID))
	defer span.End()

	if in.Status == "" {
		in.Status = record.StatusNormal
	}
	if in.SubmittedAt.IsZero() {
		in.SubmittedAt = s.now().UTC()
	}
	if err := validateNewRecord(in); err != nil {
		return record.Record{}, err
	}

	var (
		created record.Record
		out     *outcome
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Repositories) error {
		out = newOutcome()

		f, exists, err := tx.Filters().GetByID(ctx, in.FilterID)
		if err != nil {
			return fmt.Errorf("get filter: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: filter=%d", ErrNotFound, in.FilterID)
		}

		created, err = tx.Records().Insert(ctx, in)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		if !created.Status.Ranked() {
			return nil
		}
		return s.maintainQualifying(ctx, tx, f, created, out)
	})
	if err != nil {
		span.RecordError(err)
		return record.Record{}, err
	}

	out.flush(ctx, s.enqueuer, s.logger)
	s.logger.DebugContext(ctx, "record submitted",
		"record_id", created.ID,
		"filter_id", created.FilterID,
		"player_id", created.PlayerID,
		"status", created.Status,
	)
	return created, nil
}

// Reclassify moves a record along the classification state machine and
// re-derives the owner's best records.
func (s *RecordService) Reclassify(ctx context.Context, recordID int64, to record.Status, source record.Source) (record.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecordService.Reclassify", attribute.Int64("record.id", recordID))
	defer span.End()

	if recordID <= 0 {
		return record.Record{}, fmt.Errorf("%w: record id must be greater than zero", ErrInvalidInput)
	}
	if !to.Valid() {
		return record.Record{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	if !source.Valid() {
		return record.Record{}, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, source)
	}

	var (
		updated record.Record
		from    record.Status
		out     *outcome
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Repositories) error {
		out = newOutcome()

		rec, exists, err := tx.Records().GetByIDForUpdate(ctx, recordID)
		if err != nil {
			return fmt.Errorf("get record: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: record=%d", ErrNotFound, recordID)
		}
		if err := record.Transition(rec.Status, to, source); err != nil {
			if errors.Is(err, record.ErrIllegalTransition) {
				return fmt.Errorf("%w: %v", ErrConflict, err)
			}
			return err
		}
		if err := tx.Records().UpdateStatus(ctx, rec.ID, to); err != nil {
			return fmt.Errorf("update record status: %w", err)
		}
		from = rec.Status
		rec.Status = to
		updated = rec

		f, exists, err := tx.Filters().GetByID(ctx, rec.FilterID)
		if err != nil {
			return fmt.Errorf("get filter: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: filter=%d of record=%d", ErrInvariantViolation, rec.FilterID, rec.ID)
		}
		return s.maintainQualifying(ctx, tx, f, rec, out)
	})
	if err != nil {
		span.RecordError(err)
		return record.Record{}, err
	}

	out.flush(ctx, s.enqueuer, s.logger)
	s.logger.InfoContext(ctx, "record reclassified",
		"record_id", updated.ID,
		"from", from,
		"to", updated.Status,
		"source", source,
	)
	return updated, nil
}

// maintainQualifying refreshes the nub board and, for teleport-free runs, the pro board.
func (s *RecordService) maintainQualifying(ctx context.Context, tx store.Repositories, f filter.Filter, rec record.Record, out *outcome) error {
	for _, variant := range filter.Variants {
		if !variant.Accepts(rec.Teleports) {
			continue
		}
		if err := s.maintainer.maintain(ctx, tx, f, rec.PlayerID, variant, out); err != nil {
			return fmt.Errorf("maintain %s best record: %w", variant, err)
		}
	}
	return nil
}

func validateNewRecord(in record.NewRecord) error {
	switch {
	case in.PlayerID <= 0:
		return fmt.Errorf("%w: player id must be greater than zero", ErrInvalidInput)
	case in.FilterID <= 0:
		return fmt.Errorf("%w: filter id must be greater than zero", ErrInvalidInput)
	case math.IsNaN(in.Time) || math.IsInf(in.Time, 0) || in.Time <= 0:
		return fmt.Errorf("%w: time must be a positive number of seconds", ErrInvalidInput)
	case in.Teleports < 0:
		return fmt.Errorf("%w: teleports must not be negative", ErrInvalidInput)
	case !in.Styles.Valid():
		return fmt.Errorf("%w: unknown style bits %d", ErrInvalidInput, in.Styles)
	case !in.Status.ValidInitial():
		return fmt.Errorf("%w: status %q is not a valid initial status", ErrInvalidInput, in.Status)
	}
	return nil
}
