package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/recalc"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/record"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/logging"
	"github.com/riskibarqy/kz-leaderboard/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	recordService      *usecase.RecordService
	filterService      *usecase.FilterService
	leaderboardService *usecase.LeaderboardService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	recordService *usecase.RecordService,
	filterService *usecase.FilterService,
	leaderboardService *usecase.LeaderboardService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		recordService:      recordService,
		filterService:      filterService,
		leaderboardService: leaderboardService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListFilters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFilters")
	defer span.End()

	filters, err := h.filterService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list filters failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]filterDTO, 0, len(filters))
	for _, f := range filters {
		items = append(items, filterToDTO(f))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetFilter(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFilter")
	defer span.End()

	filterID, err := pathID(r, "filterID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	f, err := h.filterService.Get(ctx, filterID)
	if err != nil {
		h.logger.WarnContext(ctx, "get filter failed", "filter_id", filterID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, filterToDTO(f))
}

func (h *Handler) UpsertFilter(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertFilter")
	defer span.End()

	filterID, err := pathID(r, "filterID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req upsertFilterRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	f, err := h.filterService.Upsert(ctx, filter.Filter{
		ID:        filterID,
		CourseID:  req.CourseID,
		Mode:      filter.Mode(req.Mode),
		NubTier:   filter.Tier(req.NubTier),
		ProTier:   filter.Tier(req.ProTier),
		NubRanked: req.NubRanked,
		ProRanked: req.ProRanked,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upsert filter failed", "filter_id", filterID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, filterToDTO(f))
}

func (h *Handler) ListLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeaderboard")
	defer span.End()

	filterID, err := pathID(r, "filterID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	variant := filter.Variant(strings.ToLower(strings.TrimSpace(r.PathValue("variant"))))

	page, err := h.leaderboardService.List(ctx, filterID, variant, offset, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list leaderboard failed", "filter_id", filterID, "variant", variant, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leaderboardPageToDTO(page))
}

func (h *Handler) GetPlayerProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerProfile")
	defer span.End()

	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	profile, err := h.leaderboardService.Profile(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player profile failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, profileToDTO(profile))
}

func (h *Handler) SubmitRecord(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitRecord")
	defer span.End()

	var req submitRecordRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	in := record.NewRecord{
		PlayerID:  req.PlayerID,
		FilterID:  req.FilterID,
		Time:      req.Time,
		Teleports: req.Teleports,
		Styles:    record.Styles(req.Styles),
		Status:    record.Status(req.Status),
	}
	if req.SubmittedAt != nil {
		in.SubmittedAt = req.SubmittedAt.UTC()
	}

	created, err := h.recordService.Submit(ctx, in)
	if err != nil {
		h.logger.WarnContext(ctx, "submit record failed",
			"player_id", req.PlayerID,
			"filter_id", req.FilterID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, recordToDTO(created))
}

func (h *Handler) ReclassifyRecord(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReclassifyRecord")
	defer span.End()

	recordID, err := pathID(r, "recordID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req reclassifyRecordRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.recordService.Reclassify(ctx, recordID, record.Status(req.Status), record.Source(req.Source))
	if err != nil {
		h.logger.WarnContext(ctx, "reclassify record failed", "record_id", recordID, "status", req.Status, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, recordToDTO(updated))
}

func (h *Handler) RequestRecalculation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestRecalculation")
	defer span.End()

	var req recalculationRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.leaderboardService.RequestRecalculation(ctx, recalc.Kind(req.Kind), req.ID, req.Priority); err != nil {
		h.logger.WarnContext(ctx, "request recalculation failed", "kind", req.Kind, "id", req.ID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusAccepted, map[string]any{
		"kind":     req.Kind,
		"id":       req.ID,
		"priority": req.Priority,
	})
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, payload any) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}
