package httpapi

import (
	"time"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/leaderboard"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/record"
	"github.com/riskibarqy/kz-leaderboard/internal/usecase"
)

type upsertFilterRequest struct {
	CourseID  int64  `json:"course_id" validate:"required,gt=0"`
	Mode      string `json:"mode" validate:"required,oneof=vanilla classic"`
	NubTier   int    `json:"nub_tier" validate:"required,min=1,max=10"`
	ProTier   int    `json:"pro_tier" validate:"required,min=1,max=10"`
	NubRanked bool   `json:"nub_ranked"`
	ProRanked bool   `json:"pro_ranked"`
}

type submitRecordRequest struct {
	PlayerID    int64      `json:"player_id" validate:"required,gt=0"`
	FilterID    int64      `json:"filter_id" validate:"required,gt=0"`
	Time        float64    `json:"time" validate:"required,gt=0"`
	Teleports   int        `json:"teleports" validate:"min=0"`
	Styles      uint32     `json:"styles"`
	Status      string     `json:"status" validate:"omitempty,oneof=normal suspicious hidden"`
	SubmittedAt *time.Time `json:"submitted_at"`
}

type reclassifyRecordRequest struct {
	Status string `json:"status" validate:"required,oneof=normal suspicious cheated hidden"`
	Source string `json:"source" validate:"required,oneof=admin detector"`
}

type recalculationRequest struct {
	Kind     string `json:"kind" validate:"required,oneof=filter player"`
	ID       int64  `json:"id" validate:"required,gt=0"`
	Priority int64  `json:"priority" validate:"min=0"`
}

type filterDTO struct {
	ID        int64  `json:"id"`
	CourseID  int64  `json:"course_id"`
	Mode      string `json:"mode"`
	NubTier   int    `json:"nub_tier"`
	ProTier   int    `json:"pro_tier"`
	NubRanked bool   `json:"nub_ranked"`
	ProRanked bool   `json:"pro_ranked"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type recordDTO struct {
	ID          int64   `json:"id"`
	PlayerID    int64   `json:"player_id"`
	FilterID    int64   `json:"filter_id"`
	Time        float64 `json:"time"`
	Teleports   int     `json:"teleports"`
	Styles      uint32  `json:"styles"`
	Status      string  `json:"status"`
	SubmittedAt string  `json:"submitted_at"`
}

type leaderboardEntryDTO struct {
	Rank        int     `json:"rank"`
	PlayerID    int64   `json:"player_id"`
	RecordID    int64   `json:"record_id"`
	Time        float64 `json:"time"`
	Points      float64 `json:"points"`
	SubmittedAt string  `json:"submitted_at"`
}

type leaderboardPageDTO struct {
	FilterID int64                 `json:"filter_id"`
	Variant  string                `json:"variant"`
	Total    int                   `json:"total"`
	Offset   int                   `json:"offset"`
	Entries  []leaderboardEntryDTO `json:"entries"`
}

type profileRecordDTO struct {
	FilterID int64   `json:"filter_id"`
	Variant  string  `json:"variant"`
	Rank     int     `json:"rank,omitempty"`
	RecordID int64   `json:"record_id"`
	Time     float64 `json:"time"`
	Points   float64 `json:"points"`
	Weighted float64 `json:"weighted,omitempty"`
}

type ratingDTO struct {
	Nub float64 `json:"nub"`
	Pro float64 `json:"pro"`
}

type profileDTO struct {
	PlayerID  int64              `json:"player_id"`
	Rated     bool               `json:"rated"`
	Rating    ratingDTO          `json:"rating"`
	UpdatedAt string             `json:"updated_at,omitempty"`
	Records   []profileRecordDTO `json:"records"`
	Top       []profileRecordDTO `json:"top"`
}

func filterToDTO(f filter.Filter) filterDTO {
	return filterDTO{
		ID:        f.ID,
		CourseID:  f.CourseID,
		Mode:      string(f.Mode),
		NubTier:   int(f.NubTier),
		ProTier:   int(f.ProTier),
		NubRanked: f.NubRanked,
		ProRanked: f.ProRanked,
		UpdatedAt: formatTime(f.UpdatedAt),
	}
}

func recordToDTO(r record.Record) recordDTO {
	return recordDTO{
		ID:          r.ID,
		PlayerID:    r.PlayerID,
		FilterID:    r.FilterID,
		Time:        r.Time,
		Teleports:   r.Teleports,
		Styles:      uint32(r.Styles),
		Status:      string(r.Status),
		SubmittedAt: formatTime(r.SubmittedAt),
	}
}

func leaderboardPageToDTO(page usecase.LeaderboardPage) leaderboardPageDTO {
	entries := make([]leaderboardEntryDTO, 0, len(page.Entries))
	for _, e := range page.Entries {
		entries = append(entries, leaderboardEntryDTO{
			Rank:        e.Rank,
			PlayerID:    e.PlayerID,
			RecordID:    e.RecordID,
			Time:        e.Time,
			Points:      e.Points,
			SubmittedAt: formatTime(e.SubmittedAt),
		})
	}
	return leaderboardPageDTO{
		FilterID: page.FilterID,
		Variant:  string(page.Variant),
		Total:    page.Total,
		Offset:   page.Offset,
		Entries:  entries,
	}
}

func profileToDTO(p usecase.PlayerProfile) profileDTO {
	records := make([]profileRecordDTO, 0, len(p.Records))
	for _, e := range p.Records {
		item := bestRecordToDTO(e.BestRecord)
		item.Rank = e.Rank
		records = append(records, item)
	}
	top := make([]profileRecordDTO, 0, len(p.Top))
	for _, row := range p.Top {
		item := bestRecordToDTO(row.BestRecord)
		item.Weighted = row.Weighted
		top = append(top, item)
	}

	return profileDTO{
		PlayerID:  p.PlayerID,
		Rated:     p.Rated,
		Rating:    ratingDTO{Nub: p.Rating.Nub, Pro: p.Rating.Pro},
		UpdatedAt: formatTime(p.Rating.UpdatedAt),
		Records:   records,
		Top:       top,
	}
}

func bestRecordToDTO(row leaderboard.BestRecord) profileRecordDTO {
	return profileRecordDTO{
		FilterID: row.FilterID,
		Variant:  string(row.Variant),
		RecordID: row.RecordID,
		Time:     row.Time,
		Points:   row.Points,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
