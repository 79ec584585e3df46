package postgres

import (
	"time"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/leaderboard"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/rating"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/record"
)

type filterTableModel struct {
	ID        int64     `db:"id"`
	CourseID  int64     `db:"course_id"`
	Mode      string    `db:"mode"`
	NubTier   int       `db:"nub_tier"`
	ProTier   int       `db:"pro_tier"`
	NubRanked bool      `db:"nub_ranked"`
	ProRanked bool      `db:"pro_ranked"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m filterTableModel) toDomain() filter.Filter {
	return filter.Filter{
		ID:        m.ID,
		CourseID:  m.CourseID,
		Mode:      filter.Mode(m.Mode),
		NubTier:   filter.Tier(m.NubTier),
		ProTier:   filter.Tier(m.ProTier),
		NubRanked: m.NubRanked,
		ProRanked: m.ProRanked,
		UpdatedAt: m.UpdatedAt,
	}
}

type recordTableModel struct {
	ID          int64     `db:"id"`
	PlayerID    int64     `db:"player_id"`
	FilterID    int64     `db:"filter_id"`
	RunTime     float64   `db:"run_time"`
	Teleports   int       `db:"teleports"`
	Styles      int64     `db:"styles"`
	Status      string    `db:"status"`
	SubmittedAt time.Time `db:"submitted_at"`
}

func (m recordTableModel) toDomain() record.Record {
	return record.Record{
		ID:          m.ID,
		PlayerID:    m.PlayerID,
		FilterID:    m.FilterID,
		Time:        m.RunTime,
		Teleports:   m.Teleports,
		Styles:      record.Styles(m.Styles),
		Status:      record.Status(m.Status),
		SubmittedAt: m.SubmittedAt,
	}
}

type recordInsertModel struct {
	PlayerID    int64     `db:"player_id"`
	FilterID    int64     `db:"filter_id"`
	RunTime     float64   `db:"run_time"`
	Teleports   int       `db:"teleports"`
	Styles      int64     `db:"styles"`
	Status      string    `db:"status"`
	SubmittedAt time.Time `db:"submitted_at"`
}

type bestRecordTableModel struct {
	FilterID    int64     `db:"filter_id"`
	PlayerID    int64     `db:"player_id"`
	Variant     string    `db:"variant"`
	RecordID    int64     `db:"record_id"`
	RunTime     float64   `db:"run_time"`
	SubmittedAt time.Time `db:"submitted_at"`
	Points      float64   `db:"points"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func newBestRecordModel(row leaderboard.BestRecord) bestRecordTableModel {
	return bestRecordTableModel{
		FilterID:    row.FilterID,
		PlayerID:    row.PlayerID,
		Variant:     string(row.Variant),
		RecordID:    row.RecordID,
		RunTime:     row.Time,
		SubmittedAt: row.SubmittedAt,
		Points:      row.Points,
		UpdatedAt:   row.UpdatedAt,
	}
}

func (m bestRecordTableModel) toDomain() leaderboard.BestRecord {
	return leaderboard.BestRecord{
		FilterID:    m.FilterID,
		PlayerID:    m.PlayerID,
		Variant:     filter.Variant(m.Variant),
		RecordID:    m.RecordID,
		Time:        m.RunTime,
		SubmittedAt: m.SubmittedAt,
		Points:      m.Points,
		UpdatedAt:   m.UpdatedAt,
	}
}

type rankedBestRecordModel struct {
	bestRecordTableModel
	Rank int `db:"rank"`
}

type quarantineInsertModel struct {
	FilterID      int64     `db:"filter_id"`
	PlayerID      int64     `db:"player_id"`
	Variant       string    `db:"variant"`
	RecordID      int64     `db:"record_id"`
	RunTime       float64   `db:"run_time"`
	SubmittedAt   time.Time `db:"submitted_at"`
	Points        float64   `db:"points"`
	Reason        string    `db:"reason"`
	QuarantinedAt time.Time `db:"quarantined_at,default"`
}

type distributionTableModel struct {
	FilterID   int64     `db:"filter_id"`
	Variant    string    `db:"variant"`
	A          float64   `db:"a"`
	B          float64   `db:"b"`
	Loc        float64   `db:"loc"`
	Scale      float64   `db:"scale"`
	TopScale   float64   `db:"top_scale"`
	TopTime    float64   `db:"top_time"`
	SampleSize int       `db:"sample_size"`
	FittedAt   time.Time `db:"fitted_at"`
}

func (m distributionTableModel) toDomain() points.Distribution {
	return points.Distribution{
		FilterID:   m.FilterID,
		Variant:    filter.Variant(m.Variant),
		A:          m.A,
		B:          m.B,
		Loc:        m.Loc,
		Scale:      m.Scale,
		TopScale:   m.TopScale,
		TopTime:    m.TopTime,
		SampleSize: m.SampleSize,
		FittedAt:   m.FittedAt,
	}
}

type ratingTableModel struct {
	PlayerID  int64     `db:"player_id"`
	Nub       float64   `db:"nub"`
	Pro       float64   `db:"pro"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m ratingTableModel) toDomain() rating.PlayerRating {
	return rating.PlayerRating{PlayerID: m.PlayerID, Nub: m.Nub, Pro: m.Pro, UpdatedAt: m.UpdatedAt}
}
