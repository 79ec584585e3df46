package memory

import (
	"time"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
)

// SeedFilters returns a handful of filters so a memory-backed dev server has
// something to accept records for.
func SeedFilters() []filter.Filter {
	seededAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []filter.Filter{
		{ID: 1, CourseID: 1, Mode: filter.ModeVanilla, NubTier: filter.TierEasy, ProTier: filter.TierMedium, NubRanked: true, ProRanked: true, UpdatedAt: seededAt},
		{ID: 2, CourseID: 1, Mode: filter.ModeClassic, NubTier: filter.TierMedium, ProTier: filter.TierAdvanced, NubRanked: true, ProRanked: true, UpdatedAt: seededAt},
		{ID: 3, CourseID: 2, Mode: filter.ModeVanilla, NubTier: filter.TierDeath, ProTier: filter.TierUnfeasible, NubRanked: true, ProRanked: false, UpdatedAt: seededAt},
	}
}
