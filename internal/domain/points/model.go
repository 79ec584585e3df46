package points

import (
	"time"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/filter"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/nig"
)

// Distribution is the fitted time curve of one filter variant.
type Distribution struct {
	FilterID   int64
	Variant    filter.Variant
	A          float64
	B          float64
	Loc        float64
	Scale      float64
	TopScale   float64
	TopTime    float64
	SampleSize int
	FittedAt   time.Time
}

func (d Distribution) Params() nig.Params {
	return nig.Params{A: d.A, B: d.B, Loc: d.Loc, Scale: d.Scale}
}

// Fraction maps a time onto [0, 1] where 1 is as good as the fastest time at fit.
func (d Distribution) Fraction(t float64) float64 {
	if t <= d.TopTime {
		return 1
	}
	if d.TopScale <= 0 {
		return 0
	}
	return clamp(d.Params().SF(t)/d.TopScale, 0, 1)
}

// NewDistribution anchors fitted parameters to the fastest time of the sample.
// times must be sorted ascending.
func NewDistribution(p nig.Params, times []float64) (Distribution, error) {
	if err := p.Validate(); err != nil {
		return Distribution{}, err
	}
	if len(times) == 0 {
		return Distribution{}, ErrFitUnavailable
	}
	top := times[0]
	topScale := p.SF(top)
	if topScale <= 0 {
		return Distribution{}, ErrFitUnavailable
	}
	return Distribution{
		A:          p.A,
		B:          p.B,
		Loc:        p.Loc,
		Scale:      p.Scale,
		TopScale:   topScale,
		TopTime:    top,
		SampleSize: len(times),
	}, nil
}
