package fitter

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/nig"
)

const DefaultMinSamples = 10

// InProcess fits the curve with a method-of-moments estimate in the calling
// goroutine.
type InProcess struct {
	minSamples int
}

var _ points.Fitter = (*InProcess)(nil)

func NewInProcess(minSamples int) *InProcess {
	if minSamples < nig.MinSamples {
		minSamples = DefaultMinSamples
	}
	return &InProcess{minSamples: minSamples}
}

func (f *InProcess) Fit(ctx context.Context, times []float64) (points.Distribution, error) {
	if err := ctx.Err(); err != nil {
		return points.Distribution{}, err
	}
	if len(times) < f.minSamples {
		return points.Distribution{}, fmt.Errorf("%w: %d samples, need %d", points.ErrFitUnavailable, len(times), f.minSamples)
	}
	for i, t := range times {
		if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return points.Distribution{}, fmt.Errorf("%w: invalid time at %d", points.ErrFitUnavailable, i)
		}
		if i > 0 && t < times[i-1] {
			return points.Distribution{}, fmt.Errorf("%w: times not sorted", points.ErrFitUnavailable)
		}
	}

	params, err := nig.FitMoments(times)
	if err != nil {
		if errors.Is(err, nig.ErrTooFewSamples) || errors.Is(err, nig.ErrDegenerate) || errors.Is(err, nig.ErrInvalidParams) {
			return points.Distribution{}, fmt.Errorf("%w: %v", points.ErrFitUnavailable, err)
		}
		return points.Distribution{}, err
	}

	dist, err := points.NewDistribution(params, times)
	if err != nil {
		if errors.Is(err, points.ErrFitUnavailable) {
			return points.Distribution{}, err
		}
		return points.Distribution{}, fmt.Errorf("%w: %v", points.ErrFitUnavailable, err)
	}
	return dist, nil
}
