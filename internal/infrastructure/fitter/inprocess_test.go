package fitter

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
)

func sampleTimes(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		// right skewed: dense near the record, long tail of slow runs
		x := float64(i+1) / float64(n+1)
		out[i] = 30 + 60*x*x
	}
	return out
}

func TestInProcess_FitsSortedSample(t *testing.T) {
	times := sampleTimes(120)
	dist, err := NewInProcess(10).Fit(context.Background(), times)
	require.NoError(t, err)

	require.Equal(t, times[0], dist.TopTime)
	require.Equal(t, len(times), dist.SampleSize)
	require.Greater(t, dist.TopScale, 0.0)
	require.LessOrEqual(t, dist.TopScale, 1.0)
	require.Equal(t, 1.0, dist.Fraction(times[0]))

	prev := 1.0
	for _, tm := range times[1:] {
		f := dist.Fraction(tm)
		require.False(t, math.IsNaN(f))
		require.LessOrEqual(t, f, prev+1e-9)
		prev = f
	}
}

func TestInProcess_TooFewSamples(t *testing.T) {
	_, err := NewInProcess(10).Fit(context.Background(), sampleTimes(9))
	require.ErrorIs(t, err, points.ErrFitUnavailable)
}

func TestInProcess_ZeroVariance(t *testing.T) {
	times := make([]float64, 20)
	for i := range times {
		times[i] = 42
	}
	_, err := NewInProcess(10).Fit(context.Background(), times)
	require.ErrorIs(t, err, points.ErrFitUnavailable)
}

func TestInProcess_RejectsUnsortedOrInvalid(t *testing.T) {
	times := sampleTimes(20)
	times[3], times[4] = times[4], times[3]
	_, err := NewInProcess(10).Fit(context.Background(), times)
	require.ErrorIs(t, err, points.ErrFitUnavailable)

	times = sampleTimes(20)
	times[0] = -1
	_, err = NewInProcess(10).Fit(context.Background(), times)
	require.ErrorIs(t, err, points.ErrFitUnavailable)
}

func TestNewInProcess_ClampsMinSamples(t *testing.T) {
	require.Equal(t, DefaultMinSamples, NewInProcess(1).minSamples)
	require.Equal(t, 25, NewInProcess(25).minSamples)
}
