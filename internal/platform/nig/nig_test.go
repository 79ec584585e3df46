package nig

import (
	"errors"
	"math"
	"testing"
)

func TestBesselK1_KnownValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		x, want float64
	}{
		{0.5, 1.656441120},
		{1, 0.6019072302},
		{2, 0.1398658818},
		{5, 0.004044613445},
	}
	for _, tc := range cases {
		got := besselK1(tc.x)
		if math.Abs(got-tc.want)/tc.want > 1e-5 {
			t.Fatalf("K1(%v): got %.10f want %.10f", tc.x, got, tc.want)
		}
	}
}

func TestParams_SFSymmetric(t *testing.T) {
	t.Parallel()

	p := Params{A: 2, B: 0, Loc: 10, Scale: 1.5}
	if got := p.SF(10); math.Abs(got-0.5) > 1e-4 {
		t.Fatalf("expected SF at loc to be 0.5 for symmetric params, got %v", got)
	}
	lo, hi := p.SF(8), p.SF(12)
	if math.Abs(lo+hi-1) > 1e-4 {
		t.Fatalf("expected SF(loc-d)+SF(loc+d)=1, got %v + %v", lo, hi)
	}
}

func TestParams_SFMonotone(t *testing.T) {
	t.Parallel()

	p := Params{A: 1.5, B: 0.9, Loc: 30, Scale: 4}
	prev := 1.0
	for x := 10.0; x <= 120; x += 2.5 {
		got := p.SF(x)
		if got > prev+1e-9 {
			t.Fatalf("SF not monotone at %v: %v > %v", x, got, prev)
		}
		if got < 0 || got > 1 {
			t.Fatalf("SF out of range at %v: %v", x, got)
		}
		prev = got
	}
	if p.SF(math.Inf(1)) != 0 || p.SF(math.Inf(-1)) != 1 {
		t.Fatalf("unexpected SF at infinities")
	}
}

func TestParams_SFMatchesMean(t *testing.T) {
	t.Parallel()

	// Positive skew puts the median left of the mean.
	p := Params{A: 1.2, B: 0.8, Loc: 20, Scale: 3}
	if got := p.SF(p.Mean()); got >= 0.5 {
		t.Fatalf("expected SF(mean) < 0.5 for right-skewed params, got %v", got)
	}
}

func TestFitMoments_ReproducesMeanAndVariance(t *testing.T) {
	t.Parallel()

	samples := make([]float64, 0, 200)
	for i := 0; i < 200; i++ {
		q := (float64(i) + 0.5) / 200
		// Exponential-tailed spread of completion times above 25s.
		samples = append(samples, 25-8*math.Log(1-q))
	}

	p, err := FitMoments(samples)
	if err != nil {
		t.Fatalf("fit moments: %v", err)
	}

	mean, variance := sampleMoments(samples)
	if math.Abs(p.Mean()-mean) > 1e-6*mean {
		t.Fatalf("mean mismatch: fitted %v sample %v", p.Mean(), mean)
	}
	if math.Abs(p.Variance()-variance) > 1e-6*variance {
		t.Fatalf("variance mismatch: fitted %v sample %v", p.Variance(), variance)
	}
	if p.B <= 0 {
		t.Fatalf("expected positive skew parameter, got %v", p.B)
	}
}

func TestFitMoments_SymmetricSample(t *testing.T) {
	t.Parallel()

	samples := []float64{40, 41, 42, 43, 44, 45, 46}
	p, err := FitMoments(samples)
	if err != nil {
		t.Fatalf("fit moments: %v", err)
	}
	if math.Abs(p.B) > 1e-12 {
		t.Fatalf("expected zero skew parameter, got %v", p.B)
	}
	if math.Abs(p.Loc-43) > 1e-9 {
		t.Fatalf("expected loc=43, got %v", p.Loc)
	}
}

func TestFitMoments_Errors(t *testing.T) {
	t.Parallel()

	if _, err := FitMoments([]float64{1, 2}); !errors.Is(err, ErrTooFewSamples) {
		t.Fatalf("expected ErrTooFewSamples, got %v", err)
	}
	if _, err := FitMoments([]float64{5, 5, 5, 5, 5}); !errors.Is(err, ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate, got %v", err)
	}
}

func sampleMoments(samples []float64) (float64, float64) {
	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))
	variance := 0.0
	for _, v := range samples {
		variance += (v - mean) * (v - mean)
	}
	return mean, variance / float64(len(samples))
}
