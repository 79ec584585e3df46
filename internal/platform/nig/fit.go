package nig

import (
	"fmt"
	"math"
)

// MinSamples is the smallest sample FitMoments accepts.
const MinSamples = 4

// FitMoments estimates parameters by matching the first four sample moments.
//
// The NIG family only covers samples whose excess kurtosis exceeds 5/3 of the
// squared skewness. Lighter-tailed samples are projected onto that boundary, so
// mean and variance are always reproduced while the shape is approximate.
func FitMoments(samples []float64) (Params, error) {
	n := len(samples)
	if n < MinSamples {
		return Params{}, fmt.Errorf("%w: got %d, need %d", ErrTooFewSamples, n, MinSamples)
	}

	mean := 0.0
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Params{}, fmt.Errorf("%w: non-finite sample", ErrDegenerate)
		}
		mean += v
	}
	mean /= float64(n)

	var m2, m3, m4 float64
	for _, v := range samples {
		d := v - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	m2 /= float64(n)
	m3 /= float64(n)
	m4 /= float64(n)
	if m2 <= 0 || m2 < 1e-18*mean*mean {
		return Params{}, fmt.Errorf("%w: zero variance", ErrDegenerate)
	}

	skew := m3 / math.Pow(m2, 1.5)
	kurt := m4/(m2*m2) - 3

	floor := (5.0/3.0)*skew*skew*1.05 + 0.05
	if kurt < floor {
		kurt = floor
	}

	// z = delta*gamma, rho = beta/alpha.
	z := 9 / (3*kurt - 4*skew*skew)
	rho2 := skew * skew * z / 9
	rho := math.Copysign(math.Sqrt(rho2), skew)

	a := z / math.Sqrt(1-rho2)
	b := rho * a
	alpha := math.Sqrt(z/m2) / (1 - rho2)
	gamma := alpha * math.Sqrt(1-rho2)
	delta := z / gamma
	loc := mean - delta*rho*alpha/gamma

	p := Params{A: a, B: b, Loc: loc, Scale: delta}
	if err := p.Validate(); err != nil {
		return Params{}, fmt.Errorf("%w: fit produced %+v", ErrDegenerate, p)
	}
	return p, nil
}
