// Package nig implements the Normal-Inverse-Gaussian distribution used to
// model leaderboard completion times.
//
// Parameters follow the (a, b, loc, scale) convention: with the standardized
// variable y = (x-loc)/scale the density is
//
//	f(y) = a*K1(a*sqrt(1+y^2)) / (pi*sqrt(1+y^2)) * exp(sqrt(a^2-b^2) + b*y)
//
// where K1 is the modified Bessel function of the second kind.
package nig

import (
	"errors"
	"math"
)

var (
	ErrInvalidParams = errors.New("nig: invalid parameters")
	ErrTooFewSamples = errors.New("nig: too few samples")
	ErrDegenerate    = errors.New("nig: degenerate sample")
)

type Params struct {
	A     float64
	B     float64
	Loc   float64
	Scale float64
}

func (p Params) Validate() error {
	for _, v := range []float64{p.A, p.B, p.Loc, p.Scale} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidParams
		}
	}
	if p.A <= 0 || p.Scale <= 0 || math.Abs(p.B) >= p.A {
		return ErrInvalidParams
	}
	return nil
}

func (p Params) gamma() float64 {
	return math.Sqrt(p.A*p.A - p.B*p.B)
}

func (p Params) Mean() float64 {
	return p.Loc + p.Scale*p.B/p.gamma()
}

func (p Params) Variance() float64 {
	g := p.gamma()
	return p.Scale * p.Scale * p.A * p.A / (g * g * g)
}

// PDF evaluates the density at x.
func (p Params) PDF(x float64) float64 {
	y := (x - p.Loc) / p.Scale
	return p.standardPDF(y) / p.Scale
}

func (p Params) standardPDF(y float64) float64 {
	s := math.Sqrt(1 + y*y)
	z := p.A * s
	// K1(z) = besselK1e(z) * exp(-z); folding exp(-z) into the exponent keeps large z finite.
	return p.A / (math.Pi * s) * besselK1e(z) * math.Exp(p.gamma()+p.B*y-z)
}

// SF is the survival function P(X > x).
func (p Params) SF(x float64) float64 {
	if p.Validate() != nil || math.IsNaN(x) {
		return math.NaN()
	}
	if math.IsInf(x, 1) {
		return 0
	}
	if math.IsInf(x, -1) {
		return 1
	}

	y := (x - p.Loc) / p.Scale
	g := p.gamma()
	meanY := p.B / g
	sdY := math.Sqrt(p.A * p.A / (g * g * g))

	var out float64
	if y >= meanY {
		hi := y + tailSpan*sdY + tailSpan/(p.A-p.B)
		out = integrate(p.standardPDF, y, hi)
	} else {
		lo := y - tailSpan*sdY - tailSpan/(p.A+p.B)
		out = 1 - integrate(p.standardPDF, lo, y)
	}
	return clamp01(out)
}

// CDF is P(X <= x).
func (p Params) CDF(x float64) float64 {
	return 1 - p.SF(x)
}

const tailSpan = 40

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
