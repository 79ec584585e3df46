package nig

import "math"

const (
	integrationPanels = 64
	integrationTol    = 1e-9
	integrationDepth  = 12
)

// integrate splits [a, b] into fixed panels and refines each one with adaptive Simpson.
func integrate(f func(float64) float64, a, b float64) float64 {
	if b <= a {
		return 0
	}
	width := (b - a) / integrationPanels
	total := 0.0
	for i := 0; i < integrationPanels; i++ {
		lo := a + float64(i)*width
		hi := lo + width
		mid := (lo + hi) / 2
		flo, fmid, fhi := f(lo), f(mid), f(hi)
		whole := simpson(lo, hi, flo, fmid, fhi)
		total += adaptiveSimpson(f, lo, hi, flo, fmid, fhi, whole, integrationTol/integrationPanels, integrationDepth)
	}
	return total
}

func simpson(a, b, fa, fm, fb float64) float64 {
	return (b - a) / 6 * (fa + 4*fm + fb)
}

func adaptiveSimpson(f func(float64) float64, a, b, fa, fm, fb, whole, tol float64, depth int) float64 {
	m := (a + b) / 2
	lm := (a + m) / 2
	rm := (m + b) / 2
	flm, frm := f(lm), f(rm)
	left := simpson(a, m, fa, flm, fm)
	right := simpson(m, b, fm, frm, fb)
	delta := left + right - whole
	if depth <= 0 || math.Abs(delta) <= 15*tol {
		return left + right + delta/15
	}
	return adaptiveSimpson(f, a, m, fa, flm, fm, left, tol/2, depth-1) +
		adaptiveSimpson(f, m, b, fm, frm, fb, right, tol/2, depth-1)
}
