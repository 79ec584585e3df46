package nig

import "math"

// besselI1 is the modified Bessel function of the first kind, order one.
// Polynomial approximations from Abramowitz & Stegun 9.8.3 and 9.8.4.
func besselI1(x float64) float64 {
	ax := math.Abs(x)
	var ans float64
	if ax < 3.75 {
		t := x / 3.75
		t *= t
		ans = ax * (0.5 + t*(0.87890594+t*(0.51498869+t*(0.15084934+
			t*(0.2658733e-1+t*(0.301532e-2+t*0.32411e-3))))))
	} else {
		t := 3.75 / ax
		ans = 0.2282967e-1 + t*(-0.2895312e-1+t*(0.1787654e-1-t*0.420059e-2))
		ans = 0.39894228 + t*(-0.3988024e-1+t*(-0.362018e-2+t*(0.163801e-2+t*(-0.1031555e-1+t*ans))))
		ans *= math.Exp(ax) / math.Sqrt(ax)
	}
	if x < 0 {
		return -ans
	}
	return ans
}

// besselK1e returns K1(x)*exp(x) for x > 0, from Abramowitz & Stegun 9.8.7 and 9.8.8.
func besselK1e(x float64) float64 {
	if x <= 0 {
		return math.Inf(1)
	}
	if x <= 2 {
		t := x * x / 4
		k1 := math.Log(x/2)*besselI1(x) + (1/x)*(1+t*(0.15443144+t*(-0.67278579+
			t*(-0.18156897+t*(-0.1919402e-1+t*(-0.110404e-2+t*(-0.4686e-4)))))))
		return k1 * math.Exp(x)
	}
	t := 2 / x
	return (1 / math.Sqrt(x)) * (1.25331414 + t*(0.23498619+t*(-0.3655620e-1+t*(0.1504268e-1+
		t*(-0.780353e-2+t*(0.325614e-2+t*(-0.68245e-3)))))))
}

func besselK1(x float64) float64 {
	return besselK1e(x) * math.Exp(-x)
}
