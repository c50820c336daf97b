package post

import "math"

// Filmic applies exposure in EV, the ACES approximation (Narkowicz 2015) and output gamma to
// one linear channel value.
func Filmic(x, exposureEV, gamma float64) float64 {
	x *= math.Exp2(exposureEV)
	x = aces(x)
	if gamma > 0 && gamma != 1 {
		x = math.Pow(x, 1/gamma)
	}
	return x
}

func aces(x float64) float64 {
	const a, b, c, d, e = 2.51, 0.03, 2.43, 0.59, 0.14
	return math.Max(0, math.Min(1, (x*(a*x+b))/(x*(c*x+d)+e)))
}
