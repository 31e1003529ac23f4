package grid

import "github.com/chewxy/math32"

// Coefficients of Acklam's rational approximation to the inverse
// standard-normal CDF. Relative error is below 1.15e-9, far more than
// a pixel's worth.
var (
	qa = [6]float32{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02, 1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	qb = [5]float32{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02, 6.680131188771972e+01, -1.328068155288572e+01}
	qc = [6]float32{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00, -2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	qd = [4]float32{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00, 3.754408661907416e+00}
)

const (
	qlow  = 0.02425
	qhigh = 1 - qlow
)

// gaussianQuantile returns Φ⁻¹(p) for p in (0, 1).
func gaussianQuantile(p float32) float32 {
	switch {
	case p <= 0:
		return math32.Inf(-1)
	case p >= 1:
		return math32.Inf(1)
	case p < qlow:
		q := math32.Sqrt(-2 * math32.Log(p))
		return (((((qc[0]*q+qc[1])*q+qc[2])*q+qc[3])*q+qc[4])*q + qc[5]) /
			((((qd[0]*q+qd[1])*q+qd[2])*q+qd[3])*q + 1)
	case p > qhigh:
		q := math32.Sqrt(-2 * math32.Log(1-p))
		return -(((((qc[0]*q+qc[1])*q+qc[2])*q+qc[3])*q+qc[4])*q + qc[5]) /
			((((qd[0]*q+qd[1])*q+qd[2])*q+qd[3])*q + 1)
	default:
		q := p - 0.5
		r := q * q
		return (((((qa[0]*r+qa[1])*r+qa[2])*r+qa[3])*r+qa[4])*r + qa[5]) * q /
			(((((qb[0]*r+qb[1])*r+qb[2])*r+qb[3])*r+qb[4])*r + 1)
	}
}
