package disparity

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// WelchTTest runs a two-sided two-sample t-test without assuming equal
// variances. Both samples need at least two observations and a non-zero
// pooled standard error; otherwise t and p are NaN.
func WelchTTest(a, b []float64) (t, p float64) {
	n1, n2 := float64(len(a)), float64(len(b))
	if len(a) < 2 || len(b) < 2 {
		return math.NaN(), math.NaN()
	}
	m1, v1 := stat.MeanVariance(a, nil)
	m2, v2 := stat.MeanVariance(b, nil)

	q1, q2 := v1/n1, v2/n2
	se := math.Sqrt(q1 + q2)
	if se == 0 || math.IsNaN(se) {
		return math.NaN(), math.NaN()
	}
	t = (m1 - m2) / se

	// Welch–Satterthwaite degrees of freedom.
	df := (q1 + q2) * (q1 + q2) / (q1*q1/(n1-1) + q2*q2/(n2-1))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.CDF(-math.Abs(t))
	return t, p
}
