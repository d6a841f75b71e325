// Package score implements component E of the SNPsea statistical engine:
// the four interchangeable column-scoring functions (spec.md §4.E).
//
// No hypergeometric distribution appears anywhere in the retrieved example
// corpus — neither the pre-modules github.com/gonum/stat fork a few example
// repos import, nor the canonical gonum.org/v1/gonum/stat/distuv this port
// otherwise uses for the gamma distribution. The hypergeometric PMF/CDF is
// therefore computed directly from log-binomial-coefficients via the
// standard library's math.Lgamma; see DESIGN.md for the stdlib
// justification.
package score

import "math"

// logChoose returns log(C(n, k)), or -Inf if k is outside [0, n].
func logChoose(n, k float64) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	a, _ := math.Lgamma(n + 1)
	b, _ := math.Lgamma(k + 1)
	c, _ := math.Lgamma(n - k + 1)
	return a - b - c
}

// hypergeomPMF returns P(X = k) for X ~ Hypergeometric(successes=n1,
// failures=n2, draws=t).
func hypergeomPMF(n1, n2, t, k int) float64 {
	n1f, n2f, tf, kf := float64(n1), float64(n2), float64(t), float64(k)
	logP := logChoose(n1f, kf) + logChoose(n2f, tf-kf) - logChoose(n1f+n2f, tf)
	if math.IsInf(logP, -1) {
		return 0
	}
	return math.Exp(logP)
}

// hypergeomUpperTail returns P(X >= k), i.e. the upper-tail CDF evaluated at
// k-1 (spec.md §4.E: "Q(k−1; n1, n2, t)").
func hypergeomUpperTail(n1, n2, t, k int) float64 {
	lo := k
	if lo < 0 {
		lo = 0
	}
	hi := t
	if n1 < hi {
		hi = n1
	}
	sum := 0.0
	for i := lo; i <= hi; i++ {
		sum += hypergeomPMF(n1, n2, t, i)
	}
	return sum
}

// clamp implements spec.md §4.E / §7: "-inf or non-finite results are
// clamped to 0", applied to the -log(...) contribution of a single geneset
// before it is added to a column's total score.
func clamp(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
