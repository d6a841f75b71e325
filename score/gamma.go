package score

import "gonum.org/v1/gonum/stat/distuv"

// gammaUpperTail returns the gamma-distribution upper-tail probability
// P(X > s) for X ~ Gamma(shape, scale=1) (spec.md §4.E: quantitative-total).
//
// Uses gonum.org/v1/gonum/stat/distuv.Gamma, the maintained gonum module.
// Several retrieved example repos (goleft/indexcov,
// matrix-profile-foundation/go-matrixprofile, kortschak/smeargol) instead
// import the old, pre-Go-modules github.com/gonum/stat fork; that fork
// predates modules and is unmaintained, so this port uses the current
// module for the same ecosystem concern rather than vendoring the dead one
// (see DESIGN.md).
func gammaUpperTail(s, shape float64) float64 {
	g := distuv.Gamma{Alpha: shape, Beta: 1}
	return 1 - g.CDF(s)
}
