// Public domain.

package sedfit

import (
	"fmt"
	"math"
	"sort"

	"github.com/proxcent/sedmc/phot"
)

// FilterResult is the good/bad partition of the observed set against a
// reference curve.  Never mutated in place; recomputed whenever the
// reference curve or data changes.
type FilterResult struct {
	Good, Bad       phot.Table
	GoodDev, BadDev []float64 // absolute relative deviations
	Tolerance       float64   // tolerance of the final partition
	Points          int       // accepted point count
	Quality         float64   // mean absolute deviation of accepted points
}

// tolerance growth per pass, and the defensive iteration cap: the
// original policy has no upper bound, but the loop must terminate even
// for a dataset no tolerance can satisfy.
const (
	tolStep     = 0.01
	maxTolSteps = 200
	longWL      = 2 // micron; required long wavelength coverage
)

// InsufficientDataError reports a dataset the filter cannot satisfy even
// at its widest tolerance.
type InsufficientDataError struct {
	Points    int
	Min       int
	Tolerance float64
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf(
		"sedfit: %d usable points (need %d with coverage beyond %g micron) at tolerance %.2f",
		e.Points, e.Min, float64(longWL), e.Tolerance)
}

// CleanData partitions obs into points near the reference curve and
// outliers, widening the acceptance tolerance in 0.01 steps until at
// least minPts points are accepted and at least one accepted point lies
// beyond 2 microns (short wavelength only fits are unreliable for
// radius).
//
// The reference flux for each point is taken at the nearest reference
// wavelength by index, not interpolated; the coarser lookup here is
// deliberate and matches the pipeline this replaces.  refWL must be
// ascending.
func CleanData(obs phot.Table, refWL, refFlux []float64, tolInit float64, minPts int) (*FilterResult, error) {
	if len(obs) == 0 {
		return nil, &InsufficientDataError{Min: minPts, Tolerance: tolInit}
	}
	dev := make([]float64, len(obs))
	for i, p := range obs {
		ref := refFlux[nearestIdx(refWL, p.WL)]
		dev[i] = math.Abs((p.Flux - ref) / p.Flux)
	}
	tol := tolInit
	for n := 0; n < maxTolSteps; n++ {
		fr := partition(obs, dev, tol)
		if fr.Points >= minPts && hasLongWL(fr.Good) {
			return fr, nil
		}
		tol += tolStep
	}
	fr := partition(obs, dev, tol)
	return nil, &InsufficientDataError{
		Points: fr.Points, Min: minPts, Tolerance: tol}
}

func partition(obs phot.Table, dev []float64, tol float64) *FilterResult {
	fr := &FilterResult{Tolerance: tol}
	var sum float64
	for i, p := range obs {
		if dev[i] < tol {
			fr.Good = append(fr.Good, p)
			fr.GoodDev = append(fr.GoodDev, dev[i])
			sum += dev[i]
		} else {
			fr.Bad = append(fr.Bad, p)
			fr.BadDev = append(fr.BadDev, dev[i])
		}
	}
	fr.Points = len(fr.Good)
	if fr.Points > 0 {
		fr.Quality = sum / float64(fr.Points)
	}
	return fr
}

func hasLongWL(t phot.Table) bool {
	for _, p := range t {
		if p.WL > longWL {
			return true
		}
	}
	return false
}

// nearestIdx returns the index of the wl closest to x.  wls ascending.
func nearestIdx(wls []float64, x float64) int {
	i := sort.SearchFloat64s(wls, x)
	if i == 0 {
		return 0
	}
	if i == len(wls) {
		return len(wls) - 1
	}
	if x-wls[i-1] <= wls[i]-x {
		return i - 1
	}
	return i
}

// WLRange returns the realized wavelength window of the accepted points.
func (fr *FilterResult) WLRange() (min, max float64) {
	if len(fr.Good) == 0 {
		return 0, 0
	}
	min, max = fr.Good[0].WL, fr.Good[0].WL
	for _, p := range fr.Good[1:] {
		if p.WL < min {
			min = p.WL
		}
		if p.WL > max {
			max = p.WL
		}
	}
	return
}
