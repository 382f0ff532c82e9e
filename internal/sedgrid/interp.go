// Public domain.

package sedgrid

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Bracket returns the node temperatures enclosing teff under the
// family's step structure.  Below Threshold the high node is teff
// ceilinged to the next LowStep.  At or above Threshold, teff is rounded
// to the nearest 1000 K and the other node is one HighStep away on the
// enclosing side.
func (f Family) Bracket(teff float64) (lo, hi float64) {
	if teff < f.Threshold {
		hi = ceilStep(teff, f.LowStep)
		lo = hi - f.LowStep
		return
	}
	r := roundTo(teff, 1000)
	if r > teff {
		hi = r
		lo = hi - f.HighStep
	} else {
		lo = r
		hi = lo + f.HighStep
	}
	return
}

func ceilStep(x, step float64) float64 {
	n := int(x / step)
	if float64(n)*step < x {
		n++
	}
	return float64(n) * step
}

func roundTo(x, to float64) float64 {
	n := int(x/to + .5)
	return float64(n) * to
}

// resample linearly interpolates (xs, ys) at each point of to.
// Points of to outside [xs[0], xs[last]] take the endpoint values;
// callers are expected to keep queries within the native range.
func resample(xs, ys, to []float64) ([]float64, error) {
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, err
	}
	out := make([]float64, len(to))
	for i, x := range to {
		out[i] = pl.Predict(x)
	}
	return out, nil
}

func countNeg(fl []float64) (n int) {
	for _, f := range fl {
		if f < 0 {
			n++
		}
	}
	return
}

// FluxAt returns model flux at each requested wavelength for an
// arbitrary temperature within the grid range.
//
// A temperature equal to a grid node resamples that node's spectrum
// directly.  Otherwise the two bracketing node spectra are combined: the
// high spectrum is resampled onto the low spectrum's wavelength axis,
// fluxes are interpolated linearly in temperature, and the combined
// spectrum is resampled at wl.
//
// negative counts interpolated fluxes below zero, a data/model
// inconsistency surfaced for diagnostics.  The fluxes are still
// returned.
func (g *Grid) FluxAt(teff float64, wl []float64) (flux []float64, negative int, err error) {
	cwl, cfl, err := g.Curve(teff)
	if err != nil {
		return nil, 0, err
	}
	if flux, err = resample(cwl, cfl, wl); err != nil {
		return nil, 0, err
	}
	return flux, countNeg(flux), nil
}

// Curve returns the interpolated spectrum at teff on its native
// wavelength axis (the low bracketing node's axis), for building
// reference curves.  See FluxAt for the interpolation rule.
func (g *Grid) Curve(teff float64) (wl, flux []float64, err error) {
	if s := g.node(teff); s != nil {
		flux = make([]float64, len(s.Flux))
		copy(flux, s.Flux)
		return s.WL, flux, nil
	}
	lo, hi := g.fam.Bracket(teff)
	slo, shi := g.node(lo), g.node(hi)
	if slo == nil || shi == nil {
		return nil, nil, fmt.Errorf(
			"sedgrid: %s grid has no nodes %g and %g K bracketing %g K",
			g.Family, lo, hi, teff)
	}
	fhi, err := resample(shi.WL, shi.Flux, slo.WL)
	if err != nil {
		return nil, nil, err
	}
	flux = make([]float64, len(slo.WL))
	w := hi - lo
	for i := range flux {
		flux[i] = (fhi[i]*(teff-lo) + slo.Flux[i]*(hi-teff)) / w
	}
	return slo.WL, flux, nil
}
