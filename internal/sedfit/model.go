// Public domain.

package sedfit

import "sync/atomic"

// Predict returns the model flux in Jy at each wavelength for a
// candidate (teff, rstar) and a parallax in mas.  The scale factor
// (rstar*plx/1000)² is the apparent angular radius squared; grid fluxes
// are per unit apparent radius after load correction.
//
// Pure function of its inputs and the immutable grid, safe for
// concurrent walker evaluations.  Negative interpolated fluxes are
// counted on the Fitter for post-run diagnostics.
func (f *Fitter) Predict(teff, rstar, plx float64, wl []float64) ([]float64, error) {
	flux, neg, err := f.Grid.FluxAt(teff, wl)
	if err != nil {
		return nil, err
	}
	if neg > 0 {
		atomic.AddInt64(&f.negFlux, int64(neg))
	}
	scale := sq(rstar * plx / 1000)
	for i := range flux {
		flux[i] *= scale
	}
	return flux, nil
}
