// Public domain.

package sedfit

import (
	"math"

	"github.com/proxcent/sedmc/internal/sedgrid"
	"github.com/proxcent/sedmc/phot"
)

// Bounds is the uniform prior box over (Teff, Rstar).
type Bounds struct {
	MinTeff, MaxTeff   float64
	MinRstar, MaxRstar float64
}

// BoundsFor builds the prior box around a baseline: temperature within
// ±4000 K clipped to the family floor, radius within ±90%.
func BoundsFor(b Baseline, fam sedgrid.Family) Bounds {
	minT := fam.Floor
	if minT < b.Teff-4000 {
		minT = b.Teff - 4000
	}
	return Bounds{
		MinTeff:  minT,
		MaxTeff:  b.Teff + 4000,
		MinRstar: b.Rstar - 0.9*b.Rstar,
		MaxRstar: b.Rstar + 0.9*b.Rstar,
	}
}

// LnPrior is 0 strictly inside the box and -Inf on or outside any edge.
func (bo Bounds) LnPrior(teff, rstar float64) float64 {
	if bo.MinTeff < teff && teff < bo.MaxTeff &&
		bo.MinRstar < rstar && rstar < bo.MaxRstar {
		return 0
	}
	return math.Inf(-1)
}

// LnLike is the Gaussian log-likelihood of the observed fluxes with a
// model-dependent variance inflation: σ² = efl² + (m·exp(logF))².  The
// inflation term absorbs systematic model error beyond the measurement
// noise.
func (f *Fitter) LnLike(teff, rstar, plx float64, obs phot.Table) float64 {
	m, err := f.Predict(teff, rstar, plx, obs.Wavelengths())
	if err != nil {
		return math.Inf(-1)
	}
	ef2 := math.Exp(2 * f.Cfg.LogF)
	var s float64
	for i, p := range obs {
		sigma2 := p.Err*p.Err + m[i]*m[i]*ef2
		d := p.Flux - m[i]
		s += d*d/sigma2 + math.Log(sigma2)
	}
	return -0.5 * s
}

// LnProb is the log-posterior.  The likelihood is never evaluated when
// the prior rejects, keeping the model inside its valid domain.
func (f *Fitter) LnProb(teff, rstar, plx float64, bo Bounds, obs phot.Table) float64 {
	lp := bo.LnPrior(teff, rstar)
	if math.IsInf(lp, -1) {
		return lp
	}
	return lp + f.LnLike(teff, rstar, plx, obs)
}
