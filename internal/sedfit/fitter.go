// Public domain.

// Package sedfit implements the sedmc model fitting and sampling engine.
//
// A Fitter holds the immutable inputs for one model family: the spectral
// grid and the sampling configuration.  Fit runs the full pipeline for
// one star: filter the observed photometry against a baseline reference
// curve, sample the posterior over (Teff, Rstar) with an ensemble
// sampler, and re-baseline and retry when fit quality is poor.
package sedfit

import (
	"log"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/proxcent/sedmc/internal/sedgrid"
	"github.com/proxcent/sedmc/phot"
)

// 1 Rsun at 1 kpc subtends 2*4.65047 milliarcsec; the constant converts
// Rstar[Rsun]*plx[mas]/1000 to an apparent angular radius in arcsec.
const AngRadPerRsunMas = 4.65047

// Config holds sampling parameters.  Zero values are replaced by the
// defaults from DefaultConfig.
type Config struct {
	Walkers    int     // ensemble size
	BurnIn     int     // burn-in steps, chain discarded
	Iterations int     // production steps
	Thin       int     // record every Thin-th production step
	LogF       float64 // ln of fractional model error inflation
	FitErrInit float64 // initial filter tolerance
	FitPtsMin  int     // minimum accepted points for the filter
	MaxRetries int     // re-baselining retry cap
	Workers    int     // parallel likelihood evaluations
	Repeatable bool    // fixed RNG seed
}

// DefaultConfig returns the stock sampling parameters.
func DefaultConfig() Config {
	return Config{
		Walkers:    50,
		BurnIn:     1000,
		Iterations: 5000,
		Thin:       1,
		LogF:       math.Log(0.1),
		FitErrInit: 0.1,
		FitPtsMin:  12,
		MaxRetries: 3,
		Workers:    runtime.GOMAXPROCS(0),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Walkers == 0 {
		c.Walkers = d.Walkers
	}
	if c.BurnIn == 0 {
		c.BurnIn = d.BurnIn
	}
	if c.Iterations == 0 {
		c.Iterations = d.Iterations
	}
	if c.Thin == 0 {
		c.Thin = d.Thin
	}
	if c.LogF == 0 {
		c.LogF = d.LogF
	}
	if c.FitErrInit == 0 {
		c.FitErrInit = d.FitErrInit
	}
	if c.FitPtsMin == 0 {
		c.FitPtsMin = d.FitPtsMin
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.Workers == 0 {
		c.Workers = d.Workers
	}
	return c
}

// Baseline is the reference (Teff, Rstar) estimate that centers the
// prior box and the initial comparison curve.  Each re-baselining step
// produces a new value; RunContext keeps the history.
type Baseline struct {
	Teff, TeffErr     float64 // K
	Rstar, RstarErr   float64 // Rsun
	AngDia, AngDiaErr float64 // arcsec
	Plx, PlxErr       float64 // mas
	Provenance        string
}

// WithAngDia returns b with the angular diameter and its uncertainty
// derived from radius and parallax by quadrature.
func (b Baseline) WithAngDia() Baseline {
	k := 2 * AngRadPerRsunMas / 1000
	b.AngDia = k * b.Rstar * b.Plx
	b.AngDiaErr = k * math.Sqrt(sq(b.Rstar*b.PlxErr)+sq(b.Plx*b.RstarErr))
	return b
}

func sq(x float64) float64 { return x * x }

// AppRad is the apparent angular radius in arcsec; its square scales
// grid fluxes to observed fluxes.
func (b Baseline) AppRad() float64 {
	return b.Rstar * b.Plx / 1000
}

// RunContext carries the mutable state of one star/family run through
// the pipeline stages.  It replaces any notion of shared accumulator
// state: the coordinating goroutine owns it, worker tasks only read the
// immutable pieces.
type RunContext struct {
	ID       uuid.UUID
	Star     string
	Obs      phot.Table // deduplicated, windowed observed set
	Baseline Baseline
	Fallback *Baseline // optional catalog fallback, tried before sampling
	History  []Baseline
	Filter   *FilterResult
	Chain    *Chain
	Summary  *FitSummary
}

// NewRunContext assigns a run ID and records the starting baseline.
func NewRunContext(star string, obs phot.Table, bl Baseline) *RunContext {
	return &RunContext{
		ID:       uuid.New(),
		Star:     star,
		Obs:      obs,
		Baseline: bl,
		History:  []Baseline{bl},
	}
}

func (rc *RunContext) rebase(b Baseline) {
	rc.Baseline = b
	rc.History = append(rc.History, b)
}

// Fitter runs the pipeline for one model family.  Safe for use by one
// goroutine; the grid it holds is shared read-only.
type Fitter struct {
	Grid *sedgrid.Grid
	Cfg  Config

	negFlux int64 // negative interpolated flux count, diagnostics
}

// New creates a Fitter for a loaded grid.
func New(grid *sedgrid.Grid, cfg Config) *Fitter {
	return &Fitter{Grid: grid, Cfg: cfg.withDefaults()}
}

// State is a phase of the orchestration loop.
type State int

const (
	StateInit State = iota
	StateBurnIn
	StateProduction
	StateAccuracyCheck
	StateRetry
	StateDone
)

var stateNames = []string{
	"INIT", "BURN_IN", "PRODUCTION", "ACCURACY_CHECK", "RETRY", "DONE",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[int(s)]
}

// accuracy thresholds for the retry loop
const (
	maxFitTolerance = 0.5
	maxRadiusShift  = 0.2
)

// Fit runs the pipeline on rc.  On return rc.Filter, rc.Chain and
// rc.Summary are set.  Structural failures (insufficient data, baseline
// outside the grid) are returned as errors; numeric anomalies are
// flagged in the summary and logged.
func (f *Fitter) Fit(rc *RunContext) error {
	start := time.Now()
	var (
		state   = StateInit
		retries = 0
		lowAcc  = false
		bounds  Bounds
		smp     *Sampler
		good    phot.Table
	)
	for state != StateDone {
		switch state {
		case StateInit:
			// a pre-seeded partition (stored photometry reuse)
			// skips the initial filter pass
			fr := rc.Filter
			if fr == nil {
				var err error
				if fr, err = f.filterAgainst(rc, rc.Baseline); err != nil {
					return err
				}
			}
			// poor initial agreement: recenter on the catalog
			// fallback before burning any sampler time
			if fr.Tolerance > maxFitTolerance && rc.Fallback != nil {
				log.Printf("%s %s: fit err %.2f with %s baseline, recentering on %s",
					rc.Star, f.Grid.Family, fr.Tolerance,
					rc.Baseline.Provenance, rc.Fallback.Provenance)
				rc.rebase(rc.Fallback.WithAngDia())
				var err error
				if fr, err = f.filterAgainst(rc, rc.Baseline); err != nil {
					return err
				}
			}
			rc.Filter = fr
			good = fr.Good.CleanErrors(0.1)
			bounds = BoundsFor(rc.Baseline, f.Grid.Fam())
			smp = f.newSampler(rc, good, bounds)
			smp.Walk(rc.Baseline)
			state = StateBurnIn

		case StateBurnIn:
			smp.Run(f.Cfg.BurnIn, 1, false)
			state = StateProduction

		case StateProduction:
			smp.Run(f.Cfg.Iterations, f.Cfg.Thin, true)
			rc.Chain = smp.Chain()
			state = StateAccuracyCheck

		case StateAccuracyCheck:
			rMed := rc.Chain.Percentile(ParamRstar, 0.50)
			shift := math.Abs(rMed-rc.Baseline.Rstar) / rc.Baseline.Rstar
			if rc.Filter.Tolerance <= maxFitTolerance && shift <= maxRadiusShift {
				lowAcc = false
				state = StateDone
				break
			}
			lowAcc = true
			if retries >= f.Cfg.MaxRetries {
				log.Printf("%s %s: retry cap reached, accepting low accuracy result",
					rc.Star, f.Grid.Family)
				state = StateDone
				break
			}
			state = StateRetry

		case StateRetry:
			retries++
			bl := f.rebaseline(rc)
			log.Printf("%s %s: retry %d, new baseline Teff=%.0f Rstar=%.3g (%s)",
				rc.Star, f.Grid.Family, retries, bl.Teff, bl.Rstar, bl.Provenance)
			rc.rebase(bl)
			fr, err := f.filterAgainst(rc, rc.Baseline)
			if err != nil {
				return err
			}
			rc.Filter = fr
			good = fr.Good.CleanErrors(0.1)
			bounds = BoundsFor(rc.Baseline, f.Grid.Fam())
			smp = f.newSampler(rc, good, bounds)
			smp.Walk(rc.Baseline)
			state = StateBurnIn
		}
	}
	if n := atomic.LoadInt64(&f.negFlux); n > 0 {
		log.Printf("%s %s: %d negative interpolated flux values during run",
			rc.Star, f.Grid.Family, n)
	}
	rc.Summary = f.summarize(rc, lowAcc, retries)
	rc.Summary.Elapsed = time.Since(start)
	return nil
}

// filterAgainst builds the reference curve for a baseline and runs the
// data quality filter over the observed set.
func (f *Fitter) filterAgainst(rc *RunContext, bl Baseline) (*FilterResult, error) {
	wl, flux, err := f.Grid.Curve(bl.Teff)
	if err != nil {
		return nil, err
	}
	scale := sq(bl.AppRad())
	for i := range flux {
		flux[i] *= scale
	}
	minPts := f.Cfg.FitPtsMin
	if len(rc.Obs) < minPts {
		minPts = len(rc.Obs)
	}
	return CleanData(rc.Obs, wl, flux, f.Cfg.FitErrInit, minPts)
}

// rebaseline derives a fresh baseline from the posterior 16th
// percentiles, the recentering rule of the retry loop.
func (f *Fitter) rebaseline(rc *RunContext) Baseline {
	t16 := rc.Chain.Percentile(ParamTeff, 0.16)
	t50 := rc.Chain.Percentile(ParamTeff, 0.50)
	r16 := rc.Chain.Percentile(ParamRstar, 0.16)
	r50 := rc.Chain.Percentile(ParamRstar, 0.50)
	return Baseline{
		Teff:       math.Trunc(t16),
		TeffErr:    math.Trunc(t50 - t16),
		Rstar:      r16,
		RstarErr:   r50 - r16,
		Plx:        rc.Baseline.Plx,
		PlxErr:     rc.Baseline.PlxErr,
		Provenance: "prior sedmc fit",
	}.WithAngDia()
}
