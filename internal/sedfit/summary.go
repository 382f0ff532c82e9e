// Public domain.

package sedfit

import (
	"math"
	"time"

	"github.com/soniakeys/unit"
)

// FitSummary is the reported result of one star/family run: posterior
// medians with 16th/84th percentile uncertainties, the MAP estimate,
// derived angular diameter, convergence diagnostics, and the data
// quality figures of the final filter pass.
type FitSummary struct {
	Star   string
	Family string

	Teff       float64 // K, posterior median
	TeffMinus  float64 // median - 16th percentile
	TeffPlus   float64 // 84th percentile - median
	Rstar      float64 // Rsun, posterior median
	RstarMinus float64
	RstarPlus  float64

	MAPTeff  float64
	MAPRstar float64
	MAPLnP   float64

	Scale     float64    // apparent angular radius squared, arcsec²
	AngDia    unit.Angle // derived angular diameter
	AngDiaErr unit.Angle

	TauTeff   float64 // integrated autocorrelation times
	TauRstar  float64
	Converged bool

	FitPoints    int     // photometry points accepted by the filter
	BadPoints    int     // points rejected by the filter
	FitTolerance float64 // tolerance the filter settled on
	FitQuality   float64 // mean absolute deviation of accepted points
	WLMin, WLMax float64 // wavelength window of accepted points, µm

	LowAccuracy bool
	Retries     int
	Provenance  string // provenance of the final baseline
	Elapsed     time.Duration
}

func (f *Fitter) summarize(rc *RunContext, lowAcc bool, retries int) *FitSummary {
	t16 := rc.Chain.Percentile(ParamTeff, 0.16)
	t50 := rc.Chain.Percentile(ParamTeff, 0.50)
	t84 := rc.Chain.Percentile(ParamTeff, 0.84)
	r16 := rc.Chain.Percentile(ParamRstar, 0.16)
	r50 := rc.Chain.Percentile(ParamRstar, 0.50)
	r84 := rc.Chain.Percentile(ParamRstar, 0.84)

	mapT, mapR, mapL := rc.Chain.MAP()

	tauT, convT := rc.Chain.AutocorrTime(ParamTeff)
	tauR, convR := rc.Chain.AutocorrTime(ParamRstar)

	k := 2 * AngRadPerRsunMas / 1000
	plx, plxErr := rc.Baseline.Plx, rc.Baseline.PlxErr
	ang := k * r50 * plx
	angErr := k * math.Sqrt(sq(r50*plxErr)+sq(plx*(r84-r16)/2))

	wlMin, wlMax := rc.Filter.WLRange()

	return &FitSummary{
		Star:   rc.Star,
		Family: f.Grid.Family,

		Teff:       t50,
		TeffMinus:  t50 - t16,
		TeffPlus:   t84 - t50,
		Rstar:      r50,
		RstarMinus: r50 - r16,
		RstarPlus:  r84 - r50,

		MAPTeff:  mapT,
		MAPRstar: mapR,
		MAPLnP:   mapL,

		Scale:     sq(r50 * plx / 1000),
		AngDia:    unit.AngleFromSec(ang),
		AngDiaErr: unit.AngleFromSec(angErr),

		TauTeff:   tauT,
		TauRstar:  tauR,
		Converged: convT && convR,

		FitPoints:    rc.Filter.Points,
		BadPoints:    len(rc.Filter.Bad),
		FitTolerance: rc.Filter.Tolerance,
		FitQuality:   rc.Filter.Quality,
		WLMin:        wlMin,
		WLMax:        wlMax,

		LowAccuracy: lowAcc,
		Retries:     retries,
		Provenance:  rc.Baseline.Provenance,
	}
}

// RadiusPrecision is the relative width of the radius posterior,
// (plus+minus)/2 over the median.  The batch driver uses it to pick the
// better of two model families.
func (s *FitSummary) RadiusPrecision() float64 {
	if s.Rstar == 0 {
		return math.Inf(1)
	}
	return (s.RstarPlus + s.RstarMinus) / 2 / s.Rstar
}
