// Public domain.

package sedfit

import (
	"errors"
	"testing"

	"github.com/proxcent/sedmc/phot"
)

// reference curve: flat flux 1.0 over .5 to 10 micron
var refWL, refFlux = func() ([]float64, []float64) {
	var wl, fl []float64
	for w := .5; w <= 10; w += .5 {
		wl = append(wl, w)
		fl = append(fl, 1)
	}
	return wl, fl
}()

func obsAt(dev ...float64) phot.Table {
	// alternating short and long wavelengths so long coverage is easy
	t := make(phot.Table, len(dev))
	for i, d := range dev {
		wl := 1.
		if i%2 == 1 {
			wl = 5
		}
		t[i] = phot.Point{WL: wl, Flux: 1 / (1 - d), Err: .01}
	}
	return t
}

func TestCleanDataAccepts(t *testing.T) {
	obs := obsAt(0, .02, .05, -.03)
	fr, err := CleanData(obs, refWL, refFlux, .1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if fr.Points != 4 || len(fr.Bad) != 0 {
		t.Fatalf("got %d good %d bad, want 4 good 0 bad", fr.Points, len(fr.Bad))
	}
	if fr.Tolerance != .1 {
		t.Fatalf("tolerance %g, want initial .1", fr.Tolerance)
	}
}

func TestCleanDataWidens(t *testing.T) {
	// two points beyond the initial tolerance force widening
	obs := obsAt(0, .02, .15, .18)
	fr, err := CleanData(obs, refWL, refFlux, .1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if fr.Points != 4 {
		t.Fatalf("got %d points, want 4", fr.Points)
	}
	if fr.Tolerance <= .1 {
		t.Fatalf("tolerance %g not widened", fr.Tolerance)
	}
	// widening is monotone: a rerun at the settled tolerance accepts
	// at least as many points as any narrower one
	fr2, err := CleanData(obs, refWL, refFlux, fr.Tolerance, 4)
	if err != nil {
		t.Fatal(err)
	}
	if fr2.Points < fr.Points {
		t.Fatalf("rerun at tolerance %g accepted %d < %d",
			fr.Tolerance, fr2.Points, fr.Points)
	}
}

func TestCleanDataLongWLRule(t *testing.T) {
	// enough points, but all short of 2 micron at the initial
	// tolerance; the long point sits at dev .25
	obs := phot.Table{
		{WL: .5, Flux: 1, Err: .01},
		{WL: 1, Flux: 1, Err: .01},
		{WL: 1.5, Flux: 1, Err: .01},
		{WL: 5, Flux: 1 / (1 - .25), Err: .01},
	}
	fr, err := CleanData(obs, refWL, refFlux, .1, 3)
	if err != nil {
		t.Fatal(err)
	}
	// must have widened past .25 to pull in the 5 micron point
	if fr.Tolerance <= .25 {
		t.Fatalf("tolerance %g, want > .25 for long wavelength coverage",
			fr.Tolerance)
	}
	if min, max := fr.WLRange(); min != .5 || max != 5 {
		t.Fatalf("window [%g,%g], want [.5,5]", min, max)
	}
}

func TestCleanDataInsufficient(t *testing.T) {
	var ie *InsufficientDataError

	// empty set
	if _, err := CleanData(nil, refWL, refFlux, .1, 4); !errors.As(err, &ie) {
		t.Fatalf("empty set: got %v", err)
	}

	// no long wavelength point can ever satisfy the coverage rule
	obs := phot.Table{
		{WL: .5, Flux: 1, Err: .01},
		{WL: 1, Flux: 1, Err: .01},
	}
	_, err := CleanData(obs, refWL, refFlux, .1, 2)
	if !errors.As(err, &ie) {
		t.Fatalf("short only set: got %v", err)
	}
	if ie.Tolerance <= .1 {
		t.Fatalf("error tolerance %g, want widened value", ie.Tolerance)
	}
}

func TestCleanDataQuality(t *testing.T) {
	obs := obsAt(.02, .04)
	fr, err := CleanData(obs, refWL, refFlux, .1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if fr.Quality < .025 || fr.Quality > .035 {
		t.Fatalf("quality %g, want ≈ .03", fr.Quality)
	}
}

func TestNearestIdx(t *testing.T) {
	wls := []float64{1, 2, 4, 8}
	for _, c := range []struct {
		x    float64
		want int
	}{
		{.5, 0}, {1, 0}, {1.4, 0}, {1.6, 1}, {3, 1}, {3.1, 2}, {9, 3},
	} {
		if got := nearestIdx(wls, c.x); got != c.want {
			t.Errorf("nearestIdx(%g) = %d, want %d", c.x, got, c.want)
		}
	}
}
