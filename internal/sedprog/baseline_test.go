// Public domain.

package sedprog

import (
	"math"
	"strings"
	"testing"
)

const batchSample = `star,ra,dec,plx,eplx,teff,eteff,rstar,erstar,dia,edia,source
HD 10700,26.017,-15.937,273.96,0.17,5333,30,0.81,0.02,2.08,0.03,interferometry
HD 10700,26.017,-15.937,273.96,0.17,5290,80,0.79,0.05,,,DR2
HD 22049,53.233,-9.458,310.58,0.14,5100,60,0.74,0.02,,,DR2
`

func TestReadBaselines(t *testing.T) {
	ts, err := ReadBaselines(strings.NewReader(batchSample))
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 2 {
		t.Fatalf("%d targets, want 2", len(ts))
	}

	tc := ts[0]
	if tc.Star != "HD 10700" || tc.RA != 26.017 || tc.Dec != -15.937 {
		t.Errorf("target identity: %+v", tc)
	}
	b := tc.Baseline
	if b.Teff != 5333 || b.Rstar != .81 || b.Plx != 273.96 {
		t.Errorf("primary baseline: %+v", b)
	}
	// dia given in the file is kept as is
	if b.AngDia != 2.08 || b.AngDiaErr != .03 {
		t.Errorf("given dia not kept: %g ± %g", b.AngDia, b.AngDiaErr)
	}
	if b.Provenance != "interferometry" {
		t.Errorf("provenance %q", b.Provenance)
	}

	// second row of the same star is the fallback
	fb := tc.Fallback
	if fb == nil {
		t.Fatal("no fallback for HD 10700")
	}
	if fb.Teff != 5290 || fb.Provenance != "DR2" {
		t.Errorf("fallback: %+v", fb)
	}
	// missing dia derived from rstar and plx
	want := 2 * 4.65047 / 1000 * .79 * 273.96
	if math.Abs(fb.AngDia-want) > 1e-9 {
		t.Errorf("fallback dia %g, want derived %g", fb.AngDia, want)
	}

	if ts[1].Star != "HD 22049" || ts[1].Fallback != nil {
		t.Errorf("second target: %+v", ts[1])
	}
}

func TestReadBaselinesErrors(t *testing.T) {
	hdr := "star,ra,dec,plx,eplx,teff,eteff,rstar,erstar,dia,edia,source\n"
	for _, c := range []struct{ name, in string }{
		{"empty", ""},
		{"short row", hdr + "x,1,2,3\n"},
		{"bad number", hdr + "x,1,2,plx,0,5000,1,1,0,0,0,s\n"},
		{"zero teff", hdr + "x,1,2,100,0,0,0,1,0,0,0,s\n"},
		{"zero plx", hdr + "x,1,2,0,0,5000,0,1,0,0,0,s\n"},
		{"three rows one star", hdr +
			"x,1,2,100,0,5000,0,1,0,0,0,a\n" +
			"x,1,2,100,0,5000,0,1,0,0,0,b\n" +
			"x,1,2,100,0,5000,0,1,0,0,0,c\n"},
	} {
		if _, err := ReadBaselines(strings.NewReader(c.in)); err == nil {
			t.Errorf("%s: no error", c.name)
		}
	}
}
