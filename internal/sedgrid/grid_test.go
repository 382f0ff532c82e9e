// Public domain.

package sedgrid

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// planck gives a blackbody-shaped flux for test spectra, arbitrary scale.
func planck(wl, teff float64) float64 {
	const c2 = 14387.7 // micron K
	return 1e14 / (wl * wl * wl * (math.Exp(c2/(wl*teff)) - 1))
}

func testWavelengths() []float64 {
	wl := make([]float64, 80)
	for i := range wl {
		wl[i] = 0.3 + 0.15*float64(i) // 0.3 .. 12.15 micron
	}
	return wl
}

// testGrid builds a nextgen-family grid with nodes from 3000 to 9000 K
// in 100 K steps.
func testGrid(t *testing.T) *Grid {
	t.Helper()
	wl := testWavelengths()
	var specs []Spectrum
	for teff := 3000.0; teff <= 9000; teff += 100 {
		fl := make([]float64, len(wl))
		for i, w := range wl {
			fl[i] = planck(w, teff)
		}
		specs = append(specs, Spectrum{Teff: teff, Grav: 4.5, WL: wl, Flux: fl})
	}
	g, err := New("nextgen", specs)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestFamilyByName(t *testing.T) {
	for _, name := range []string{"ck04", "nextgen"} {
		f, err := FamilyByName(name)
		if err != nil {
			t.Fatal(err)
		}
		if f.Name != name {
			t.Fatalf("got %q, want %q", f.Name, name)
		}
	}
	_, err := FamilyByName("kurucz")
	if _, ok := err.(UnknownFamilyError); !ok {
		t.Fatalf("got %v, want UnknownFamilyError", err)
	}
}

var bracketCases = []struct {
	family string
	teff   float64
	lo, hi float64
}{
	{"nextgen", 5512.3, 5500, 5600},
	{"nextgen", 5501, 5500, 5600},
	{"nextgen", 5599.9, 5500, 5600},
	{"nextgen", 10200, 10000, 10500},
	{"nextgen", 10800, 10500, 11000},
	{"ck04", 5512.3, 5500, 5750},
	{"ck04", 3610, 3500, 3750},
	{"ck04", 13400, 13000, 14000},
	{"ck04", 13700, 13000, 14000},
}

func TestBracket(t *testing.T) {
	for _, c := range bracketCases {
		f, err := FamilyByName(c.family)
		if err != nil {
			t.Fatal(err)
		}
		lo, hi := f.Bracket(c.teff)
		if lo != c.lo || hi != c.hi {
			t.Errorf("%s %g K: got (%g, %g), want (%g, %g)",
				c.family, c.teff, lo, hi, c.lo, c.hi)
		}
		if !(lo < c.teff && c.teff < hi) {
			t.Errorf("%s %g K: bracket (%g, %g) does not enclose",
				c.family, c.teff, lo, hi)
		}
	}
}

func TestReadWriteFile(t *testing.T) {
	wl := []float64{0.5, 1, 2, 4}
	raw := []float64{1, 2, 3, 4}
	g := &Grid{Family: "nextgen", Specs: []Spectrum{
		{Teff: 5000, Grav: 4.5, WL: wl, Flux: append([]float64{}, raw...)},
	}}
	fn := filepath.Join(t.TempDir(), Gfn)
	if err := WriteFile(fn, time.Now(), []*Grid{g}); err != nil {
		t.Fatal(err)
	}
	grids, _, err := ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	rg, ok := grids["nextgen"]
	if !ok {
		t.Fatal("nextgen grid missing after read")
	}
	if rg.Fam().Name != "nextgen" {
		t.Fatal("family config not attached on read")
	}
	k := 4.5 * 4.5 * fluxScale / math.Pi
	for i, f := range rg.Specs[0].Flux {
		want := raw[i] * k
		if math.Abs(f-want) > 1e-18 {
			t.Fatalf("flux[%d] = %g, want %g (scale correction)", i, f, want)
		}
	}
}

func TestReadFileTruncatesCk04(t *testing.T) {
	wl := []float64{0.5, 1, 2}
	var specs []Spectrum
	for teff := 3500.0; teff < 3500+250*70; teff += 250 {
		specs = append(specs, Spectrum{
			Teff: teff, Grav: 4, WL: wl, Flux: []float64{1, 1, 1}})
	}
	fn := filepath.Join(t.TempDir(), Gfn)
	err := WriteFile(fn, time.Now(), []*Grid{{Family: "ck04", Specs: specs}})
	if err != nil {
		t.Fatal(err)
	}
	grids, _, err := ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(grids["ck04"].Specs); n != 60 {
		t.Fatalf("ck04 kept %d spectra, want 60", n)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, _, err := ReadFile(filepath.Join(t.TempDir(), "nope.grid")); err == nil {
		t.Fatal("expected error for missing grid file")
	}
	if _, ok := os.LookupEnv("SEDMC_DATA"); ok {
		t.Log("SEDMC_DATA set in test environment")
	}
}
