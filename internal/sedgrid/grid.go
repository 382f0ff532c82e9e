// Public domain.

// Package sedgrid defines the synthetic stellar spectrum grid used by
// sedmc and the gridgen utility program.
package sedgrid

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"sort"
	"time"
)

// Gfn, the default grid file name.  The file is created by gridgen.
const Gfn = "sedmc.grid"

// fluxScale converts the stored synthetic fluxes to Jy for a star of one
// solar radius at a distance giving unit apparent radius.  Applied with
// the surface gravity term on load; see ReadFile.
const fluxScale = 5.325e-11

// Spectrum holds one synthetic spectrum at a single grid temperature.
// Wavelengths are microns, strictly increasing.  After loading, fluxes
// are scale corrected (see ReadFile); multiplying by an apparent angular
// radius squared gives Jy at Earth.
type Spectrum struct {
	Teff float64 // K
	Grav float64 // surface gravity of the synthetic model
	WL   []float64
	Flux []float64
}

// Grid is the full spectrum set for one model family, ascending in
// temperature.  Immutable once loaded; shared read-only by all
// interpolation calls in a run.
type Grid struct {
	Family string
	Specs  []Spectrum

	fam Family
}

// Family describes the temperature structure of a supported model grid:
// node spacing is LowStep below Threshold and HighStep above it, and
// Floor is the lowest temperature the family supports for prior bounds.
// MaxSpecs, when nonzero, truncates the grid on load.
type Family struct {
	Name      string
	Threshold float64
	LowStep   float64
	HighStep  float64
	Floor     float64
	MaxSpecs  int
}

// Families lists the supported model families.  The ck04 truncation to
// 60 spectra drops its high temperature models, which misbehave.
var Families = []Family{
	{Name: "ck04", Threshold: 13000, LowStep: 250, HighStep: 1000, Floor: 3500, MaxSpecs: 60},
	{Name: "nextgen", Threshold: 10000, LowStep: 100, HighStep: 500, Floor: 1700, MaxSpecs: 0},
}

// UnknownFamilyError is returned for a model family name outside the
// supported set.  It is fatal for the run requesting it; there is no
// silent default.
type UnknownFamilyError string

func (e UnknownFamilyError) Error() string {
	return fmt.Sprintf("sedgrid: unknown model family %q", string(e))
}

// FamilyByName looks up a supported family configuration.
func FamilyByName(name string) (Family, error) {
	for _, f := range Families {
		if f.Name == name {
			return f, nil
		}
	}
	return Family{}, UnknownFamilyError(name)
}

// New assembles a grid from raw spectra for a named family, sorting by
// temperature.  Fluxes are used as given; no scale correction is
// applied.  Used by gridgen and tests.  ReadFile is the loading path for
// fitting.
func New(family string, specs []Spectrum) (*Grid, error) {
	fam, err := FamilyByName(family)
	if err != nil {
		return nil, err
	}
	g := &Grid{Family: family, Specs: specs, fam: fam}
	sort.SliceStable(g.Specs, func(i, j int) bool {
		return g.Specs[i].Teff < g.Specs[j].Teff
	})
	return g, nil
}

// Fam returns the family configuration attached to the grid.
func (g *Grid) Fam() Family { return g.fam }

// ReadFile reads a grid file written by gridgen and returns the grids by
// family name along with the file's build time.
//
// The scale correction flux*grav²*5.325e-11/π is applied here, once, so
// every later interpolation sees corrected fluxes.  Family truncation
// (MaxSpecs) is also applied here.
func ReadFile(fn string) (grids map[string]*Grid, built time.Time, err error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, built, err
	}
	defer f.Close()
	dec := gob.NewDecoder(f)
	if err = dec.Decode(&built); err != nil {
		return nil, built, err
	}
	var raw []Grid
	if err = dec.Decode(&raw); err != nil {
		return nil, built, err
	}
	grids = make(map[string]*Grid, len(raw))
	for i := range raw {
		g := &raw[i]
		if g.fam, err = FamilyByName(g.Family); err != nil {
			return nil, built, err
		}
		if g.fam.MaxSpecs > 0 && len(g.Specs) > g.fam.MaxSpecs {
			g.Specs = g.Specs[:g.fam.MaxSpecs]
		}
		for j := range g.Specs {
			s := &g.Specs[j]
			k := s.Grav * s.Grav * fluxScale / math.Pi
			for x := range s.Flux {
				s.Flux[x] *= k
			}
		}
		grids[g.Family] = g
	}
	return grids, built, nil
}

// WriteFile writes raw grids in the format read by ReadFile.  Grids must
// hold uncorrected fluxes; see ReadFile.
func WriteFile(fn string, built time.Time, grids []*Grid) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	enc := gob.NewEncoder(f)
	if err = enc.Encode(built); err != nil {
		f.Close()
		return err
	}
	raw := make([]Grid, len(grids))
	for i, g := range grids {
		raw[i] = *g
	}
	if err = enc.Encode(raw); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// TempRange returns the lowest and highest node temperatures in the grid.
func (g *Grid) TempRange() (lo, hi float64) {
	if len(g.Specs) == 0 {
		return 0, 0
	}
	return g.Specs[0].Teff, g.Specs[len(g.Specs)-1].Teff
}

// node returns the spectrum at an exact node temperature, or nil.
func (g *Grid) node(teff float64) *Spectrum {
	for i := range g.Specs {
		if g.Specs[i].Teff == teff {
			return &g.Specs[i]
		}
	}
	return nil
}
