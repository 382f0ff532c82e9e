// Public domain.

// Package phot defines the observed photometry table consumed by sedmc.
//
// A table is an ordered sequence of flux measurements at known
// wavelengths, collected from VO photometry services and stored as CSV.
// Functions here cover the cleanup steps applied before fitting:
// dropping blacklisted bands, deduplicating by wavelength, restricting to
// an analysis window, and replacing unusable flux errors.
package phot

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
)

// Point is a single observed photometry measurement.
type Point struct {
	WL   float64 // wavelength, microns
	Flux float64 // flux, Jy
	Err  float64 // flux error, Jy
	Src  string  // source catalog
	Band string  // filter band
}

// Table is an ordered sequence of photometry points.
type Table []Point

// Blacklist holds band names removed before fitting.  The 2MASS bands
// carry known bad data in the VizieR photometry service.
var Blacklist = []string{"2massH.dat", "2massJ.dat", "2massK.dat"}

// csv columns, in order
var header = []string{"wl", "fl", "efl", "src", "band"}

// ReadCSV reads a photometry table.  The first record must be a header
// with columns wl, fl, efl, src, band.  A missing or unparseable efl is
// read as zero; see CleanErrors.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("phot: empty table")
	}
	var t Table
	for i, rec := range recs[1:] {
		if len(rec) < 2 {
			return nil, fmt.Errorf("phot: record %d: need at least wl and fl", i+2)
		}
		var p Point
		if p.WL, err = strconv.ParseFloat(rec[0], 64); err != nil {
			return nil, fmt.Errorf("phot: record %d: bad wavelength %q", i+2, rec[0])
		}
		if p.Flux, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, fmt.Errorf("phot: record %d: bad flux %q", i+2, rec[1])
		}
		if len(rec) > 2 {
			p.Err, _ = strconv.ParseFloat(rec[2], 64)
		}
		if len(rec) > 3 {
			p.Src = rec[3]
		}
		if len(rec) > 4 {
			p.Band = rec[4]
		}
		t = append(t, p)
	}
	return t, nil
}

// ReadFile reads a photometry table from a CSV file.
func ReadFile(fn string) (Table, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV writes a table in the format read by ReadCSV.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range t {
		rec := []string{
			strconv.FormatFloat(p.WL, 'g', -1, 64),
			strconv.FormatFloat(p.Flux, 'g', -1, 64),
			strconv.FormatFloat(p.Err, 'g', -1, 64),
			p.Src,
			p.Band,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes a table to a CSV file.
func (t Table) WriteFile(fn string) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DropBands returns a copy of t without points in any of the named bands.
func (t Table) DropBands(bands []string) Table {
	out := make(Table, 0, len(t))
pts:
	for _, p := range t {
		for _, b := range bands {
			if p.Band == b {
				continue pts
			}
		}
		out = append(out, p)
	}
	return out
}

func round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

// Dedup sorts a copy of t by wavelength and removes points sharing a
// wavelength, keeping the one with the lowest flux error.  Values are
// rounded to six decimals first so near-identical catalog entries
// collapse deterministically.
func (t Table) Dedup() Table {
	out := make(Table, len(t))
	copy(out, t)
	for i := range out {
		out[i].WL = round6(out[i].WL)
		out[i].Flux = round6(out[i].Flux)
		out[i].Err = round6(out[i].Err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WL != out[j].WL {
			return out[i].WL < out[j].WL
		}
		return out[i].Err < out[j].Err
	})
	dd := out[:0]
	for i, p := range out {
		if i > 0 && p.WL == dd[len(dd)-1].WL {
			continue
		}
		dd = append(dd, p)
	}
	return dd
}

// Window returns the points with min <= wl <= max.
func (t Table) Window(min, max float64) Table {
	out := make(Table, 0, len(t))
	for _, p := range t {
		if p.WL >= min && p.WL <= max {
			out = append(out, p)
		}
	}
	return out
}

// CleanErrors returns a copy of t with zero or NaN flux errors replaced
// by frac of the flux.  A zero error would give a point infinite weight
// in the likelihood.
func (t Table) CleanErrors(frac float64) Table {
	out := make(Table, len(t))
	copy(out, t)
	for i := range out {
		if out[i].Err == 0 || math.IsNaN(out[i].Err) {
			out[i].Err = out[i].Flux * frac
		}
	}
	return out
}

// Wavelengths returns the wavelength column.
func (t Table) Wavelengths() []float64 {
	wl := make([]float64, len(t))
	for i, p := range t {
		wl[i] = p.WL
	}
	return wl
}

// Fluxes returns the flux column.
func (t Table) Fluxes() []float64 {
	fl := make([]float64, len(t))
	for i, p := range t {
		fl[i] = p.Flux
	}
	return fl
}

// Errors returns the flux error column.
func (t Table) Errors() []float64 {
	e := make([]float64, len(t))
	for i, p := range t {
		e[i] = p.Err
	}
	return e
}
