// Public domain.

package sedprog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/proxcent/sedmc/internal/sedfit"
)

// Target is one star of a batch: the primary baseline estimate plus an
// optional catalog fallback used when the primary disagrees badly with
// the photometry.
type Target struct {
	Star     string
	RA, Dec  float64 // degrees, carried through to output
	Baseline sedfit.Baseline
	Fallback *sedfit.Baseline
}

// batch csv columns, in order
var batchHeader = []string{
	"star", "ra", "dec", "plx", "eplx",
	"teff", "eteff", "rstar", "erstar", "dia", "edia", "source",
}

// ReadBaselines parses a batch file.  The first record must be a header
// with the columns
//
//	star,ra,dec,plx,eplx,teff,eteff,rstar,erstar,dia,edia,source
//
// Consecutive records sharing a star name form the primary baseline
// followed by the fallback.  A zero or missing dia is derived from
// rstar and plx.
func ReadBaselines(r io.Reader) ([]Target, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("sedprog: empty batch file")
	}
	var ts []Target
	for i, rec := range recs[1:] {
		if len(rec) < len(batchHeader) {
			return nil, fmt.Errorf("sedprog: record %d: %d columns, need %d",
				i+2, len(rec), len(batchHeader))
		}
		var f [11]float64
		for j := range f {
			s := rec[j+1]
			if s == "" {
				continue
			}
			if f[j], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("sedprog: record %d: bad %s %q",
					i+2, batchHeader[j+1], s)
			}
		}
		bl := sedfit.Baseline{
			Plx: f[2], PlxErr: f[3],
			Teff: f[4], TeffErr: f[5],
			Rstar: f[6], RstarErr: f[7],
			AngDia: f[8], AngDiaErr: f[9],
			Provenance: rec[11],
		}
		if bl.AngDia == 0 {
			bl = bl.WithAngDia()
		}
		if bl.Teff <= 0 || bl.Rstar <= 0 || bl.Plx <= 0 {
			return nil, fmt.Errorf(
				"sedprog: record %d: star %s needs positive teff, rstar and plx",
				i+2, rec[0])
		}
		if n := len(ts); n > 0 && ts[n-1].Star == rec[0] {
			if ts[n-1].Fallback != nil {
				return nil, fmt.Errorf(
					"sedprog: record %d: more than two baselines for %s",
					i+2, rec[0])
			}
			ts[n-1].Fallback = &bl
			continue
		}
		ts = append(ts, Target{
			Star: rec[0], RA: f[0], Dec: f[1], Baseline: bl,
		})
	}
	return ts, nil
}

// ReadBaselineFile reads a batch file from disk.
func ReadBaselineFile(fn string) ([]Target, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBaselines(f)
}
