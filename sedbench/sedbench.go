// Public domain.

package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/proxcent/sedmc/internal/sedprog"
)

const versionString = "sedbench version 1.0"
const copyrightString = "Public domain."

var ignored int

func main() {
	// parse command line
	flag.Usage = func() {
		os.Stderr.WriteString(
			"Usage: sedbench [options] <results-file> <truth-file> [threshold]\n")
		flag.PrintDefaults()
		os.Stderr.WriteString(`
For full documentation:
   go doc sedbench
`)
	}
	vers := flag.Bool("v", false, "display version and copyright")
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}
	if n := flag.NArg(); n < 2 || n > 3 {
		flag.Usage()
		os.Exit(1)
	}
	// parse threshold, percent radius accuracy counted as a recovery
	threshold := 5.
	if flag.NArg() == 3 {
		var err error
		threshold, err = strconv.ParseFloat(flag.Arg(2), 64)
		if err != nil {
			log.Fatalln("Bad threshold:", err)
		}
	}

	rows, err := readResults(flag.Arg(0))
	if err != nil {
		log.Fatalln("results file:", err)
	}
	truth, err := sedprog.ReadBaselineFile(flag.Arg(1))
	if err != nil {
		log.Fatalln("truth file:", err)
	}
	truthBy := make(map[string]sedprog.Target, len(truth))
	for _, t := range truth {
		truthBy[t.Star] = t
	}

	fams := map[string]*famStats{}
	var order []string
	matched := map[string]bool{}
	bestAgree, bestTotal := 0, 0
	byStar := map[string][]resultRow{}
	for _, r := range rows {
		t, ok := truthBy[r.star]
		if !ok {
			ignored++
			continue
		}
		matched[r.star] = true
		s := fams[r.model]
		if s == nil {
			s = &famStats{name: r.model}
			fams[r.model] = s
			order = append(order, r.model)
		}
		s.add(r, t)
		byStar[r.star] = append(byStar[r.star], r)
	}

	// best-flag agreement: of the stars with more than one family
	// fitted, how often the flagged family also had the smaller true
	// radius error
	for star, rs := range byStar {
		if len(rs) < 2 {
			continue
		}
		t := truthBy[star]
		bestTotal++
		flagged, trueBest := 0, 0
		for i, r := range rs {
			if r.best {
				flagged = i
			}
			if radErr(r, t) < radErr(rs[trueBest], t) {
				trueBest = i
			}
		}
		if flagged == trueBest {
			bestAgree++
		}
	}

	// report statistics
	fmt.Println("\nResults file: ", flag.Arg(0))
	fmt.Println("Truth file:   ", flag.Arg(1))
	fmt.Println("Stars matched:", len(matched))
	if ignored != 0 {
		fmt.Println("Rows ignored: ", ignored)
	}
	fmt.Printf("Threshold:     %g%% radius accuracy\n", threshold)
	fmt.Println()
	fmt.Println("Model      N  Teff acc%  Teff prec%  R acc%  R prec%  within  low acc")
	sort.Strings(order)
	for _, name := range order {
		s := fams[name]
		within := 0
		for _, a := range s.rAcc {
			if a*100 <= threshold {
				within++
			}
		}
		fmt.Printf("%-8s %3d      %5.2f       %5.2f   %5.2f    %5.2f  %3d/%-3d  %d\n",
			s.name, len(s.rAcc),
			100*median(s.tAcc), 100*median(s.tPrec),
			100*median(s.rAcc), 100*median(s.rPrec),
			within, len(s.rAcc), s.lowAcc)
	}
	if bestTotal > 0 {
		fmt.Printf("\nBest-family flag matched the smaller radius error on %d of %d stars.\n",
			bestAgree, bestTotal)
	}
}

type famStats struct {
	name        string
	tAcc, tPrec []float64
	rAcc, rPrec []float64
	lowAcc      int
}

func (s *famStats) add(r resultRow, t sedprog.Target) {
	s.tAcc = append(s.tAcc, math.Abs(r.teff-t.Baseline.Teff)/t.Baseline.Teff)
	s.tPrec = append(s.tPrec, (r.teffPlus+r.teffMinus)/2/r.teff)
	s.rAcc = append(s.rAcc, radErr(r, t))
	s.rPrec = append(s.rPrec, (r.rstarPlus+r.rstarMinus)/2/r.rstar)
	if r.lowAcc {
		s.lowAcc++
	}
}

func radErr(r resultRow, t sedprog.Target) float64 {
	return math.Abs(r.rstar-t.Baseline.Rstar) / t.Baseline.Rstar
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := append([]float64{}, xs...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

type resultRow struct {
	star, model                  string
	best, lowAcc                 bool
	teff, teffPlus, teffMinus    float64
	rstar, rstarPlus, rstarMinus float64
}

// readResults reads the results csv written by sedmc, locating columns
// by header name so column order and extra columns don't matter.
func readResults(fn string) ([]resultRow, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("empty results file")
	}
	ci := map[string]int{}
	for i, h := range recs[0] {
		ci[h] = i
	}
	for _, h := range []string{"star", "model", "best", "teff", "teff_plus",
		"teff_minus", "rstar", "rstar_plus", "rstar_minus", "low_accuracy"} {
		if _, ok := ci[h]; !ok {
			return nil, fmt.Errorf("results file has no %s column", h)
		}
	}
	var rows []resultRow
	for _, rec := range recs[1:] {
		var r resultRow
		var err error
		r.star = rec[ci["star"]]
		r.model = rec[ci["model"]]
		r.best = rec[ci["best"]] == "true"
		r.lowAcc = rec[ci["low_accuracy"]] == "true"
		pf := func(col string) float64 {
			var v float64
			if err == nil {
				v, err = strconv.ParseFloat(rec[ci[col]], 64)
			}
			return v
		}
		r.teff = pf("teff")
		r.teffPlus = pf("teff_plus")
		r.teffMinus = pf("teff_minus")
		r.rstar = pf("rstar")
		r.rstarPlus = pf("rstar_plus")
		r.rstarMinus = pf("rstar_minus")
		if err != nil || r.teff <= 0 || r.rstar <= 0 {
			ignored++
			continue
		}
		rows = append(rows, r)
	}
	return rows, nil
}
