// Public domain.

package main

import (
	"bufio"
	"compress/gzip"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/proxcent/sedmc/internal/sedgrid"
)

const versionString = "gridgen version 1.0 Go source."
const copyrightString = "Public domain."

type fatal struct {
	err error
}

func exit(err error) {
	panic(fatal{err})
}

func handleFatal() {
	if err := recover(); err != nil {
		if f, ok := err.(fatal); ok {
			log.Fatal(f.err)
		}
		panic(err)
	}
}

func main() {
	defer handleFatal()

	godotenv.Load()
	dataPath := os.Getenv("SEDMC_DATA")
	if dataPath == "" {
		dataPath = "."
	}
	flag.Usage = func() {
		os.Stderr.WriteString(`Usage:
  gridgen                       Convert spectra tables for all known families.
  gridgen <spectra-file> ...    Convert the named spectra tables.
  gridgen -v                    Display version and copyright.

Options:
  -o <grid-file>    output location, default ` +
			filepath.Join(dataPath, sedgrid.Gfn) + `

For full documentation:
   go doc gridgen
`)
	}
	outFn := flag.String("o", "", "output grid file")
	vers := flag.Bool("v", false, "display version and copyright")
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}

	files := flag.Args()
	if len(files) == 0 {
		// default: one table per known family under the data path,
		// plain or gzipped.  missing families are skipped with a note.
		for _, fam := range sedgrid.Families {
			fn := filepath.Join(dataPath, "spectra", fam.Name+".dat")
			if _, err := os.Stat(fn); err != nil {
				if _, err = os.Stat(fn + ".gz"); err != nil {
					fmt.Println("No spectra table for", fam.Name)
					continue
				}
				fn += ".gz"
			}
			files = append(files, fn)
		}
	}
	var grids []*sedgrid.Grid
	for _, fn := range files {
		fmt.Println("Reading", fn)
		g, err := readSpectra(fn)
		if err != nil {
			exit(err)
		}
		lo, hi := g.TempRange()
		fmt.Printf("%d %s spectra, %.0f K to %.0f K\n",
			len(g.Specs), g.Family, lo, hi)
		grids = append(grids, g)
	}
	if len(grids) == 0 {
		exit(fmt.Errorf("no spectra tables found"))
	}

	mPath := *outFn
	if mPath == "" {
		mPath = filepath.Join(dataPath, sedgrid.Gfn)
	}
	fmt.Println("Writing", mPath)
	if err := sedgrid.WriteFile(mPath, time.Now(), grids); err != nil {
		exit(err)
	}
}

// readSpectra parses one spectra table, gunzipping by file suffix.
func readSpectra(fn string) (*sedgrid.Grid, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(fn, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return parseSpectra(fn, r)
}

// Table format, ASCII:
//
//	sedmc spectra
//	family <name>
//	t <teff> <grav>
//	<wl> <flux>
//	...
//	t <teff> <grav>
//	...
//
// Wavelengths ascending within a spectrum, microns.  Fluxes are raw
// model surface fluxes; the load-time scale correction is not applied
// here.
func parseSpectra(fn string, r io.Reader) (*sedgrid.Grid, error) {
	bf := bufio.NewReader(r)
	var ln int
	corrupt := func(why interface{}) error {
		return fmt.Errorf("%s corrupt: %v. line %d", fn, why, ln)
	}
	readLine := func() (string, error) {
		ln++
		line, isPre, err := bf.ReadLine()
		if err != nil {
			return "", err
		}
		if isPre {
			return "", corrupt("unexpected long line")
		}
		return string(line), nil
	}
	l, err := readLine()
	if err != nil {
		return nil, corrupt(err)
	}
	if l != "sedmc spectra" {
		return nil, corrupt(`"sedmc spectra" expected`)
	}
	if l, err = readLine(); err != nil {
		return nil, corrupt(err)
	}
	ff := strings.Fields(l)
	if len(ff) != 2 || ff[0] != "family" {
		return nil, corrupt("family line expected")
	}
	family := ff[1]
	if _, err := sedgrid.FamilyByName(family); err != nil {
		return nil, corrupt(err)
	}

	var specs []sedgrid.Spectrum
	var cur *sedgrid.Spectrum
	for {
		l, err = readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, corrupt(err)
		}
		ff = strings.Fields(l)
		if len(ff) == 0 {
			continue
		}
		if ff[0] == "t" {
			if len(ff) != 3 {
				return nil, corrupt("t line needs teff and grav")
			}
			teff, err1 := strconv.ParseFloat(ff[1], 64)
			grav, err2 := strconv.ParseFloat(ff[2], 64)
			if err1 != nil || err2 != nil {
				return nil, corrupt("unparseable t line")
			}
			specs = append(specs, sedgrid.Spectrum{Teff: teff, Grav: grav})
			cur = &specs[len(specs)-1]
			continue
		}
		if cur == nil {
			return nil, corrupt("t line expected")
		}
		if len(ff) != 2 {
			return nil, corrupt("wl flux pair expected")
		}
		wl, err1 := strconv.ParseFloat(ff[0], 64)
		flux, err2 := strconv.ParseFloat(ff[1], 64)
		if err1 != nil || err2 != nil {
			return nil, corrupt("unparseable wl flux pair")
		}
		if n := len(cur.WL); n > 0 && wl <= cur.WL[n-1] {
			return nil, corrupt("wavelengths not ascending")
		}
		cur.WL = append(cur.WL, wl)
		cur.Flux = append(cur.Flux, flux)
	}
	for i := range specs {
		if len(specs[i].WL) < 2 {
			return nil, fmt.Errorf("%s: spectrum at %g K has fewer than 2 points",
				fn, specs[i].Teff)
		}
	}
	return sedgrid.New(family, specs)
}
