// Public domain.

package sedprog

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/proxcent/sedmc/internal/sedfit"
	"github.com/proxcent/sedmc/internal/sedgrid"
)

// config is the parsed run configuration: sampler parameters plus the
// batch-level photometry window and model family list.
type config struct {
	fit          sedfit.Config
	wlMin, wlMax float64 // photometry window, microns
	families     []string
	progress     bool
}

func defaultConfig() *config {
	return &config{
		fit:      sedfit.DefaultConfig(),
		wlMax:    math.Inf(1),
		families: []string{"nextgen", "ck04"},
		progress: true,
	}
}

// parseConfig reads the keyword config file.  Blank lines and lines
// starting with # are ignored.  Bare keywords toggle flags; keyword
// value lines set numbers; models takes a list of family names.
func parseConfig(r io.Reader) (*config, error) {
	cfg := defaultConfig()
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		ls := strings.TrimSpace(sc.Text())
		if ls == "" || ls[0] == '#' {
			continue
		}
		f := strings.Fields(ls)
		bad := func(why string) error {
			return fmt.Errorf("config line %d: %s: %s", line, why, ls)
		}
		switch f[0] {
		case "repeatable":
			cfg.fit.Repeatable = true
			continue
		case "random":
			cfg.fit.Repeatable = false
			continue
		case "progress":
			cfg.progress = true
			continue
		case "noprogress":
			cfg.progress = false
			continue
		case "models":
			if len(f) < 2 {
				return nil, bad("needs at least one family name")
			}
			for _, name := range f[1:] {
				if _, err := sedgrid.FamilyByName(name); err != nil {
					return nil, bad(err.Error())
				}
			}
			cfg.families = f[1:]
			continue
		}
		if len(f) != 2 {
			return nil, bad("needs a single value")
		}
		switch f[0] {
		case "walkers", "iterations", "burnin", "thin", "fitpoints":
			n, err := strconv.Atoi(f[1])
			if err != nil || n < 1 {
				return nil, bad("needs a positive integer")
			}
			switch f[0] {
			case "walkers":
				cfg.fit.Walkers = n
			case "iterations":
				cfg.fit.Iterations = n
			case "burnin":
				cfg.fit.BurnIn = n
			case "thin":
				cfg.fit.Thin = n
			case "fitpoints":
				cfg.fit.FitPtsMin = n
			}
		case "modelerr", "wlmin", "wlmax", "fiterr":
			v, err := strconv.ParseFloat(f[1], 64)
			if err != nil || v < 0 {
				return nil, bad("needs a non-negative number")
			}
			switch f[0] {
			case "modelerr":
				if v == 0 {
					return nil, bad("needs a positive fraction")
				}
				cfg.fit.LogF = math.Log(v)
			case "wlmin":
				cfg.wlMin = v
			case "wlmax":
				cfg.wlMax = v
			case "fiterr":
				cfg.fit.FitErrInit = v
			}
		default:
			return nil, bad("unrecognized keyword")
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if cfg.wlMax <= cfg.wlMin {
		return nil, fmt.Errorf("config: wlmax %g not above wlmin %g",
			cfg.wlMax, cfg.wlMin)
	}
	return cfg, nil
}
