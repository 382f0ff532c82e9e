// Public domain.

package sedprog

import (
	"math"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.fit.Walkers != 50 || cfg.fit.Iterations != 5000 || cfg.fit.BurnIn != 1000 {
		t.Errorf("sampler defaults: %+v", cfg.fit)
	}
	if len(cfg.families) != 2 || cfg.families[0] != "nextgen" || cfg.families[1] != "ck04" {
		t.Errorf("family default %v", cfg.families)
	}
	if cfg.wlMin != 0 || !math.IsInf(cfg.wlMax, 1) {
		t.Errorf("window default [%g,%g]", cfg.wlMin, cfg.wlMax)
	}
	if cfg.fit.Repeatable {
		t.Error("repeatable should default off")
	}
}

func TestParseConfig(t *testing.T) {
	in := `
# sampler
walkers 100
iterations 2000
burnin 300
thin 2

modelerr 0.05
wlmin 0.4
wlmax 12
fitpoints 10
fiterr 0.2
models nextgen
repeatable
noprogress
`
	cfg, err := parseConfig(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	f := cfg.fit
	if f.Walkers != 100 || f.Iterations != 2000 || f.BurnIn != 300 || f.Thin != 2 {
		t.Errorf("sampler settings: %+v", f)
	}
	if math.Abs(f.LogF-math.Log(.05)) > 1e-12 {
		t.Errorf("LogF %g, want ln .05", f.LogF)
	}
	if cfg.wlMin != .4 || cfg.wlMax != 12 {
		t.Errorf("window [%g,%g]", cfg.wlMin, cfg.wlMax)
	}
	if f.FitPtsMin != 10 || f.FitErrInit != .2 {
		t.Errorf("filter settings: %+v", f)
	}
	if len(cfg.families) != 1 || cfg.families[0] != "nextgen" {
		t.Errorf("families %v", cfg.families)
	}
	if !f.Repeatable || cfg.progress {
		t.Errorf("flags: repeatable %v progress %v", f.Repeatable, cfg.progress)
	}
}

func TestParseConfigErrors(t *testing.T) {
	for _, in := range []string{
		"walkers",          // missing value
		"walkers x",        // not a number
		"walkers 0",        // not positive
		"modelerr 0",       // log of zero
		"modelerr -1",      // negative
		"models",           // no family
		"models nonesuch",  // unknown family
		"frobnicate 1",     // unknown keyword
		"wlmin 5\nwlmax 2", // inverted window
	} {
		if _, err := parseConfig(strings.NewReader(in)); err == nil {
			t.Errorf("no error for %q", in)
		}
	}
}

func TestParseConfigLastWins(t *testing.T) {
	cfg, err := parseConfig(strings.NewReader("repeatable\nrandom\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.fit.Repeatable {
		t.Error("random after repeatable should win")
	}
}
