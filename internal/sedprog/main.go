// Public domain.

package sedprog

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/soniakeys/exit"

	"github.com/proxcent/sedmc/internal/sedfit"
	"github.com/proxcent/sedmc/internal/sedgrid"
	"github.com/proxcent/sedmc/phot"
)

const versionString = "sedmc version 1.0 Go source."
const copyrightString = "Public domain."

// ck04 model spectra are unusable for cool stars
const ck04MinTeff = 3600

func Main() {
	defer exit.Handler()

	// these functions all set up package vars and terminate on error
	cl := parseCommandLine()
	cfg := readConfig(cl)
	grids, built := readGrids(cl, cfg)
	if cl.v {
		fmt.Printf("Grid file built %s, %d families.\n",
			built.Format("2 Jan 2006"), len(grids))
		os.Exit(0)
	}
	targets := readTargets(cl)

	resDir := filepath.Join(cl.dp, "results")
	if err := os.MkdirAll(resDir, 0755); err != nil {
		exit.Log(err)
	}

	// remainder of main constructs and starts all the concurrent parts
	// of the program.

	// prCh keeps processed results in submission order.  it is a
	// buffered channel so that a fast worker can drop off its result
	// without waiting for workers ahead of it.  the buffer must hold at
	// least maxWorkers; somewhat larger lets more results back up
	// behind a slow star.
	maxWorkers := runtime.GOMAXPROCS(0)
	prCh := make(chan chan *starResult, maxWorkers*2)
	tgtCh := make(chan *tgtSeq)

	// dispatcher.  for each target, attach a return channel that works
	// like a ticket for picking up the result.  queue the target for a
	// worker and the ticket for printing.
	go func() {
		for i := range targets {
			rch := make(chan *starResult, 1)
			tgtCh <- &tgtSeq{&targets[i], rch}
			prCh <- rch
		}
		close(prCh)
	}()

	// start workers lazily, only as the dispatcher calls for them.  we
	// may have more cores than stars.
	go func() {
		for n := 0; n < maxWorkers; n++ {
			t, ok := <-tgtCh
			if !ok {
				return
			}
			go fitStars(cfg, grids, cl, resDir, t, tgtCh)
		}
	}()

	// column headings, delayed until now to avoid printing them only to
	// terminate with an error message if initialization fails.
	printHeadings()

	rw, rf := openResults(resDir)
	defer rf.Close()

	// everything is on its way.  wait for results in order and print.
	for rch := range prCh {
		r := <-rch
		for _, l := range r.lines {
			fmt.Println(l)
		}
		for _, row := range r.rows {
			if err := rw.Write(row); err != nil {
				exit.Log(err)
			}
		}
		rw.Flush()
	}
	if err := rw.Error(); err != nil {
		exit.Log(err)
	}
}

type tgtSeq struct {
	t   *Target
	rch chan *starResult
}

// starResult is a finished star: display lines for the console plus
// full-detail rows for the results file.
type starResult struct {
	lines []string
	rows  [][]string
}

// worker process.  the first target is passed in; more are requested
// from tgtCh.  runs until program shutdown.
func fitStars(cfg *config, grids map[string]*sedgrid.Grid, cl *commandLine,
	resDir string, t *tgtSeq, tgtCh chan *tgtSeq) {
	for ; ; t = <-tgtCh {
		t.rch <- fitStar(cfg, grids, cl, resDir, t.t)
	}
}

// fitStar runs the full per-star pipeline over each configured family
// and marks the family with the most precise radius as best.  Failures
// are reported in the output and never abort the batch.
func fitStar(cfg *config, grids map[string]*sedgrid.Grid, cl *commandLine,
	resDir string, t *Target) *starResult {
	r := new(starResult)
	obs, err := phot.ReadFile(filepath.Join(cl.dp, "photometry", t.Star+".csv"))
	if err != nil {
		log.Printf("%s: %v", t.Star, err)
		r.lines = append(r.lines, errLine(t.Star, "", "no photometry"))
		return r
	}
	obs = obs.DropBands(phot.Blacklist).Dedup().Window(cfg.wlMin, cfg.wlMax)
	if cfg.progress {
		log.Printf("%s: %d photometry points after cleanup", t.Star, len(obs))
	}

	var sums []*sedfit.FitSummary
	var ctxs []*sedfit.RunContext
	for _, fam := range cfg.families {
		if fam == "ck04" && t.Baseline.Teff <= ck04MinTeff {
			r.lines = append(r.lines, errLine(t.Star, fam, "skipped, baseline too cool"))
			continue
		}
		f := sedfit.New(grids[fam], cfg.fit)
		rc := sedfit.NewRunContext(t.Star, obs, t.Baseline)
		rc.Fallback = t.Fallback
		if cl.s {
			rc.Filter = readStored(cfg, resDir, t.Star, fam)
		}
		if err := f.Fit(rc); err != nil {
			log.Printf("%s %s: %v", t.Star, fam, err)
			r.lines = append(r.lines, errLine(t.Star, fam, err.Error()))
			continue
		}
		writePartition(resDir, t.Star, fam, rc.Filter)
		if len(rc.History) > 1 {
			writeHistory(resDir, t.Star, fam, rc.History)
		}
		sums = append(sums, rc.Summary)
		ctxs = append(ctxs, rc)
	}
	if len(sums) == 0 {
		return r
	}
	best := 0
	for i, s := range sums[1:] {
		if s.RadiusPrecision() < sums[best].RadiusPrecision() {
			best = i + 1
		}
	}
	for i, s := range sums {
		r.lines = append(r.lines, fitLine(s, i == best))
		r.rows = append(r.rows, resultRow(ctxs[i], s, i == best))
	}
	return r
}

// readStored loads a previous run's good partition, skipping the
// filter pass.  A missing or unreadable file just means filtering runs
// normally.
func readStored(cfg *config, resDir, star, fam string) *sedfit.FilterResult {
	good, err := phot.ReadFile(partFn(resDir, star, fam, "good"))
	if err != nil || len(good) == 0 {
		return nil
	}
	bad, _ := phot.ReadFile(partFn(resDir, star, fam, "bad"))
	return &sedfit.FilterResult{
		Good:      good,
		Bad:       bad,
		Tolerance: cfg.fit.FitErrInit,
		Points:    len(good),
	}
}

func partFn(resDir, star, fam, part string) string {
	return filepath.Join(resDir, star+"_"+fam+"_"+part+".csv")
}

func writePartition(resDir, star, fam string, fr *sedfit.FilterResult) {
	if err := fr.Good.WriteFile(partFn(resDir, star, fam, "good")); err != nil {
		log.Printf("%s %s: %v", star, fam, err)
	}
	if err := fr.Bad.WriteFile(partFn(resDir, star, fam, "bad")); err != nil {
		log.Printf("%s %s: %v", star, fam, err)
	}
}

// writeHistory records the baseline history of a run that rebased, one
// row per baseline in the order tried.
func writeHistory(resDir, star, fam string, hist []sedfit.Baseline) {
	f, err := os.Create(partFn(resDir, star, fam, "baselines"))
	if err != nil {
		log.Printf("%s %s: %v", star, fam, err)
		return
	}
	defer f.Close()
	w := csv.NewWriter(f)
	w.Write([]string{"teff", "eteff", "rstar", "erstar",
		"dia", "edia", "plx", "eplx", "source"})
	fg := func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }
	for _, b := range hist {
		w.Write([]string{
			fg(b.Teff), fg(b.TeffErr), fg(b.Rstar), fg(b.RstarErr),
			fg(b.AngDia), fg(b.AngDiaErr), fg(b.Plx), fg(b.PlxErr),
			b.Provenance,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Printf("%s %s: %v", star, fam, err)
	}
}

func printHeadings() {
	fmt.Println(versionString)
	fmt.Println("Star         Model      Teff +err -err  Rstar  +err  -err   Dia mas   Tol Pts Ret")
}

func fitLine(s *sedfit.FitSummary, best bool) string {
	mark := " "
	if best {
		mark = "*"
	}
	l := fmt.Sprintf("%-12s %-7s%s %5.0f %+4.0f %4.0f  %5.3f %+5.3f %5.3f  %8.3f  %4.2f %3d %3d",
		s.Star, s.Family, mark, s.Teff, s.TeffPlus, -s.TeffMinus,
		s.Rstar, s.RstarPlus, s.RstarMinus,
		s.AngDia.Sec()*1000, s.FitTolerance, s.FitPoints, s.Retries)
	if s.LowAccuracy {
		l += " low accuracy"
	}
	if !s.Converged {
		l += " unconverged"
	}
	return l
}

func errLine(star, fam, msg string) string {
	if fam == "" {
		return fmt.Sprintf("%-12s %s", star, msg)
	}
	return fmt.Sprintf("%-12s %-8s %s", star, fam, msg)
}

// results file columns
var resultHeader = []string{
	"run", "star", "model", "best",
	"teff", "teff_plus", "teff_minus", "rstar", "rstar_plus", "rstar_minus",
	"map_teff", "map_rstar", "dia_mas", "edia_mas",
	"tau_teff", "tau_rstar", "converged",
	"points", "bad", "tolerance", "quality", "wl_min", "wl_max",
	"low_accuracy", "retries", "provenance", "elapsed_s",
}

func openResults(resDir string) (*csv.Writer, *os.File) {
	fn := filepath.Join(resDir, "results.csv")
	f, err := os.Create(fn)
	if err != nil {
		exit.Log(err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(resultHeader); err != nil {
		exit.Log(err)
	}
	return w, f
}

func resultRow(rc *sedfit.RunContext, s *sedfit.FitSummary, best bool) []string {
	fg := func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }
	return []string{
		rc.ID.String(), s.Star, s.Family, strconv.FormatBool(best),
		fg(s.Teff), fg(s.TeffPlus), fg(s.TeffMinus),
		fg(s.Rstar), fg(s.RstarPlus), fg(s.RstarMinus),
		fg(s.MAPTeff), fg(s.MAPRstar),
		fg(s.AngDia.Sec() * 1000), fg(s.AngDiaErr.Sec() * 1000),
		fg(s.TauTeff), fg(s.TauRstar), strconv.FormatBool(s.Converged),
		strconv.Itoa(s.FitPoints), strconv.Itoa(s.BadPoints),
		fg(s.FitTolerance), fg(s.FitQuality), fg(s.WLMin), fg(s.WLMax),
		strconv.FormatBool(s.LowAccuracy), strconv.Itoa(s.Retries),
		s.Provenance, fg(s.Elapsed.Seconds()),
	}
}

type commandLine struct {
	dc    string // config file
	dm    string // grid file
	db    string // baseline file
	dp    string // data path
	s     bool   // reuse stored photometry partitions
	v     bool   // -v option
	stars []string
}

func parseCommandLine() *commandLine {
	// the data path default comes from the environment, with .env
	// loading so a project directory can pin its own
	godotenv.Load()
	var cl commandLine
	cl.dp = os.Getenv("SEDMC_DATA")
	if cl.dp == "" {
		cl.dp = "."
	}
	dh := flag.Bool("h", false, "")
	dv := flag.Bool("v", false, "")
	flag.BoolVar(&cl.s, "s", false, "")
	flag.StringVar(&cl.dc, "c", "", "")
	flag.StringVar(&cl.dm, "m", "", "")
	flag.StringVar(&cl.db, "b", "", "")
	flag.StringVar(&cl.dp, "p", cl.dp, "")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: sedmc [options]               fit all stars in the baseline file
       sedmc [options] <star> ...    fit the named stars only
       sedmc -h                      display help and quick reference
       sedmc -v                      display version and grid info

Options:
       -c <config-file>
       -m <grid-file>
       -b <baseline-file>
       -p <path>
       -s    reuse stored photometry partitions
`)
		os.Stderr.WriteString(`
Default:
       -p=` + cl.dp + "\n")
	}
	flag.Parse()
	switch {
	case *dh:
		printHelp()
		os.Exit(0)
	case *dv:
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		cl.v = true
	}
	cl.stars = flag.Args()
	return &cl
}

func readConfig(cl *commandLine) *config {
	f, err := os.Open(cl.fixupCP(cl.dc, "sedmc.config"))
	if err != nil {
		if cl.dc == "" {
			return defaultConfig()
		}
		exit.Log(err)
	}
	defer f.Close()
	cfg, err := parseConfig(f)
	if err != nil {
		exit.Log(err)
	}
	return cfg
}

// reads the spectral grid file (created by gridgen)
func readGrids(cl *commandLine, cfg *config) (map[string]*sedgrid.Grid, time.Time) {
	grids, built, err := sedgrid.ReadFile(cl.fixupCP(cl.dm, sedgrid.Gfn))
	if err != nil {
		log.Println(err)
		exit.Log(`Use command "gridgen" to regenerate the grid file.`)
	}
	for _, fam := range cfg.families {
		if grids[fam] == nil {
			exit.Log("Grid file has no " + fam + " family.")
		}
	}
	return grids, built
}

func readTargets(cl *commandLine) []Target {
	all, err := ReadBaselineFile(cl.fixupCP(cl.db, "baselines.csv"))
	if err != nil {
		exit.Log(err)
	}
	if len(cl.stars) == 0 {
		return all
	}
	var sel []Target
	for _, name := range cl.stars {
		i := 0
		for ; i < len(all); i++ {
			if all[i].Star == name {
				sel = append(sel, all[i])
				break
			}
		}
		if i == len(all) {
			exit.Log("Star " + name + " not in baseline file.")
		}
	}
	return sel
}

func (cl *commandLine) fixupCP(fnSpec, fnDefault string) string {
	if fnSpec > "" {
		return fnSpec
	}
	return filepath.Join(cl.dp, fnDefault)
}

func printHelp() {
	fmt.Println(`
Sedmc fits observed spectral energy distributions against model spectra
grids to estimate stellar effective temperature and radius.  A baseline
file supplies prior estimates per star, photometry is read per star from
the data path, and posterior medians with uncertainties are reported per
model family.

Config file keywords:
   walkers
   iterations
   burnin
   thin
   modelerr
   wlmin
   wlmax
   fitpoints
   fiterr
   models
   repeatable
   random
   progress
   noprogress

Model families:`)
	for _, f := range sedgrid.Families {
		fmt.Printf("   %-8s %.0f K to grid maximum\n", f.Name, f.Floor)
	}
	fmt.Println(`
For full documentation:
   godoc sedmc`)
}
