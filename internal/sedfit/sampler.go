// Public domain.

package sedfit

import (
	"math"
	"time"

	xrand "golang.org/x/exp/rand"

	"github.com/proxcent/sedmc/phot"
)

// stretch move scale parameter of the affine-invariant ensemble update
const stretchA = 2.0

// Sampler is the affine-invariant ensemble sampler over (Teff, Rstar).
// Walkers update in two half-ensembles; each half proposes stretch moves
// against the other, so all proposals of a half can be evaluated in
// parallel.  The coordinator blocks until the full batch of evaluations
// for a step completes before advancing.
type Sampler struct {
	f      *Fitter
	obs    phot.Table
	bounds Bounds
	plx    float64
	nw     int
	rnd    *xrand.Rand
	pos    [][2]float64
	lnp    []float64
	fresh  bool // positions changed since lnp was computed
	chain  *Chain
}

func (f *Fitter) newSampler(rc *RunContext, good phot.Table, bounds Bounds) *Sampler {
	rnd := xrand.New(&xrand.PCGSource{})
	if f.Cfg.Repeatable {
		rnd.Seed(3)
	} else {
		rnd.Seed(uint64(time.Now().UnixNano()))
	}
	return &Sampler{
		f:      f,
		obs:    good,
		bounds: bounds,
		plx:    rc.Baseline.Plx,
		nw:     f.Cfg.Walkers,
		rnd:    rnd,
		pos:    make([][2]float64, f.Cfg.Walkers),
		lnp:    make([]float64, f.Cfg.Walkers),
	}
}

// Walk initializes the walker population around a baseline, each
// parameter perturbed by a Gaussian draw scaled to 10% of the baseline
// value, independently per dimension.
func (s *Sampler) Walk(b Baseline) {
	for i := range s.pos {
		s.pos[i][ParamTeff] = b.Teff + b.Teff/10*s.rnd.NormFloat64()
		s.pos[i][ParamRstar] = b.Rstar + b.Rstar/10*s.rnd.NormFloat64()
	}
	s.fresh = true
}

// Chain returns the chain recorded by the last Run with record set.
func (s *Sampler) Chain() *Chain { return s.chain }

type evalJob struct {
	i     int
	theta [2]float64
}

type evalRes struct {
	i   int
	lnp float64
}

// Run advances the ensemble the given number of steps.  With record set,
// every thin-th step is appended to a fresh chain; without it the chain
// history is discarded and only final walker positions are kept
// (burn-in semantics).
func (s *Sampler) Run(steps, thin int, record bool) {
	if thin < 1 {
		thin = 1
	}
	if record {
		s.chain = newChain(s.nw)
	}

	// likelihood worker pool: jobs in, indexed results out, one
	// goroutine per configured worker.
	jobs := make(chan evalJob, s.nw)
	res := make(chan evalRes, s.nw)
	for w := 0; w < s.f.Cfg.Workers; w++ {
		go func() {
			for j := range jobs {
				res <- evalRes{j.i, s.f.LnProb(
					j.theta[0], j.theta[1], s.plx, s.bounds, s.obs)}
			}
		}()
	}
	defer close(jobs)

	eval := func(batch []evalJob, out []float64) {
		for _, j := range batch {
			jobs <- j
		}
		for range batch {
			r := <-res
			out[r.i] = r.lnp
		}
	}

	if s.fresh {
		batch := make([]evalJob, s.nw)
		for i := range batch {
			batch[i] = evalJob{i, s.pos[i]}
		}
		eval(batch, s.lnp)
		s.fresh = false
	}

	half := s.nw / 2
	prop := make([][2]float64, s.nw)
	zs := make([]float64, s.nw)
	plnp := make([]float64, s.nw)
	for step := 1; step <= steps; step++ {
		// first half moves against the second, then vice versa
		for _, h := range [][2]int{{0, half}, {half, s.nw}} {
			lo, hi := h[0], h[1]
			clo, chi := 0, half
			if lo == 0 {
				clo, chi = half, s.nw
			}
			batch := make([]evalJob, 0, hi-lo)
			for i := lo; i < hi; i++ {
				j := clo + s.rnd.Intn(chi-clo)
				u := s.rnd.Float64()
				z := (u*(stretchA-1) + 1)
				z = z * z / stretchA
				zs[i] = z
				for d := 0; d < 2; d++ {
					prop[i][d] = s.pos[j][d] + z*(s.pos[i][d]-s.pos[j][d])
				}
				batch = append(batch, evalJob{i, prop[i]})
			}
			eval(batch, plnp)
			for i := lo; i < hi; i++ {
				// ndim-1 = 1 for the two-parameter problem
				lnr := math.Log(zs[i]) + plnp[i] - s.lnp[i]
				if math.Log(s.rnd.Float64()) < lnr {
					s.pos[i] = prop[i]
					s.lnp[i] = plnp[i]
				}
			}
		}
		if record && step%thin == 0 {
			s.chain.append(s.pos, s.lnp)
		}
	}
}
