// Public domain.

package sedfit

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// parameter indices within a walker position
const (
	ParamTeff = iota
	ParamRstar
)

// Chain holds recorded ensemble states, one [walkers][2] position slice
// and one [walkers] log-probability slice per recorded step.
type Chain struct {
	Walkers int
	Samples [][][2]float64
	LnProb  [][]float64
}

func newChain(walkers int) *Chain {
	return &Chain{Walkers: walkers}
}

func (c *Chain) append(pos [][2]float64, lnp []float64) {
	p := make([][2]float64, len(pos))
	copy(p, pos)
	l := make([]float64, len(lnp))
	copy(l, lnp)
	c.Samples = append(c.Samples, p)
	c.LnProb = append(c.LnProb, l)
}

// Steps returns the number of recorded ensemble states.
func (c *Chain) Steps() int { return len(c.Samples) }

// Flat returns all recorded values of one parameter across steps and
// walkers as a single slice.
func (c *Chain) Flat(param int) []float64 {
	f := make([]float64, 0, len(c.Samples)*c.Walkers)
	for _, step := range c.Samples {
		for _, w := range step {
			f = append(f, w[param])
		}
	}
	return f
}

// Percentile returns quantile q ∈ [0,1] of the flattened samples of a
// parameter.
func (c *Chain) Percentile(param int, q float64) float64 {
	f := c.Flat(param)
	sort.Float64s(f)
	return stat.Quantile(q, stat.Empirical, f, nil)
}

// MAP returns the walker position with the greatest recorded log
// probability.
func (c *Chain) MAP() (teff, rstar, lnp float64) {
	lnp = math.Inf(-1)
	for s, step := range c.LnProb {
		i := floats.MaxIdx(step)
		if step[i] > lnp {
			lnp = step[i]
			teff = c.Samples[s][i][ParamTeff]
			rstar = c.Samples[s][i][ParamRstar]
		}
	}
	return teff, rstar, lnp
}

// AutocorrTime estimates the integrated autocorrelation time of a
// parameter by the FFT method, averaging the per-walker autocorrelation
// functions and applying the automatic windowing criterion with c = 5.
// Converged reports whether the chain is at least 50 autocorrelation
// times long.
func (c *Chain) AutocorrTime(param int) (tau float64, converged bool) {
	n := len(c.Samples)
	if n < 2 {
		return math.NaN(), false
	}
	acf := make([]float64, n)
	x := make([]float64, n)
	for w := 0; w < c.Walkers; w++ {
		for s := 0; s < n; s++ {
			x[s] = c.Samples[s][w][param]
		}
		a := autocorr(x)
		floats.Add(acf, a)
	}
	floats.Scale(1/float64(c.Walkers), acf)

	// taus[i] = 2*cumsum(acf)[i] - 1; take the first window i with
	// i >= 5*taus[i], else the last.
	sum := 0.0
	win := n - 1
	taus := make([]float64, n)
	for i, a := range acf {
		sum += a
		taus[i] = 2*sum - 1
		if float64(i) >= 5*taus[i] {
			win = i
			break
		}
	}
	t := taus[win]
	return t, 50*t <= float64(n)
}

// autocorr computes the normalized autocorrelation function of x via
// FFT with zero padding to the next power of two past 2n.
func autocorr(x []float64) []float64 {
	n := len(x)
	m := nextPow2(2 * n)
	mean := stat.Mean(x, nil)
	pad := make([]float64, m)
	for i, v := range x {
		pad[i] = v - mean
	}
	fft := fourier.NewFFT(m)
	coef := fft.Coefficients(nil, pad)
	for i, c := range coef {
		coef[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	sq := fft.Sequence(nil, coef)
	acf := make([]float64, n)
	// normalization of the round trip cancels in the ratio to acf[0]
	for i := range acf {
		acf[i] = sq[i] / sq[0]
	}
	return acf
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
