/*
Command sedmc estimates stellar effective temperature and radius by
fitting observed spectral energy distributions against grids of model
spectra with a Bayesian ensemble sampler.

Contents

Version 1.0

  Program overview
  Command line usage
  Configuring file locations
  File formats
  Algorithm outline


Program overview

Input is a baseline file of stars with prior estimates of parallax,
effective temperature and radius, plus one photometry file per star.
Output is, for each star and model family, the posterior median
temperature and radius with 16th/84th percentile uncertainties, a
derived angular diameter, and fit diagnostics.

Photometry is broadband flux, typically collected from VO photometry
services, stored as CSV with wavelength in microns and flux in Jansky.
Model spectra come from a binary grid file holding one or more model
families (nextgen, ck04), prepared by the companion command gridgen.

Sample run:

You put a couple of stars in baselines.csv, their photometry in
photometry/, then type "sedmc" and get output like

  sedmc version 1.0 Go source.
  Star         Model      Teff +err -err  Rstar  +err  -err   Dia mas   Tol Pts Ret
  HD 10700     nextgen* 5352  +21  -23  0.807 +0.006 0.006     2.056  0.12  38   0
  HD 10700     ck04     5348  +25  -24  0.809 +0.008 0.007     2.061  0.13  37   0
  HD 22049     nextgen* 5087  +33  -31  0.742 +0.009 0.008     2.143  0.15  35   0
  HD 22049     ck04     5095  +36  -34  0.745 +0.011 0.010     2.150  0.16  35   0

An asterisk marks the family with the most precise radius.  A low
accuracy tag on a line means the fit could not be reconciled with its
baseline after the allowed retries and the numbers should be treated
with suspicion.  Full-detail rows, one per star and family, are written
to results/results.csv under the data path.


Command line usage

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

With -s, the good/bad photometry partitions written by a previous run
are used directly instead of refiltering against the baseline curve.


Configuring file locations

Sedmc reads several files.  By default they are all found under a
single data path, taken from the environment variable SEDMC_DATA, with
"." used when it is not set.  A .env file in the working directory is
loaded first, so a project directory can pin its own data path.

Under the data path:

  sedmc.config       run configuration (optional)
  sedmc.grid         binary model spectra grid
  baselines.csv      per-star baseline estimates
  photometry/        per-star photometry, <star>.csv
  results/           output partitions and results.csv

The -c, -m, -b options name individual files explicitly and -p moves
the whole data path.


File formats

The baseline file is CSV with a header line and the columns

  star,ra,dec,plx,eplx,teff,eteff,rstar,erstar,dia,edia,source

Parallax is in milliarcseconds, temperature in kelvins, radius in solar
radii, angular diameter in milliarcseconds.  A zero or empty dia is
derived from rstar and plx.  Two consecutive rows with the same star
name give a primary baseline and a fallback; when the photometry
disagrees badly with the primary before any sampling, the run recenters
on the fallback.  The source column labels the provenance of the
estimate and is carried through to output.

Photometry files are CSV with a header line and the columns

  wl,fl,efl,src,band

Wavelength in microns, flux and flux error in Jansky.  Rows in
blacklisted bands are dropped, rows with equal wavelength (after
rounding to 6 decimals) are collapsed keeping the smallest error, and a
zero or missing error is later replaced by 10% of the flux.

The config file is plain text, one keyword per line, # comments.

  walkers <n>       ensemble size, default 50
  iterations <n>    production steps, default 5000
  burnin <n>        burn-in steps, default 1000
  thin <n>          record every nth production step, default 1
  modelerr <f>      fractional model error, default 0.1
  wlmin <f>         photometry window lower bound, microns
  wlmax <f>         photometry window upper bound, microns
  fitpoints <n>     minimum accepted photometry points, default 12
  fiterr <f>        initial filter tolerance, default 0.1
  models <name>...  model families to fit, default nextgen ck04
  repeatable        fixed random number seed
  random            time-based seed (default)
  progress          per-star progress logging (default)
  noprogress

The grid file is a binary gob file written by gridgen from per-family
ASCII spectra tables.  Each spectrum carries its effective temperature,
surface gravity, and flux per wavelength; fluxes are scaled at load to
the stellar surface convention used by the fitter.


Algorithm outline

1.  For each star, photometry is cleaned and a reference curve is
computed from the grid at the baseline temperature, scaled by the
apparent angular radius implied by the baseline radius and parallax.
Points are partitioned into good and bad by relative deviation from the
curve, widening the acceptance tolerance until enough points remain and
at least one good point lies beyond 2 microns.

2.  The posterior over temperature and radius is the product of a box
prior around the baseline and a Gaussian likelihood of the good fluxes
against grid model fluxes, with variances inflated by a fractional
model error term.  Model fluxes at arbitrary temperature come from
linear interpolation between the two bracketing grid spectra, resampled
onto the observed wavelengths.

3.  An affine-invariant ensemble of walkers samples the posterior with
the stretch move.  Walkers start in a Gaussian ball around the
baseline, burn in with the chain discarded, then record a production
chain.  Likelihood evaluations of each half-ensemble run in parallel.

4.  If the settled filter tolerance or the shift of the posterior
median radius from the baseline is too large, the run recenters on the
16th percentiles of the chain, refilters, and samples again, up to
three times.  A run that still fails the check is reported with the low
accuracy tag.

5.  Reported values are the posterior medians with 16th/84th percentile
bounds, the maximum posterior sample, the angular diameter derived from
the median radius and the parallax, and the integrated autocorrelation
time per parameter with a convergence flag.

-------------
Public domain.
*/
package main
