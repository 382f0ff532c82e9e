/*
Command gridgen prepares the model spectra grid file for sedmc.

Usage

Command line options:

  gridgen                       Convert spectra tables for all known families.
  gridgen <spectra-file> ...    Convert the named spectra tables.
  gridgen -v                    Display version and copyright.
  gridgen -o <grid-file>        Specify the output location.

Input

Input is one ASCII spectra table per model family.  Without arguments,
tables are looked for under <data path>/spectra as <family>.dat or
<family>.dat.gz for each known family, where the data path comes from
the environment variable SEDMC_DATA (with .env loading), default ".".

A table starts with the line "sedmc spectra" and a "family <name>"
line, followed by one block per model spectrum: a "t <teff> <grav>"
line and then one "<wl> <flux>" pair per line with wavelengths
ascending.  Wavelengths are in microns.  Fluxes are raw model surface
fluxes; sedmc applies its surface-gravity scale correction when it
loads the grid, so the same table can be regenerated without refitting
constants here.

Output

The output is a single file, sedmc.grid by default, containing all
converted families.  This format is the Go "gob" format, a binary
format that is not human readable.

-------------
Public domain.
*/
package main
