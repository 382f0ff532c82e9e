/*
Command sedbench evaluates sedmc results against known stellar parameters.

Accuracy here means agreement with an external truth, typically radii
from interferometric angular diameters and temperatures from detailed
spectroscopy.  Precision means the width of the reported posterior.
A fitter can be precise without being accurate; comparing the two per
model family is the point of this command.

  Usage: sedbench [options] <results-file> <truth-file> [threshold]
    -v=false: display version and copyright

The results file is the results.csv written by sedmc.  The truth file
uses the same CSV format as the sedmc baseline file; only the teff and
rstar columns are consulted.  Stars present in only one of the files
are ignored.

For each model family the report shows the median relative error
against truth (accuracy) and the median relative posterior width
(precision) for both parameters, the count of fits whose radius error
is within the threshold (percent, default 5), and the count of fits
flagged low accuracy by sedmc itself.

When both model families were fitted for a star, the report also shows
how often the family sedmc flagged as best (smallest radius precision)
was also the one with the smaller true radius error.

-------------
Public domain.
*/
package main
