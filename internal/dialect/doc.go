// Package dialect provides lightweight detection of what language a unit
// resembles (Perl, Python, shell, Ruby) so the converter can warn when its
// input does not look like Perl.
//
// Evidence collection never changes matching or translation; the warning is
// always optional.
package dialect
