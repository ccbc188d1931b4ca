// Package report classifies remote and local filenames against the upstream
// folder's naming conventions: dated Data_Volume_Report spreadsheets and a
// small closed set of image extensions. Date extraction is a pure function
// and never fails; malformed names are a normal "no date" outcome.
package report
