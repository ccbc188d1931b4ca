package report

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// reportNamePattern matches the report naming convention used by the upstream
// folder: Data_Volume_Report_DDMMYYYY.xlsx (or .xls). The digit group is
// anchored on both sides so names carrying extra digits never match.
var reportNamePattern = regexp.MustCompile(`^Data_Volume_Report_(\d{8})\.(?:xlsx|xls)$`)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
}

// ParseDate extracts the embedded report date from a filename. The eight
// digits are read strictly as day, month, year. Names that do not match the
// convention, or whose digits do not form a real calendar date, yield ok=false.
func ParseDate(name string) (time.Time, bool) {
	match := reportNamePattern.FindStringSubmatch(strings.TrimSpace(name))
	if match == nil {
		return time.Time{}, false
	}
	digits := match[1]
	day, _ := strconv.Atoi(digits[0:2])
	month, _ := strconv.Atoi(digits[2:4])
	year, _ := strconv.Atoi(digits[4:8])

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components (month 13 becomes January
	// of the next year), so round-trip the fields to reject invalid dates.
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return time.Time{}, false
	}
	return date, true
}

// IsReport reports whether the name matches the report convention with a
// valid embedded date.
func IsReport(name string) bool {
	_, ok := ParseDate(name)
	return ok
}

// IsImage reports whether the name carries one of the recognized image
// extensions. The check is case-insensitive.
func IsImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	_, ok := imageExtensions[ext]
	return ok
}

// IsSpreadsheet reports whether the name has an Excel extension, whether or
// not it follows the report naming convention.
func IsSpreadsheet(name string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	return ext == ".xlsx" || ext == ".xls"
}
