package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DateLayout is the layout of calendar dates (due dates, payment dates) as stored and exchanged.
const DateLayout = "2006-01-02"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// FormatDate returns the calendar date of t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the UTC calendar date of now.
func Today(now time.Time) string {
	return FormatDate(now.UTC())
}

// DaysFrom returns the UTC calendar date `days` after now.
func DaysFrom(now time.Time, days int) string {
	return FormatDate(now.UTC().AddDate(0, 0, days))
}

// ParseDate parses a DateLayout string. Values carrying a time part (e.g. "2024-06-10T00:00:00Z") are truncated to the date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	return time.Parse(DateLayout, s)
}

// Getwd tries to find the project root, i.e. the closest parent directory holding a go.mod.
// go-test changes the working directory to the test package being run during tests,
// so relative paths (config/.env.*) would break without it.
// Falls back to the current working directory when no go.mod is found (e.g. deployed binaries).
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
