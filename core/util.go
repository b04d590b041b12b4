package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/volatiletech/null/v8"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// NormalizeOptional trims `s` and reports it as absent when it is empty or one of the
// "undefined"/"null" placeholders leaked by the spreadsheet endpoint.
func NormalizeOptional(s string) null.String {
	s = CleanString(s)
	switch s {
	case "", "undefined", "null":
		return null.String{}
	}
	return null.StringFrom(s)
}

// IntOrZero returns the value of n, 0 when it is null.
func IntOrZero(n null.Int) int {
	if n.Valid {
		return n.Int
	}
	return 0
}

// Getwd tries to find the project root (the directory holding go.mod).
// go-test changes the working directory to the test package being run during tests,
// so the current directory cannot be trusted. Falls back to the working directory.
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
		if newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
