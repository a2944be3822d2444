// Package version holds build metadata set with -ldflags.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/tourbook/tourbook/internal/shared/version.Version=1.4.0"
var (
	Version = "dev"
	Commit  = ""
)

// Normalize returns v in canonical semver form ("1.2" -> "v1.2.0").
// Values that are not semver, such as "dev", are returned trimmed and unchanged.
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	candidate := v
	if !strings.HasPrefix(candidate, "v") {
		candidate = "v" + candidate
	}
	if !semver.IsValid(candidate) {
		return v
	}
	return semver.Canonical(candidate)
}

// String is the version reported by the health endpoint and the CLI.
func String() string {
	s := Normalize(Version)
	if Commit != "" {
		s += "+" + Commit
	}
	return s
}
