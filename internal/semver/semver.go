// Package semver implements the minimal semantic-version comparison the
// client needs for its update check. Only plain MAJOR.MINOR.PATCH versions
// (optionally prefixed with "v") are recognized.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var versionRe = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// Version is a parsed semantic version.
type Version struct {
	Major, Minor, Patch int
	Original            string
}

// Parse parses s into a Version. A leading "v" and surrounding whitespace
// are tolerated.
func Parse(s string) (Version, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(s), "v")

	m := versionRe.FindStringSubmatch(cleaned)
	if m == nil {
		return Version{}, fmt.Errorf("invalid version format: %q", s)
	}

	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	return Version{Major: major, Minor: minor, Patch: patch, Original: s}, nil
}

// Compare returns 1 if a > b, -1 if a < b and 0 when equal or when either
// version fails to parse (an unparseable version never triggers an update).
func Compare(a, b string) int {
	va, errA := Parse(a)
	vb, errB := Parse(b)
	if errA != nil || errB != nil {
		return 0
	}

	if va.Major != vb.Major {
		return sign(va.Major - vb.Major)
	}
	if va.Minor != vb.Minor {
		return sign(va.Minor - vb.Minor)
	}
	if va.Patch != vb.Patch {
		return sign(va.Patch - vb.Patch)
	}
	return 0
}

// IsNewer reports whether latest is strictly newer than current.
func IsNewer(current, latest string) bool {
	return Compare(latest, current) > 0
}

// IsValid reports whether s parses as a version.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func sign(n int) int {
	if n > 0 {
		return 1
	}
	return -1
}
