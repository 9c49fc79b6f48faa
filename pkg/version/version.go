// Package version implements the dotted-numeric version ordering used by the
// OrionTV release channel. Versions are sequences of non-negative integers
// separated by dots; anything that does not parse as an integer counts as zero,
// as do missing trailing components. This makes "1.2" and "1.2.0" equal, which
// matches how the release manifest has historically been published.
package version

import (
	"strconv"
	"strings"
)

// Compare compares two dotted version strings component by component.
// It returns +1 if a orders after b, -1 if a orders before b and 0 if all
// components up to the longer of the two are equal.
func Compare(a, b string) int {
	partsA := strings.Split(a, ".")
	partsB := strings.Split(b, ".")
	n := max(len(partsA), len(partsB))
	for i := 0; i < n; i++ {
		numA := component(partsA, i)
		numB := component(partsB, i)
		if numA > numB {
			return 1
		}
		if numA < numB {
			return -1
		}
	}
	return 0
}

// IsNewer reports whether candidate orders strictly after current.
func IsNewer(candidate, current string) bool {
	return Compare(candidate, current) > 0
}

// component returns the numeric value of parts[i], defaulting to zero for
// missing indices and non-numeric parts.
func component(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
