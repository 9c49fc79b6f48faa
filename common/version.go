package common

import (
	_ "embed"
	"strings"
)

//go:embed version.txt
var version string

// Version returns the version of the running OrionTV client.
// It is fixed at build time and is the baseline all update checks compare against.
func Version() string {
	return strings.TrimSpace(version)
}
