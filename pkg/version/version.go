// Package version exposes build information stamped at link time.
package version

import (
	"fmt"
	"runtime"
)

// Populated via -ldflags at build time.
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns build information as a map for health and metrics
// reporting.
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     Commit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
		"platform":   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a single-line version description.
func String() string {
	return fmt.Sprintf("oqlgen %s (%s, built %s, %s)", Version, Commit, BuildDate, runtime.Version())
}
