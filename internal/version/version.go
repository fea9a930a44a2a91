// Package version reports the applytrack release version.
package version

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

// VERSION holds the release number from the VERSION file. Builds without
// ldflags, such as go install, fall back to it.
//
//go:embed VERSION
var VERSION string

// devVersion is what main reports when no ldflags were given.
const devVersion = "dev"

// Get returns the embedded version with a "v" prefix.
func Get() string {
	return "v" + strings.TrimSpace(VERSION)
}

// Resolve picks the version to report: the ldflags value when set, then the
// module version recorded by go install, then the embedded VERSION.
func Resolve(ldflags string) string {
	return resolve(ldflags, debug.ReadBuildInfo)
}

func resolve(ldflags string, buildInfo func() (*debug.BuildInfo, bool)) string {
	if v := strings.TrimSpace(ldflags); v != "" && v != devVersion {
		return v
	}
	if info, ok := buildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return Get()
}
