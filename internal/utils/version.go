package utils

import (
	"runtime/debug"
	"strings"
)

// version is injected at build time with -ldflags "-X .../utils.version=..."
var version string

// GetVersion returns the build version without a leading "v". Falls back
// to the module version from build info, then "dev".
func GetVersion() string {
	v := version
	if v == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		} else {
			v = "dev"
		}
	}
	return strings.TrimPrefix(v, "v")
}
