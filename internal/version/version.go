package version

import (
	"fmt"
	"runtime/debug"
)

// Set through -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String describes the build. Binaries installed with go install carry no
// ldflags, so the module version from the build info is used instead.
func String() string {
	v := Version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	return fmt.Sprintf("fwprobe %s (%s, %s)", v, Commit, Date)
}
