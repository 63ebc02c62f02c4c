// Package version reports the lexctl build version.
package version

import "runtime/debug"

// Version is set with -ldflags "-X github.com/dimbot/lexctl/internal/version.Version=v1.2.3".
var Version = ""

var readBuildInfo = debug.ReadBuildInfo

// BuildVersion returns Version, else the module version, else "dev".
func BuildVersion() string {
	if Version != "" {
		return Version
	}
	info, ok := readBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}
