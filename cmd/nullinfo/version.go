package main

import (
	"fmt"
	"runtime/debug"
)

const baseVersion = "0.1.0"

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintln(stdout, Version())
	return nil
}

// Version returns the version string.
//
// When installed via `go install ...@version`, returns the module version.
// For development builds, returns "devel-0.1.0+abc1234" with the VCS
// revision if available.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return baseVersion
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return "devel-" + baseVersion + "+" + s.Value[:7]
		}
	}
	return "devel-" + baseVersion
}
