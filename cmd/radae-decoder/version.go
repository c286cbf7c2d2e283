package main

import (
	"fmt"
	"runtime/debug"
)

// Version is set at build time via -ldflags "-X main.Version=X"; it is a
// release tag when present, otherwise buildInfo's VCS metadata stands in.
var Version string

func getBuildSetting(bi *debug.BuildInfo, key, fallback string) string {
	for _, s := range bi.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return fallback
}

func printVersion() {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Printf("radae-decoder %s (build info unavailable)\n", versionOrUnknown())
		return
	}

	commit := getBuildSetting(bi, "vcs.revision", "UNKNOWN")
	dirty := getBuildSetting(bi, "vcs.modified", "false")
	if dirty == "true" {
		commit += "-dirty"
	}
	buildTime := getBuildSetting(bi, "vcs.time", "UNKNOWN")

	fmt.Printf("radae-decoder %s (revision %s, built at %s)\n", versionOrUnknown(), commit, buildTime)
}

func versionOrUnknown() string {
	if Version == "" {
		return "unknown"
	}
	return Version
}
