package cli

import (
	"runtime/debug"
)

// Version and Commit are set at build time via -ldflags.
//
//	go build -ldflags "-X github.com/scbrown/newman/internal/cli.Version=v0.2.0
//	  -X github.com/scbrown/newman/internal/cli.Commit=48cae1d"
var (
	Version = ""
	Commit  = ""
)

// versionString renders the root --version output: "v0.2.0 (48cae1d)",
// or "dev" with the commit from build info when no version was stamped.
func versionString() string {
	v := Version
	if v == "" {
		v = "dev"
	}

	c := Commit
	if c == "" {
		c = commitFromBuildInfo()
	}

	if c != "" {
		return v + " (" + shortCommit(c) + ")"
	}
	return v
}

// commitFromBuildInfo extracts vcs.revision from Go's embedded build info.
func commitFromBuildInfo() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

// shortCommit returns the first 7 characters of a commit hash.
func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}
