// Package misc holds build time information.
package misc

import (
	"runtime/debug"
)

const appName = "css3d"

// set with -ldflags "-X css3d/misc.version=... -X css3d/misc.gitHash=..."
var (
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name used for logs, temporary and report files.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns vcs revision program was built from, if known.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
