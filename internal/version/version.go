// Package version holds the build stamp of mcremap. Release builds set it with
// -ldflags "-X mcremap/internal/version.Commit=<sha> -X mcremap/internal/version.BuildDate=<date>".
package version

import (
	"runtime/debug"
	"strings"
)

var (
	Version   = "0.4.0"
	Commit    = ""
	BuildDate = ""
)

// Revision returns the commit mcremap was built from: the ldflags value, else
// the VCS revision the Go toolchain embedded, else "unknown".
func Revision() string {
	if Commit != "" {
		return Commit
	}
	return vcsSetting("vcs.revision")
}

// Built returns the build or commit time, or "unknown".
func Built() string {
	if BuildDate != "" {
		return BuildDate
	}
	return vcsSetting("vcs.time")
}

func vcsSetting(key string) string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == key && s.Value != "" {
				return s.Value
			}
		}
	}
	return "unknown"
}

// UserAgent identifies mcremap to mapping download servers,
// e.g. "mcremap/0.4.0 (a1b2c3d)".
func UserAgent() string {
	rev := Revision()
	if rev == "unknown" {
		return "mcremap/" + Version
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	return "mcremap/" + Version + " (" + rev + ")"
}

// Full is the text of `mcremap version`.
func Full() string {
	var b strings.Builder
	b.WriteString("mcremap " + Version + "\n")
	b.WriteString("Commit: " + Revision() + "\n")
	b.WriteString("Built:  " + Built())
	return b.String()
}
