package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info is the build information reported by /version and the CLI.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	IsDirty   bool   `json:"is_dirty"`
}

// Get returns the build information, filling commit and time from the
// embedded VCS stamp when the linker flags were not set.
func Get() Info {
	info := Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = shortCommit(s.Value)
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.IsDirty = s.Value == "true"
		}
	}
	return info
}

// String renders the version as "<version>-<commit>[-dirty]".
func (i Info) String() string {
	if i.GitCommit == "" {
		return i.Version
	}
	s := fmt.Sprintf("%s-%s", i.Version, i.GitCommit)
	if i.IsDirty {
		s += "-dirty"
	}
	return s
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
