// Package build exposes build-time metadata injected via ldflags.
package build

import "runtime"

// Version, Commit, and Branch are set at build time by:
//
//	-ldflags "-X github.com/joestump/joe-pages/internal/build.Version=... ..."
var (
	Version = "dev"
	Commit  = "unknown"
	Branch  = "unknown"
)

// Info is the build metadata reported by /healthz and `joe-pages version`.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	GoVersion string `json:"go_version"`
}

// Current returns the metadata of the running binary.
func Current() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Branch:    Branch,
		GoVersion: runtime.Version(),
	}
}

func (i Info) String() string {
	return "joe-pages " + i.Version + " (" + i.Commit + ", " + i.Branch + ", " + i.GoVersion + ")"
}
