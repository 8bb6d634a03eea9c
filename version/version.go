package version

import (
	"runtime/debug"
	"sort"
	"strings"
	"time"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// backendModules maps container module paths to backend names.
var backendModules = map[string]string{
	"go.uber.org/dig":         "dig",
	"github.com/xraph/vessel": "vessel",
}

// Backend is a container library linked into the binary.
type Backend struct {
	Name    string `json:"name"`
	Module  string `json:"module"`
	Version string `json:"version"`
}

// Info describes the running build.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit,omitempty"`
	BuildTime time.Time `json:"build_time"`
	GoVersion string    `json:"go_version"`
	Dirty     bool      `json:"dirty"`
	Backends  []Backend `json:"backends"`
}

// Release reports whether the build is a tagged, clean build.
func (i Info) Release() bool {
	return i.Version != "dev" && !i.Dirty
}

// String renders the short form, e.g. "1.2.0-3f2a9c1-dirty".
func (i Info) String() string {
	parts := []string{i.Version}
	if i.GitCommit != "" {
		parts = append(parts, i.GitCommit)
	}
	if i.Dirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}

// Get returns the build information of the running binary.
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	return fromBuildInfo(bi)
}

func fromBuildInfo(bi *debug.BuildInfo) Info {
	info := Info{
		Version:   Version,
		GitCommit: shortCommit(GitCommit),
		// arena ships with exportkit itself
		Backends: []Backend{{Name: "arena", Module: "github.com/kbukum/exportkit", Version: Version}},
	}
	if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
		info.BuildTime = t
	}
	if bi == nil {
		return info
	}

	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = shortCommit(s.Value)
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		case "vcs.time":
			if info.BuildTime.IsZero() {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					info.BuildTime = t
				}
			}
		}
	}

	for _, dep := range bi.Deps {
		if dep.Replace != nil {
			dep = dep.Replace
		}
		if name, ok := backendModules[dep.Path]; ok {
			info.Backends = append(info.Backends, Backend{Name: name, Module: dep.Path, Version: dep.Version})
		}
	}
	sort.Slice(info.Backends, func(i, j int) bool { return info.Backends[i].Name < info.Backends[j].Name })
	return info
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}
