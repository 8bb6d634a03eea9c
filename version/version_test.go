package version

import (
	"runtime/debug"
	"testing"
)

func saveAndRestore() func() {
	v, c, b := Version, GitCommit, BuildTime
	return func() {
		Version, GitCommit, BuildTime = v, c, b
	}
}

func TestFromBuildInfo_NoBuildInfo(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "dev", "", ""

	info := fromBuildInfo(nil)
	if info.Version != "dev" || info.Release() {
		t.Errorf("unexpected info %+v", info)
	}
	if len(info.Backends) != 1 || info.Backends[0].Name != "arena" {
		t.Errorf("expected only arena, got %+v", info.Backends)
	}
	if !info.BuildTime.IsZero() {
		t.Error("BuildTime should be zero")
	}
}

func TestFromBuildInfo_VCSAndDeps(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "1.2.0", "", ""

	bi := &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "3f2a9c1d8e7b6a5"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
		Deps: []*debug.Module{
			{Path: "github.com/xraph/vessel", Version: "v0.0.1"},
			{Path: "go.uber.org/dig", Version: "v1.18.1"},
			{Path: "github.com/rs/zerolog", Version: "v1.34.0"},
		},
	}
	info := fromBuildInfo(bi)

	if info.GitCommit != "3f2a9c1" {
		t.Errorf("expected short commit, got %q", info.GitCommit)
	}
	if !info.Dirty || info.Release() {
		t.Error("dirty build must not be a release")
	}
	if info.BuildTime.Year() != 2026 {
		t.Errorf("expected vcs time, got %v", info.BuildTime)
	}
	if info.String() != "1.2.0-3f2a9c1-dirty" {
		t.Errorf("unexpected String %q", info.String())
	}

	names := make([]string, 0, len(info.Backends))
	for _, b := range info.Backends {
		names = append(names, b.Name)
	}
	if len(names) != 3 || names[0] != "arena" || names[1] != "dig" || names[2] != "vessel" {
		t.Errorf("unexpected backends %v", names)
	}
	if info.Backends[1].Version != "v1.18.1" {
		t.Errorf("unexpected dig version %q", info.Backends[1].Version)
	}
}

func TestFromBuildInfo_LdflagsWin(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "2.0.0", "abcdef0123", "2025-05-05T00:00:00Z"

	bi := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "9999999999"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
	}}
	info := fromBuildInfo(bi)
	if info.GitCommit != "abcdef0" {
		t.Errorf("ldflags commit should win, got %q", info.GitCommit)
	}
	if info.BuildTime.Year() != 2025 {
		t.Errorf("ldflags build time should win, got %v", info.BuildTime)
	}
	if !info.Release() {
		t.Error("clean tagged build should be a release")
	}
}

func TestFromBuildInfo_Replace(t *testing.T) {
	bi := &debug.BuildInfo{Deps: []*debug.Module{
		{Path: "go.uber.org/dig", Version: "v1.18.1", Replace: &debug.Module{Path: "go.uber.org/dig", Version: "v1.19.0"}},
	}}
	info := fromBuildInfo(bi)
	if len(info.Backends) != 2 || info.Backends[1].Version != "v1.19.0" {
		t.Errorf("expected replaced version, got %+v", info.Backends)
	}
}
