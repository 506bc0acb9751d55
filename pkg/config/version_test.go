package config

import (
	"runtime"
	"strings"
	"testing"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version != Version || info.Commit != Commit {
		t.Fatalf("unexpected build info %+v", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("go version = %q", info.GoVersion)
	}
}

func TestVersionString(t *testing.T) {
	s := VersionString()
	if !strings.HasPrefix(s, "grantdoc "+Version) {
		t.Errorf("version string = %q", s)
	}
	if !strings.Contains(s, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("version string lacks platform: %q", s)
	}
}
