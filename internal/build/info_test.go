package build

import (
	"runtime"
	"strings"
	"testing"
)

func TestCurrent(t *testing.T) {
	info := Current()
	if info.Version != Version || info.Commit != Commit {
		t.Errorf("Current() = %+v, want package vars", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	if !strings.HasPrefix(info.String(), "joe-pages "+Version) {
		t.Errorf("String() = %q", info.String())
	}
}
