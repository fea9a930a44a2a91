package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	got := Get()
	if !strings.HasPrefix(got, "v") {
		t.Errorf("Get() = %q, want a v prefix", got)
	}
	if strings.ContainsAny(got, " \n") {
		t.Errorf("Get() = %q, want no whitespace", got)
	}
}

func TestResolve(t *testing.T) {
	withModule := func(v string) func() (*debug.BuildInfo, bool) {
		return func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Main: debug.Module{Version: v}}, true
		}
	}
	noInfo := func() (*debug.BuildInfo, bool) { return nil, false }

	tests := []struct {
		name      string
		ldflags   string
		buildInfo func() (*debug.BuildInfo, bool)
		want      string
	}{
		{"ldflags win", "v1.4.0", withModule("v9.9.9"), "v1.4.0"},
		{"go install version", "dev", withModule("v1.3.2"), "v1.3.2"},
		{"devel build falls back", "dev", withModule("(devel)"), Get()},
		{"no build info", "", noInfo, Get()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolve(tt.ldflags, tt.buildInfo); got != tt.want {
				t.Errorf("resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}
