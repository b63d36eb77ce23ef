package platform_test

import (
	"runtime"
	"testing"

	"github.com/momentics/crashpipe/internal/platform"
)

func TestDetect(t *testing.T) {
	info := platform.Detect()
	if info.OS != runtime.GOOS {
		t.Errorf("OS = %q, want %q", info.OS, runtime.GOOS)
	}
	if info.Arch != runtime.GOARCH {
		t.Errorf("Arch = %q, want %q", info.Arch, runtime.GOARCH)
	}
}

func TestWrapperName(t *testing.T) {
	info := platform.Info{OS: "linux", Arch: "amd64"}
	if got, want := info.WrapperName("crashpipe.go"), "crashpipe.go (linux/amd64)"; got != want {
		t.Errorf("WrapperName = %q, want %q", got, want)
	}
}

func TestProperties(t *testing.T) {
	info := platform.Info{OS: "linux", Arch: "arm64", Hostname: "node1", Kernel: "6.1.0"}
	props := info.Properties()
	for k, want := range map[string]string{"os": "linux", "arch": "arm64", "host": "node1", "kernel": "6.1.0"} {
		if props[k] != want {
			t.Errorf("props[%q] = %q, want %q", k, props[k], want)
		}
	}
	sparse := platform.Info{OS: "plan9", Arch: "386"}.Properties()
	if _, ok := sparse["kernel"]; ok {
		t.Error("empty kernel must be omitted")
	}
}
