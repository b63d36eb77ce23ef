// File: internal/platform/platform.go
// Package platform detects host capabilities and identity at startup.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Capture-path selection is a runtime decision based on this probe, not
// compile-time branching; only the kernel fingerprint itself is resolved
// through per-OS files.

package platform

import (
	"fmt"
	"os"
	"runtime"
)

// Info describes the host a record was captured on. It feeds backend
// attribution (wrapper SDK name, sink properties).
type Info struct {
	OS       string
	Arch     string
	Hostname string
	Kernel   string // kernel release where the OS exposes one
}

// Detect probes the current host. It never fails: unavailable fields stay
// empty.
func Detect() Info {
	info := Info{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
	if host, err := os.Hostname(); err == nil {
		info.Hostname = host
	}
	info.Kernel = kernelRelease()
	return info
}

// WrapperName derives the wrapper SDK identifier reported with every
// record produced on this host.
func (i Info) WrapperName(base string) string {
	return fmt.Sprintf("%s (%s/%s)", base, i.OS, i.Arch)
}

// Properties renders the fingerprint as sink submission properties.
func (i Info) Properties() map[string]string {
	props := make(map[string]string, 4)
	if i.OS != "" {
		props["os"] = i.OS
	}
	if i.Arch != "" {
		props["arch"] = i.Arch
	}
	if i.Hostname != "" {
		props["host"] = i.Hostname
	}
	if i.Kernel != "" {
		props["kernel"] = i.Kernel
	}
	return props
}
