// File: internal/platform/platform_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build !linux

package platform

// kernelRelease has no portable source outside linux.
func kernelRelease() string { return "" }
