// File: api/capture.go
// Package api defines the capture capability contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Capture abstracts the two capture paths a platform may offer. The
// concrete path is selected by capability detection at startup, never by
// compile-time branching.
//
// CaptureImmediate runs the full delivery pipeline inline and is only
// legal on the primary execution context. CaptureDeferred enqueues the
// record for the drain scheduler and is safe from any context, including
// one that is mid-unwind.
type Capture interface {
	CaptureImmediate(record *Record) error
	CaptureDeferred(record *Record) error
}
