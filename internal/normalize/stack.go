// File: internal/normalize/stack.go
// Package normalize converts runtime faults into language-neutral records.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stack capture uses runtime.Callers + runtime.CallersFrames so inlined
// frames resolve correctly. Depth is bounded; capture-context work must
// stay cheap.

package normalize

import (
	"fmt"
	"runtime"
)

const maxStackDepth = 64

// captureStack records up to maxStackDepth frames, skipping 'skip' caller
// frames, and renders each in the "at Function (file:line)" framing used
// by downstream symbolication tools. Frames carry a trailing newline so a
// stack block is the plain concatenation of its frames.
func captureStack(skip int) []string {
	pc := make([]uintptr, maxStackDepth)
	// +2 skips runtime.Callers and captureStack itself.
	n := runtime.Callers(skip+2, pc)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pc[:n])
	out := make([]string, 0, n)
	for {
		fr, more := frames.Next()
		if fr.Function != "" {
			out = append(out, fmt.Sprintf("at %s (%s:%d)\n", fr.Function, fr.File, fr.Line))
		}
		if !more {
			break
		}
	}
	return out
}
