// File: internal/normalize/normalize.go
// Package normalize converts runtime faults into language-neutral records.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// All transforms here are pure: no I/O, no logging, no unbounded
// allocation. This code runs on the capturing context, which may be
// mid-unwind; everything heavier is deferred through the pending queue.

package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/momentics/crashpipe/api"
)

// FromError normalizes a structured Go error into a Record. The causal
// chain is walked via errors.Unwrap, preserving original order; the walk
// is capped at api.MaxChainDepth links as a cycle guard. Only the
// outermost record carries a captured runtime stack.
func FromError(err error, wrapperName string) (*api.Record, error) {
	if err == nil {
		return nil, api.NewError(api.ErrCodeInvalidInput, "normalize nil error", api.ErrInvalidInput)
	}
	root := &api.Record{
		Kind:           kindOf(err),
		Message:        sanitizeMessage(err.Error()),
		StackTrace:     captureStack(1),
		WrapperSDKName: wrapperName,
	}
	cur := root
	depth := 1
	for inner := errors.Unwrap(err); inner != nil && depth < api.MaxChainDepth; inner = errors.Unwrap(inner) {
		cur.Inner = &api.Record{
			Kind:           kindOf(inner),
			Message:        sanitizeMessage(inner.Error()),
			WrapperSDKName: wrapperName,
		}
		cur = cur.Inner
		depth++
	}
	return root, nil
}

// FromLog normalizes a free-text log line plus raw stack text. Severities
// below error are rejected with api.ErrSeverityFiltered; this is a hard
// filter, not a default. An input with both message and stack empty is
// rejected with api.ErrInvalidInput.
func FromLog(message, stackText string, severity api.Severity, wrapperName string) (*api.Record, error) {
	if !severity.IsCaptured() {
		return nil, api.ErrSeverityFiltered
	}
	if message == "" && stackText == "" {
		return nil, api.NewError(api.ErrCodeInvalidInput, "empty log capture", api.ErrInvalidInput)
	}
	// A multi-line message with no separate stack text carries its own
	// trace: the first line is the message, the rest are frames.
	if stackText == "" {
		if i := strings.IndexByte(message, '\n'); i >= 0 {
			stackText = message[i+1:]
			message = message[:i]
		}
	}
	return &api.Record{
		Kind:           severity.String(),
		Message:        sanitizeMessage(message),
		StackTrace:     splitLogStack(stackText),
		WrapperSDKName: wrapperName,
	}, nil
}

// FromPanic normalizes a recovered panic value. It never panics itself:
// a value that resists normalization degrades to a minimal record.
func FromPanic(v any, wrapperName string) *api.Record {
	defer func() { recover() }()
	if err, ok := v.(error); ok {
		if rec, nerr := FromError(err, wrapperName); nerr == nil {
			rec.Kind = "panic: " + rec.Kind
			return rec
		}
	}
	msg := ""
	if v != nil {
		msg = sanitizeMessage(fmt.Sprint(v))
	}
	if msg == "" {
		return Minimal(wrapperName)
	}
	return &api.Record{
		Kind:           "panic",
		Message:        msg,
		StackTrace:     captureStack(1),
		WrapperSDKName: wrapperName,
	}
}

// Minimal returns the degraded record used when normalization itself
// fails mid-unwind. Capture must never abort by throwing further faults.
func Minimal(wrapperName string) *api.Record {
	return &api.Record{Kind: "unknown", WrapperSDKName: wrapperName}
}

// sanitizeMessage replaces embedded newlines with spaces, preserving the
// single-line log semantics expected by the backend.
func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", " ")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}

// splitLogStack splits raw stack text on newlines, drops empty lines and
// prefixes each surviving line with "at " plus a trailing terminator.
// Lines already carrying the "at " framing keep it unduplicated.
func splitLogStack(stackText string) []string {
	if stackText == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(stackText, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "at ") {
			line = "at " + line
		}
		out = append(out, line+"\n")
	}
	return out
}

func kindOf(err error) string {
	t := fmt.Sprintf("%T", err)
	return strings.TrimPrefix(t, "*")
}
