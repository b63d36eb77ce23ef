// File: api/severity.go
// Package api defines the log severity classification used by the
// log-based capture path.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "fmt"

// Severity classifies a log line for capture filtering.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityAssert
)

// IsCaptured reports whether lines of this severity are eligible for
// capture. Anything below error is filtered out, unconditionally.
func (s Severity) IsCaptured() bool {
	return s == SeverityError || s == SeverityAssert
}

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityAssert:
		return "assert"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity maps a textual severity name to its Severity value.
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "debug":
		return SeverityDebug, nil
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	case "assert", "assertion":
		return SeverityAssert, nil
	default:
		return SeverityDebug, fmt.Errorf("unknown severity %q", name)
	}
}
