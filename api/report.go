// File: api/report.go
// Package api defines the finalized report model and its lifecycle.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// ReportState tracks a report through the delivery pipeline. The
// intermediate states are waypoints, not a mandatory ladder: a report
// visits only the states its path uses (a synchronously tracked error is
// never Queued, a report without a confirmation hold skips
// ConfirmationPending, and AttachmentsResolved is reached only when the
// attachment provider is consulted). Every report ends in Submitted or
// Discarded.
type ReportState int

const (
	StateCaptured ReportState = iota
	StateNormalized
	StateQueued
	StateConfirmationPending
	StateAttachmentsResolved
	StateSubmitted
	StateDiscarded
)

func (s ReportState) String() string {
	switch s {
	case StateCaptured:
		return "captured"
	case StateNormalized:
		return "normalized"
	case StateQueued:
		return "queued"
	case StateConfirmationPending:
		return "confirmation-pending"
	case StateAttachmentsResolved:
		return "attachments-resolved"
	case StateSubmitted:
		return "submitted"
	case StateDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state permits no further transitions.
func (s ReportState) Terminal() bool {
	return s == StateSubmitted || s == StateDiscarded
}

// Report is a finalized, identifiable report derived from a Record.
// IsCrash is true for fatal faults captured at process level and false
// for handled or log-originated errors. No mutation after a terminal state.
type Report struct {
	ID      string // pipeline-assigned unique id
	IsCrash bool
	Record  *Record
	State   ReportState
}
