// File: api/sink.go
// Package api defines the delivery sink contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Sink is the external reporting backend that persists and/or uploads
// finalized reports. Implementations must be idempotent on repeated
// delivery attempts of the same report id; the pipeline guarantees
// at-least-once delivery, never exactly-once.
//
// Retry policy belongs to the sink. The pipeline surfaces a rejected
// submission through its failure notification and moves on.
type Sink interface {
	// TrackException delivers a record with optional key/value properties
	// and inline attachments, returning the sink-assigned report id.
	TrackException(record *Record, properties map[string]string, attachments []Attachment) (string, error)

	// SendErrorAttachments forwards attachments for an already-tracked
	// report, keyed by the sink-assigned report id.
	SendErrorAttachments(reportID string, attachments []Attachment) error

	// BuildHandledErrorReport materializes a Report for a handled error
	// previously delivered through TrackException.
	BuildHandledErrorReport(reportID string) (*Report, error)
}
