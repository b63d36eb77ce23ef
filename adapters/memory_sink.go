// Package adapters
// Author: momentics <momentics@gmail.com>
//
// In-memory delivery sink with report-id deduplication. Useful for
// examples, tooling dry runs and as a reference for the idempotency
// contract real backends must honor.

package adapters

import (
	"sync"

	"github.com/google/uuid"

	"github.com/momentics/crashpipe/api"
)

// MemorySink stores submissions in memory. Redelivering the same record
// returns the original report id; attachment redelivery replaces rather
// than appends.
type MemorySink struct {
	mu          sync.Mutex
	byRecord    map[*api.Record]string
	records     map[string]*api.Record
	attachments map[string][]api.Attachment
}

var _ api.Sink = (*MemorySink)(nil)

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		byRecord:    make(map[*api.Record]string),
		records:     make(map[string]*api.Record),
		attachments: make(map[string][]api.Attachment),
	}
}

func (s *MemorySink) TrackException(record *api.Record, properties map[string]string, attachments []api.Attachment) (string, error) {
	if record == nil {
		return "", api.NewError(api.ErrCodeInvalidInput, "track nil record", api.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byRecord[record]; ok {
		return id, nil // at-least-once redelivery, deduplicated
	}
	id := uuid.NewString()
	s.byRecord[record] = id
	s.records[id] = record
	if len(attachments) > 0 {
		s.attachments[id] = append([]api.Attachment(nil), attachments...)
	}
	return id, nil
}

func (s *MemorySink) SendErrorAttachments(reportID string, attachments []api.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[reportID]; !ok {
		return api.NewError(api.ErrCodeDeliveryFailure, "unknown report id "+reportID, nil)
	}
	s.attachments[reportID] = append([]api.Attachment(nil), attachments...)
	return nil
}

func (s *MemorySink) BuildHandledErrorReport(reportID string) (*api.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[reportID]
	if !ok {
		return nil, api.NewError(api.ErrCodeDeliveryFailure, "unknown report id "+reportID, nil)
	}
	return &api.Report{ID: reportID, IsCrash: false, Record: record, State: api.StateSubmitted}, nil
}

// Len returns the number of distinct stored reports.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// AttachmentsFor returns stored attachments for one report id.
func (s *MemorySink) AttachmentsFor(reportID string) []api.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Attachment(nil), s.attachments[reportID]...)
}
