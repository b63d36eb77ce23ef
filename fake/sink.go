// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"fmt"
	"sync"

	"github.com/momentics/crashpipe/api"
)

// Tracked is one TrackException call observed by the fake sink.
type Tracked struct {
	ReportID    string
	Record      *api.Record
	Properties  map[string]string
	Attachments []api.Attachment
}

// Sink provides a test/dummy delivery sink recording every call.
type Sink struct {
	mu          sync.Mutex
	nextID      int
	tracked     []Tracked
	attachments map[string][]api.Attachment
	TrackErr    error // when set, TrackException fails with it
	AttachErr   error // when set, SendErrorAttachments fails with it
}

var _ api.Sink = (*Sink)(nil)

// NewSink creates an empty fake sink.
func NewSink() *Sink {
	return &Sink{attachments: make(map[string][]api.Attachment)}
}

func (s *Sink) TrackException(record *api.Record, properties map[string]string, attachments []api.Attachment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TrackErr != nil {
		return "", s.TrackErr
	}
	s.nextID++
	id := fmt.Sprintf("fake-%d", s.nextID)
	s.tracked = append(s.tracked, Tracked{
		ReportID:    id,
		Record:      record,
		Properties:  properties,
		Attachments: attachments,
	})
	return id, nil
}

func (s *Sink) SendErrorAttachments(reportID string, attachments []api.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AttachErr != nil {
		return s.AttachErr
	}
	s.attachments[reportID] = append(s.attachments[reportID], attachments...)
	return nil
}

func (s *Sink) BuildHandledErrorReport(reportID string) (*api.Report, error) {
	return &api.Report{ID: reportID, IsCrash: false, State: api.StateSubmitted}, nil
}

// Tracked returns a copy of all observed TrackException calls.
func (s *Sink) TrackedCalls() []Tracked {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Tracked, len(s.tracked))
	copy(out, s.tracked)
	return out
}

// AttachmentsFor returns attachments forwarded for one report id.
func (s *Sink) AttachmentsFor(reportID string) []api.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Attachment(nil), s.attachments[reportID]...)
}
