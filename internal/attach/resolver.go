// File: internal/attach/resolver.go
// Package attach resolves user-supplied attachments for outgoing reports.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Attachment generation is best effort. A failing or panicking provider
// must never block crash delivery: the fault is logged and the report
// ships with zero attachments.

package attach

import (
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/momentics/crashpipe/api"
)

// Provider maps a report to zero or more attachments.
type Provider func(*api.Report) ([]api.Attachment, error)

// Resolver invokes the provider only when explicitly enabled.
type Resolver struct {
	mu       sync.RWMutex
	enabled  bool
	provider Provider
	log      *logrus.Entry
}

// NewResolver creates a disabled resolver with no provider.
func NewResolver() *Resolver {
	return &Resolver{log: logrus.WithField("component", "attach")}
}

// SetEnabled switches attachment augmentation on or off.
func (r *Resolver) SetEnabled(enabled bool) {
	r.mu.Lock()
	r.enabled = enabled
	r.mu.Unlock()
}

// Enabled reports whether augmentation is active.
func (r *Resolver) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// SetProvider installs or clears the attachment provider.
func (r *Resolver) SetProvider(p Provider) {
	r.mu.Lock()
	r.provider = p
	r.mu.Unlock()
}

// Resolve returns the attachments for report, or nil when disabled, when
// no provider is set, or when the provider fails. Empty payloads and
// attachments without a content type are dropped.
func (r *Resolver) Resolve(report *api.Report) []api.Attachment {
	r.mu.RLock()
	enabled, p := r.enabled, r.provider
	r.mu.RUnlock()
	if !enabled || p == nil {
		return nil
	}
	atts := r.call(p, report)
	return lo.Filter(atts, func(a api.Attachment, _ int) bool {
		return len(a.Payload) > 0 && a.ContentType != ""
	})
}

func (r *Resolver) call(p Provider, report *api.Report) (atts []api.Attachment) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithFields(logrus.Fields{
				"report": report.ID,
				"panic":  rec,
			}).Warn("attachment provider panicked, shipping without attachments")
			atts = nil
		}
	}()
	atts, err := p(report)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"report": report.ID,
			"error":  err,
		}).Warn("attachment provider failed, shipping without attachments")
		return nil
	}
	return atts
}
