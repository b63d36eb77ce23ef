// File: internal/gate/gate.go
// Package gate implements the user-confirmation gate in front of the
// delivery sink.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package gate

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/momentics/crashpipe/api"
)

// Decision is the external answer for a held report.
type Decision int

const (
	// DontSend discards the held report.
	DontSend Decision = iota
	// Send releases the held report for submission.
	Send
	// AlwaysSend releases the held report and downgrades the gate to
	// pass-through for the rest of the session.
	AlwaysSend
)

// Predicate answers whether a report should await user confirmation.
type Predicate func(*api.Report) bool

// ReleaseFunc receives a decided report, outside the gate lock.
// send=false means the report was discarded.
type ReleaseFunc func(report *api.Report, send bool)

// Gate holds at most one optional confirmation predicate. With no
// predicate, reports flow straight through. A held report transitions
// exactly once, to submitted or discarded.
type Gate struct {
	mu        sync.Mutex
	predicate Predicate
	always    bool
	held      []*api.Report // insertion order
	release   ReleaseFunc
	log       *logrus.Entry
}

// New creates a pass-through gate. release is invoked for every decided
// report and must not be nil.
func New(release ReleaseFunc) *Gate {
	return &Gate{
		release: release,
		log:     logrus.WithField("component", "gate"),
	}
}

// SetPredicate installs or clears the confirmation predicate.
func (g *Gate) SetPredicate(p Predicate) {
	g.mu.Lock()
	g.predicate = p
	g.mu.Unlock()
}

// Evaluate runs the predicate for report. When it returns true the report
// is parked in ConfirmationPending and Evaluate reports held=true; the
// caller must not submit it. A panicking predicate is a callback failure:
// logged, treated as false.
func (g *Gate) Evaluate(report *api.Report) (held bool) {
	g.mu.Lock()
	p := g.predicate
	passThrough := g.always || p == nil
	g.mu.Unlock()
	if passThrough {
		return false
	}
	if !g.ask(p, report) {
		return false
	}
	g.mu.Lock()
	report.State = api.StateConfirmationPending
	g.held = append(g.held, report)
	g.mu.Unlock()
	return true
}

func (g *Gate) ask(p Predicate, report *api.Report) (hold bool) {
	defer func() {
		if rec := recover(); rec != nil {
			g.log.WithFields(logrus.Fields{
				"report": report.ID,
				"panic":  rec,
			}).Warn("confirmation predicate panicked, treating as no-hold")
			hold = false
		}
	}()
	return p(report)
}

// Decide resolves one held report by id. Returns api.ErrUnknownReport if
// no report is pending under that id. The release callback runs outside
// the gate lock.
func (g *Gate) Decide(reportID string, d Decision) error {
	g.mu.Lock()
	var report *api.Report
	for i, r := range g.held {
		if r.ID == reportID {
			report = r
			g.held = append(g.held[:i], g.held[i+1:]...)
			break
		}
	}
	if report == nil {
		g.mu.Unlock()
		return api.ErrUnknownReport
	}
	if d == AlwaysSend {
		g.always = true
	}
	g.mu.Unlock()

	g.release(report, d != DontSend)
	return nil
}

// DecideAll resolves every held report with the same decision, in the
// order they were held.
func (g *Gate) DecideAll(d Decision) {
	g.mu.Lock()
	decided := g.held
	g.held = nil
	if d == AlwaysSend {
		g.always = true
	}
	g.mu.Unlock()

	for _, report := range decided {
		g.release(report, d != DontSend)
	}
}

// Pending returns the number of reports awaiting a decision.
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.held)
}

// PassThrough reports whether the gate currently holds nothing back,
// either because no predicate is set or after an AlwaysSend decision.
func (g *Gate) PassThrough() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.always || g.predicate == nil
}
