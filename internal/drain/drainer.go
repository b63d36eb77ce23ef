// File: internal/drain/drainer.go
// Package drain implements the cooperative drain scheduler on the primary
// delivery context.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Each tick does bounded work: at most one record leaves the pending
// queue and runs the gate -> attachments -> sink pipeline. A burst of
// queued faults therefore cannot starve the primary context. No locks
// are held across the sink call boundary.

package drain

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/momentics/crashpipe/api"
	"github.com/momentics/crashpipe/control"
	"github.com/momentics/crashpipe/events"
	"github.com/momentics/crashpipe/internal/attach"
	"github.com/momentics/crashpipe/internal/gate"
	"github.com/momentics/crashpipe/internal/queue"
)

const maxBackoff = 100 * time.Millisecond

// Drainer dequeues pending records one per tick and runs delivery.
// It owns the confirmation gate and the attachment resolver.
type Drainer struct {
	queue    *queue.Pending
	sink     api.Sink
	gate     *gate.Gate
	resolver *attach.Resolver
	notify   *events.Notifications
	metrics  *control.MetricsRegistry
	props    map[string]string
	log      *logrus.Entry

	wakeCh      chan struct{}
	mu          sync.Mutex    // guards the run/stop handshake below
	stopCh      chan struct{} // non-nil while a run loop is active and stoppable
	doneCh      chan struct{} // closed when the active loop has exited
	stopPending bool          // a Stop arrived before its Run activation published stopCh
	backoff     time.Duration
}

// NewDrainer wires a drainer to its queue and sink. properties are
// attached to every submission.
func NewDrainer(q *queue.Pending, sink api.Sink, notify *events.Notifications, metrics *control.MetricsRegistry, properties map[string]string) *Drainer {
	d := &Drainer{
		queue:    q,
		sink:     sink,
		resolver: attach.NewResolver(),
		notify:   notify,
		metrics:  metrics,
		props:    properties,
		log:      logrus.WithField("component", "drain"),
		wakeCh:   make(chan struct{}, 1),
		backoff:  time.Microsecond,
	}
	d.gate = gate.New(d.onGateRelease)
	return d
}

// Gate exposes the confirmation gate for predicate registration and
// external decisions.
func (d *Drainer) Gate() *gate.Gate { return d.gate }

// Resolver exposes the attachment resolver for configuration.
func (d *Drainer) Resolver() *attach.Resolver { return d.resolver }

// Tick processes at most one pending record. Returns false when the
// queue was empty and the drainer is idle for this activation; a later
// enqueue reactivates it via Wake or the next poll.
func (d *Drainer) Tick() bool {
	item, ok := d.queue.TryDequeue()
	if !ok {
		return false
	}
	d.metrics.Inc(control.MetricDrained)

	report := &api.Report{
		ID:      uuid.NewString(),
		IsCrash: item.Crash,
		Record:  item.Record,
		State:   api.StateQueued,
	}
	d.Process(report)
	return true
}

// Process runs one report through the gate and, unless held, submits it.
// A held report is fully handed over: the gate's later decision resumes
// submission, so the record is never left half-processed.
func (d *Drainer) Process(report *api.Report) {
	if d.gate.Evaluate(report) {
		d.log.WithField("report", report.ID).Debug("held for user confirmation")
		return
	}
	d.submit(report)
}

// Wake nudges an idle run loop. Non-blocking; safe from any goroutine.
func (d *Drainer) Wake() {
	select {
	case d.wakeCh <- struct{}{}:
	default:
	}
}

// Run drives ticks until Stop. Only one loop runs at a time; calling Run
// on a running drainer is a no-op. The loop is restartable after Stop.
// Activation is atomic with the stop handshake: a Stop issued between
// launching Run and its first instruction cancels that activation
// instead of leaking an unstoppable loop.
func (d *Drainer) Run() {
	d.mu.Lock()
	if d.stopCh != nil || d.doneCh != nil {
		d.mu.Unlock()
		return
	}
	if d.stopPending {
		d.stopPending = false
		d.mu.Unlock()
		return
	}
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	d.stopCh, d.doneCh = stopCh, doneCh
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.stopCh, d.doneCh = nil, nil
		d.mu.Unlock()
		close(doneCh)
	}()

	d.backoff = time.Microsecond
	for {
		select {
		case <-stopCh:
			return
		default:
			if d.Tick() {
				d.backoff = time.Microsecond
				continue
			}
			if !d.idleWait(stopCh) {
				return
			}
		}
	}
}

// idleWait parks the loop until a wake, a timeout or a stop. Returns
// false on stop.
func (d *Drainer) idleWait(stopCh <-chan struct{}) bool {
	timer := time.NewTimer(d.backoff)
	defer timer.Stop()
	select {
	case <-stopCh:
		return false
	case <-d.wakeCh:
		d.backoff = time.Microsecond
		return true
	case <-timer.C:
		d.backoff *= 2
		if d.backoff > maxBackoff {
			d.backoff = maxBackoff
		}
		return true
	}
}

// Stop halts the run loop and waits for the in-flight tick to finish.
// Queued records stay queued for a later Run. Stop pairs with Run: when
// it arrives before its Run activation has published the stop channel,
// it leaves a pending stop that cancels that activation on entry.
func (d *Drainer) Stop() {
	d.mu.Lock()
	if d.stopCh == nil {
		if d.doneCh != nil {
			// Another Stop already signalled; wait for the loop to exit.
			doneCh := d.doneCh
			d.mu.Unlock()
			<-doneCh
			return
		}
		d.stopPending = true
		d.mu.Unlock()
		return
	}
	stopCh, doneCh := d.stopCh, d.doneCh
	d.stopCh = nil
	close(stopCh)
	d.mu.Unlock()
	<-doneCh
}

func (d *Drainer) onGateRelease(report *api.Report, send bool) {
	if send {
		d.submit(report)
		return
	}
	d.discard(report)
}

func (d *Drainer) submit(report *api.Report) {
	if report.State.Terminal() {
		return
	}
	d.notify.Sending.Emit(report)

	sinkID, err := d.sink.TrackException(report.Record, d.props, nil)
	if err != nil {
		d.metrics.Inc(control.MetricDeliveryFailures)
		report.State = api.StateDiscarded
		d.log.WithFields(logrus.Fields{
			"report": report.ID,
			"error":  err,
		}).Error("sink rejected submission")
		d.notify.Failed.Emit(events.Failure{Report: report, Err: err})
		return
	}

	if d.resolver.Enabled() {
		atts := d.resolver.Resolve(report)
		report.State = api.StateAttachmentsResolved
		if len(atts) > 0 {
			if err := d.sink.SendErrorAttachments(sinkID, atts); err != nil {
				// Attachments are best effort; the report itself is in.
				d.metrics.Inc(control.MetricDeliveryFailures)
				d.log.WithFields(logrus.Fields{
					"report": report.ID,
					"error":  err,
				}).Warn("attachment delivery failed")
			}
		}
	}

	report.State = api.StateSubmitted
	d.metrics.Inc(control.MetricSubmitted)
	d.notify.Sent.Emit(report)
}

func (d *Drainer) discard(report *api.Report) {
	if report.State.Terminal() {
		return
	}
	report.State = api.StateDiscarded
	d.metrics.Inc(control.MetricDiscarded)
	d.log.WithField("report", report.ID).Info("report discarded by user decision")
}
