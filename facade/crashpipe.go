// File: facade/crashpipe.go
// Unified facade layer for the crashpipe library.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the CrashPipe struct, which aggregates all core
// components of the pipeline behind a single facade: the exception
// normalizer, the pending queue, the drain scheduler, the confirmation
// gate, the attachment resolver and the delivery sink. The facade is an
// explicit process-wide context object constructed at startup and passed
// to all capture and drain entry points; there is no static state and no
// implicit initialization.

package facade

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/momentics/crashpipe/api"
	"github.com/momentics/crashpipe/control"
	"github.com/momentics/crashpipe/events"
	"github.com/momentics/crashpipe/internal/attach"
	"github.com/momentics/crashpipe/internal/drain"
	"github.com/momentics/crashpipe/internal/gate"
	"github.com/momentics/crashpipe/internal/normalize"
	"github.com/momentics/crashpipe/internal/platform"
	"github.com/momentics/crashpipe/internal/queue"
)

// Config holds parameters immutable per run.
type Config struct {
	ReportUnhandledExceptions bool              // capture process-level faults through the pending queue
	EnableAttachmentCallbacks bool              // consult the attachment provider for drained reports
	WrapperSDKName            string            // base identifier reported with every record
	Properties                map[string]string // extra key/value properties sent with every submission
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		ReportUnhandledExceptions: true,
		EnableAttachmentCallbacks: false,
		WrapperSDKName:            "crashpipe.go",
	}
}

// CrashPipe is the main facade type: one capture-and-delivery pipeline
// bound to one delivery sink.
type CrashPipe struct {
	cfg     *Config
	sink    api.Sink
	queue   *queue.Pending
	drainer *drain.Drainer
	notify  *events.Notifications
	store   *control.ConfigStore
	metrics *control.MetricsRegistry
	host    platform.Info
	wrapper string
	log     *logrus.Entry

	mu          sync.Mutex
	initialized bool
	started     bool
}

// Ensure the facade satisfies the capture capability and shutdown
// contracts.
var (
	_ api.Capture          = (*CrashPipe)(nil)
	_ api.GracefulShutdown = (*CrashPipe)(nil)
)

// New constructs a CrashPipe over the given sink. The invalid flag
// combination (attachments enabled while unhandled-exception reporting is
// disabled) is rejected with a warning: the attachments flag is not
// applied.
func New(cfg *Config, sink api.Sink) (*CrashPipe, error) {
	if sink == nil {
		return nil, api.NewError(api.ErrCodeInvalidInput, "nil delivery sink", nil)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cp := &CrashPipe{
		cfg:     cfg,
		sink:    sink,
		notify:  events.NewNotifications(),
		store:   control.NewConfigStore(),
		metrics: control.NewMetricsRegistry(),
		wrapper: cfg.WrapperSDKName,
		log:     logrus.WithField("component", "crashpipe"),
	}
	cp.queue = queue.NewPending(func() { cp.drainer.Wake() })

	props := make(map[string]string, len(cfg.Properties))
	for k, v := range cfg.Properties {
		props[k] = v
	}
	cp.drainer = drain.NewDrainer(cp.queue, sink, cp.notify, cp.metrics, props)

	if cfg.EnableAttachmentCallbacks && !cfg.ReportUnhandledExceptions {
		cp.log.Warn("attachment callbacks require unhandled-exception reporting; ignoring EnableAttachmentCallbacks")
	} else {
		cp.drainer.Resolver().SetEnabled(cfg.EnableAttachmentCallbacks)
	}
	return cp, nil
}

// Initialize wires lifecycle state before the first fault capture: host
// capability detection, wrapper attribution, and the control mirror.
// Idempotent.
func (cp *CrashPipe) Initialize() error {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.initialized {
		return nil
	}
	cp.host = platform.Detect()
	cp.wrapper = cp.host.WrapperName(cp.cfg.WrapperSDKName)
	cp.store.Set(map[string]any{
		"wrapper_sdk_name":            cp.wrapper,
		"report_unhandled_exceptions": cp.cfg.ReportUnhandledExceptions,
		"attachment_callbacks":        cp.drainer.Resolver().Enabled(),
		"host":                        cp.host.Hostname,
		"kernel":                      cp.host.Kernel,
	})
	cp.initialized = true
	return nil
}

// Start launches the drain goroutine, the single primary delivery
// context. Subsequent calls to Start have no effect.
func (cp *CrashPipe) Start() error {
	if err := cp.Initialize(); err != nil {
		return err
	}
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.started {
		return nil
	}
	go cp.drainer.Run()
	cp.started = true
	return nil
}

// Stop halts the drain goroutine. Queued records stay in memory and
// drain after a later Start; they do not survive process exit.
func (cp *CrashPipe) Stop() error {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if !cp.started {
		return nil
	}
	cp.drainer.Stop()
	cp.started = false
	return nil
}

// Shutdown implements api.GracefulShutdown: stop the drain goroutine
// first so the queue has a single consumer again, then flush the
// leftovers on the caller's context.
func (cp *CrashPipe) Shutdown() error {
	if err := cp.Stop(); err != nil {
		return err
	}
	cp.Flush(time.Second)
	return nil
}

// TrackError reports a handled error synchronously on the caller's
// context: normalize, notify, deliver, resolve the handled report.
func (cp *CrashPipe) TrackError(err error, properties map[string]string, attachments []api.Attachment) (*api.Report, error) {
	record, nerr := normalize.FromError(err, cp.wrapper)
	if nerr != nil {
		return nil, nerr
	}
	cp.metrics.Inc(control.MetricCaptured)

	report := &api.Report{
		ID:      uuid.NewString(),
		IsCrash: false,
		Record:  record,
		State:   api.StateNormalized,
	}
	cp.notify.Sending.Emit(report)

	sinkID, serr := cp.sink.TrackException(record, cp.submissionProperties(properties), attachments)
	if serr != nil {
		cp.metrics.Inc(control.MetricDeliveryFailures)
		report.State = api.StateDiscarded
		cp.notify.Failed.Emit(events.Failure{Report: report, Err: serr})
		return nil, api.NewError(api.ErrCodeDeliveryFailure, "handled error submission failed", serr)
	}
	if handled, herr := cp.sink.BuildHandledErrorReport(sinkID); herr == nil && handled != nil {
		report.ID = handled.ID
	}
	report.State = api.StateSubmitted
	cp.metrics.Inc(control.MetricSubmitted)
	cp.notify.Sent.Emit(report)
	return report, nil
}

// OnHandleLog is the log-based capture hook. Severities below error are
// filtered out before normalization; captured lines join the pending
// queue and are throttled by the drain scheduler like any other capture.
func (cp *CrashPipe) OnHandleLog(message, stackTrace string, severity api.Severity) error {
	if !severity.IsCaptured() {
		cp.metrics.Inc(control.MetricFiltered)
		return nil
	}
	record, err := normalize.FromLog(message, stackTrace, severity, cp.wrapper)
	if err != nil {
		return err
	}
	cp.enqueue(record, false)
	return nil
}

// OnUnhandledFault is the process-level fault hook. It only enqueues;
// the capturing context may be mid-unwind and is never used for delivery
// work. Normalization failures degrade to a minimal record rather than
// aborting capture.
func (cp *CrashPipe) OnUnhandledFault(fault error) {
	if !cp.cfg.ReportUnhandledExceptions {
		cp.metrics.Inc(control.MetricFiltered)
		return
	}
	record, err := normalize.FromError(fault, cp.wrapper)
	if err != nil {
		record = normalize.Minimal(cp.wrapper)
	}
	cp.enqueue(record, true)
}

// CaptureDeferred implements api.Capture: enqueue for the drain
// scheduler. Safe from any context.
func (cp *CrashPipe) CaptureDeferred(record *api.Record) error {
	if record == nil {
		return api.ErrInvalidInput
	}
	cp.enqueue(record, true)
	return nil
}

// CaptureImmediate implements api.Capture: run delivery inline. Legal
// only on the primary execution context.
func (cp *CrashPipe) CaptureImmediate(record *api.Record) error {
	if record == nil {
		return api.ErrInvalidInput
	}
	cp.metrics.Inc(control.MetricCaptured)
	cp.drainer.Process(&api.Report{
		ID:      uuid.NewString(),
		IsCrash: true,
		Record:  record,
		State:   api.StateNormalized,
	})
	return nil
}

// RecoverAndReport is a deferred helper for goroutine tops:
//
//	defer pipe.RecoverAndReport()
//
// A recovered panic is normalized and enqueued as an unhandled fault;
// the panic is not re-raised.
func (cp *CrashPipe) RecoverAndReport() {
	v := recover()
	if v == nil {
		return
	}
	if !cp.cfg.ReportUnhandledExceptions {
		cp.metrics.Inc(control.MetricFiltered)
		return
	}
	cp.enqueue(normalize.FromPanic(v, cp.wrapper), true)
}

// Flush drains the pending queue on the caller's context, one record per
// tick, until empty or the timeout elapses. Returns the number of
// records processed.
func (cp *CrashPipe) Flush(timeout time.Duration) int {
	deadline := time.Now().Add(timeout)
	processed := 0
	for time.Now().Before(deadline) {
		if !cp.drainer.Tick() {
			break
		}
		processed++
	}
	return processed
}

// SetConfirmationPredicate installs the "should await confirmation?"
// predicate on the gate.
func (cp *CrashPipe) SetConfirmationPredicate(p gate.Predicate) {
	cp.drainer.Gate().SetPredicate(p)
}

// NotifyUserConfirmation resolves one held report.
func (cp *CrashPipe) NotifyUserConfirmation(reportID string, d gate.Decision) error {
	return cp.drainer.Gate().Decide(reportID, d)
}

// NotifyUserConfirmationAll resolves every held report with one decision.
func (cp *CrashPipe) NotifyUserConfirmationAll(d gate.Decision) {
	cp.drainer.Gate().DecideAll(d)
}

// SetAttachmentProvider installs the attachment provider consulted for
// drained reports when attachment callbacks are enabled.
func (cp *CrashPipe) SetAttachmentProvider(p attach.Provider) {
	cp.drainer.Resolver().SetProvider(p)
}

// IsReportingUnhandledExceptions reports the effective unhandled-fault
// capture setting.
func (cp *CrashPipe) IsReportingUnhandledExceptions() bool {
	return cp.cfg.ReportUnhandledExceptions
}

// AttachmentCallbacksEnabled reports the effective attachments setting,
// after invalid-combination rejection.
func (cp *CrashPipe) AttachmentCallbacksEnabled() bool {
	return cp.drainer.Resolver().Enabled()
}

// Notifications exposes the three lifecycle registries: sendingReport,
// sentReport, failedToSendReport.
func (cp *CrashPipe) Notifications() *events.Notifications { return cp.notify }

// Control returns the configuration mirror.
func (cp *CrashPipe) Control() *control.ConfigStore { return cp.store }

// Metrics returns the pipeline counter registry.
func (cp *CrashPipe) Metrics() *control.MetricsRegistry { return cp.metrics }

// PendingCount returns the current pending-queue depth.
func (cp *CrashPipe) PendingCount() int { return cp.queue.Len() }

func (cp *CrashPipe) enqueue(record *api.Record, crash bool) {
	cp.metrics.Inc(control.MetricCaptured)
	cp.metrics.Inc(control.MetricQueued)
	cp.queue.Enqueue(&queue.Item{Record: record, Crash: crash})
}

func (cp *CrashPipe) submissionProperties(extra map[string]string) map[string]string {
	props := cp.host.Properties()
	for k, v := range cp.cfg.Properties {
		props[k] = v
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}
