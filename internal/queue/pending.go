// File: internal/queue/pending.go
// Package queue provides the pending-record queue crossing the capture
// boundary.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This is the only shared resource between an arbitrary capture context
// and the primary delivery context. Multi-producer, single-consumer,
// strict FIFO through a single serialization point.

package queue

import (
	"sync"

	fifo "github.com/eapache/queue"

	"github.com/momentics/crashpipe/api"
)

// Item is one queued capture awaiting the drain scheduler.
type Item struct {
	Record *api.Record
	Crash  bool // fatal/unhandled fault vs. handled or log-originated error
}

// Pending is a mutation-guarded FIFO of captured records. Enqueue and
// TryDequeue are atomic with respect to each other; no record is lost or
// duplicated under concurrent producers.
type Pending struct {
	mu   sync.Mutex
	q    *fifo.Queue
	wake func()
}

// NewPending creates an empty queue. wake, if non-nil, is invoked after
// every enqueue, outside the queue lock, so an idle drainer can be
// reactivated. It must be cheap and non-blocking.
func NewPending(wake func()) *Pending {
	return &Pending{q: fifo.New(), wake: wake}
}

// Enqueue appends an item. Safe from any goroutine.
func (p *Pending) Enqueue(item *Item) {
	p.mu.Lock()
	p.q.Add(item)
	p.mu.Unlock()
	if p.wake != nil {
		p.wake()
	}
}

// TryDequeue removes and returns the oldest item, or ok=false when the
// queue is empty.
func (p *Pending) TryDequeue() (*Item, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.q.Length() == 0 {
		return nil, false
	}
	return p.q.Remove().(*Item), true
}

// Len returns the current queue depth.
func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.q.Length()
}
