// File: events/registry.go
// Package events provides ordered, lock-guarded subscriber registries for
// report lifecycle notifications.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Each notification kind owns its registry and its lock. Subscribers are
// invoked in registration order; a panicking subscriber is isolated and
// logged, never propagated into the delivery pipeline.

package events

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/momentics/crashpipe/api"
)

// Handle identifies a subscription for later removal.
type Handle uint64

type entry[T any] struct {
	id Handle
	fn func(T)
}

// Registry is an ordered set of subscribers for one notification kind.
type Registry[T any] struct {
	mu     sync.Mutex
	nextID Handle
	subs   []entry[T]
	log    *logrus.Entry
}

// NewRegistry creates an empty registry named for log attribution.
func NewRegistry[T any](name string) *Registry[T] {
	return &Registry[T]{log: logrus.WithField("component", "events."+name)}
}

// Subscribe appends fn and returns a handle for Unsubscribe.
func (r *Registry[T]) Subscribe(fn func(T)) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.subs = append(r.subs, entry[T]{id: r.nextID, fn: fn})
	return r.nextID
}

// Unsubscribe removes the subscription under h. Returns false when the
// handle is unknown or already removed.
func (r *Registry[T]) Unsubscribe(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.subs {
		if e.id == h {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the current subscriber count.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Emit invokes every subscriber in registration order. The subscriber
// list is snapshotted under the lock; callbacks run outside it so a slow
// subscriber cannot block add/remove.
func (r *Registry[T]) Emit(v T) {
	r.mu.Lock()
	snapshot := make([]entry[T], len(r.subs))
	copy(snapshot, r.subs)
	r.mu.Unlock()

	for _, e := range snapshot {
		r.invoke(e, v)
	}
}

func (r *Registry[T]) invoke(e entry[T], v T) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("panic", rec).Warn("subscriber panicked, isolated")
		}
	}()
	e.fn(v)
}

// Failure pairs a report with the sink error that rejected it.
type Failure struct {
	Report *api.Report
	Err    error
}

// Notifications bundles the three report lifecycle registries.
type Notifications struct {
	Sending *Registry[*api.Report] // about to be handed to the sink
	Sent    *Registry[*api.Report] // sink accepted the submission
	Failed  *Registry[Failure]     // sink rejected the submission
}

// NewNotifications creates the three empty registries.
func NewNotifications() *Notifications {
	return &Notifications{
		Sending: NewRegistry[*api.Report]("sending"),
		Sent:    NewRegistry[*api.Report]("sent"),
		Failed:  NewRegistry[Failure]("failed"),
	}
}
