package events_test

import (
	"testing"

	"github.com/momentics/crashpipe/api"
	"github.com/momentics/crashpipe/events"
)

func TestRegistry_OrderAndRemoval(t *testing.T) {
	r := events.NewRegistry[*api.Report]("test")
	var order []int
	h1 := r.Subscribe(func(*api.Report) { order = append(order, 1) })
	h2 := r.Subscribe(func(*api.Report) { order = append(order, 2) })
	r.Subscribe(func(*api.Report) { order = append(order, 3) })

	r.Emit(&api.Report{ID: "a"})
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("expected registration order [1 2 3], got %v", order)
	}

	if !r.Unsubscribe(h2) {
		t.Fatal("Unsubscribe(h2) failed")
	}
	if r.Unsubscribe(h2) {
		t.Error("double Unsubscribe should report false")
	}
	order = nil
	r.Emit(&api.Report{ID: "b"})
	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Fatalf("expected [1 3] after removal, got %v", order)
	}
	_ = h1
}

func TestRegistry_PanicIsolated(t *testing.T) {
	r := events.NewRegistry[*api.Report]("test")
	reached := false
	r.Subscribe(func(*api.Report) { panic("bad subscriber") })
	r.Subscribe(func(*api.Report) { reached = true })

	r.Emit(&api.Report{ID: "x"})
	if !reached {
		t.Error("panic in earlier subscriber must not stop later ones")
	}
}

func TestNotifications_Bundle(t *testing.T) {
	n := events.NewNotifications()
	var failures []events.Failure
	n.Failed.Subscribe(func(f events.Failure) { failures = append(failures, f) })
	n.Failed.Emit(events.Failure{Report: &api.Report{ID: "r1"}, Err: api.ErrInvalidInput})
	if len(failures) != 1 || failures[0].Report.ID != "r1" {
		t.Fatalf("failure notification not delivered: %v", failures)
	}
}
