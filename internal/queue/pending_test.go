package queue_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/momentics/crashpipe/api"
	"github.com/momentics/crashpipe/internal/queue"
)

func TestPending_FIFO(t *testing.T) {
	p := queue.NewPending(nil)
	for i := 0; i < 3; i++ {
		p.Enqueue(&queue.Item{Record: &api.Record{Message: fmt.Sprintf("r%d", i+1)}})
	}
	for i := 0; i < 3; i++ {
		item, ok := p.TryDequeue()
		if !ok {
			t.Fatalf("expected item %d", i+1)
		}
		if got, want := item.Record.Message, fmt.Sprintf("r%d", i+1); got != want {
			t.Errorf("dequeue %d: got %q, want %q", i, got, want)
		}
	}
	if _, ok := p.TryDequeue(); ok {
		t.Error("expected empty queue")
	}
}

func TestPending_WakeCallback(t *testing.T) {
	wakes := 0
	p := queue.NewPending(func() { wakes++ })
	p.Enqueue(&queue.Item{Record: &api.Record{Message: "x"}})
	p.Enqueue(&queue.Item{Record: &api.Record{Message: "y"}})
	if wakes != 2 {
		t.Errorf("expected 2 wakes, got %d", wakes)
	}
}

func TestPending_ConcurrentProducers(t *testing.T) {
	p := queue.NewPending(nil)
	producers := 8
	perProducer := 1000

	var wg sync.WaitGroup
	for pid := 0; pid < producers; pid++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				p.Enqueue(&queue.Item{Record: &api.Record{
					Kind:    fmt.Sprintf("p%d", pid),
					Message: fmt.Sprintf("%d", i),
				}})
			}
		}(pid)
	}
	wg.Wait()

	if got, want := p.Len(), producers*perProducer; got != want {
		t.Fatalf("queue depth: got %d, want %d", got, want)
	}

	// Per-producer FIFO ordering survives interleaving: each producer's
	// items drain in its own enqueue order.
	lastSeen := make(map[string]int)
	total := 0
	for {
		item, ok := p.TryDequeue()
		if !ok {
			break
		}
		total++
		var seq int
		fmt.Sscanf(item.Record.Message, "%d", &seq)
		if prev, seen := lastSeen[item.Record.Kind]; seen && seq != prev+1 {
			t.Fatalf("producer %s reordered: %d after %d", item.Record.Kind, seq, prev)
		}
		lastSeen[item.Record.Kind] = seq
	}
	if total != producers*perProducer {
		t.Errorf("drained %d items, want %d (no loss, no duplication)", total, producers*perProducer)
	}
}
