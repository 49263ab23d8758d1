// Package queue provides the FIFO channel between the producers emitting job
// lifecycle events and the single recorder goroutine draining them.
package queue

import (
	"context"
	"sync"

	"github.com/hitesh22rana/historian/internal/model"
)

// EventQueue is an unbounded FIFO safe for concurrent insertion by any number
// of producers and removal by exactly one consumer. Insertion never blocks, so
// producers can never deadlock against a stopping consumer.
type EventQueue struct {
	mu     sync.Mutex
	items  []*model.Event
	notify chan struct{}
}

// New creates an empty queue.
func New() *EventQueue {
	return &EventQueue{
		notify: make(chan struct{}, 1),
	}
}

// Put appends the event to the tail of the queue. It never blocks and never
// fails; acceptance is unconditional so no event is lost under backpressure.
func (q *EventQueue) Put(event *model.Event) {
	q.mu.Lock()
	q.items = append(q.items, event)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// TryTake removes and returns the head of the queue without blocking.
func (q *EventQueue) TryTake() (*model.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}

	event := q.items[0]
	q.items = q.items[1:]
	return event, true
}

// Take removes and returns the head of the queue, blocking while the queue is
// empty. The wait is scoped to ctx and nothing else: cancelling ctx releases
// the wait promptly with ctx.Err(). This is the only cancellable operation in
// the recorder pipeline.
func (q *EventQueue) Take(ctx context.Context) (*model.Event, error) {
	for {
		if event, ok := q.TryTake(); ok {
			return event, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		}
	}
}

// Drain removes and returns every event queued at the moment of the call, in
// FIFO order. It never waits for more events to arrive.
func (q *EventQueue) Drain() []*model.Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
