package pipeline

import (
	"sync"

	"dupe-checker/internal/metrics"
)

// Queue is an unbounded multi-producer, single-consumer event queue. Push
// never blocks, so a slow consumer can not stall a worker.
type Queue struct {
	mu     sync.Mutex
	events []Event
	ready  chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push appends an event and wakes the consumer.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	depth := len(q.events)
	q.mu.Unlock()

	metrics.EventQueueDepth.Set(float64(depth))

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled after one or more pushes. A receive does not guarantee
// that events are still pending; always Drain.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Drain removes and returns every pending event in push order.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	events := q.events
	q.events = nil
	q.mu.Unlock()

	metrics.EventQueueDepth.Set(0)
	return events
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
