package view

import (
	"context"

	"dupe-checker/internal/logging"
	"dupe-checker/internal/metrics"
	"dupe-checker/internal/pipeline"
)

// Run applies queued events to the model until ctx is cancelled. It is the
// only writer of the model. When hub is non-nil, changes are also broadcast.
// Events still queued when ctx ends are applied before Run returns.
func Run(ctx context.Context, queue *pipeline.Queue, model *Model, hub *Hub) {
	apply := model.Apply
	if hub != nil {
		apply = hub.Dispatch
	}

	dispatch := func() {
		for _, ev := range queue.Drain() {
			metrics.EventsDispatchedTotal.WithLabelValues(ev.Type()).Inc()
			if _, ok := apply(ev); !ok {
				logging.Debug("Dropped stale %s event", ev.Type())
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			dispatch()
			return
		case <-queue.Ready():
			dispatch()
		}
	}
}
