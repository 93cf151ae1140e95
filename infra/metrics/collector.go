package metrics

import (
	"context"

	corelogger "github.com/kilianp07/loadshift/core/logger"
	coremetrics "github.com/kilianp07/loadshift/core/metrics"
	"github.com/kilianp07/loadshift/internal/eventbus"
)

// StartEventCollector forwards swarm iteration events from the bus to sinks
// implementing IterationRecorder. It stops when ctx is canceled or the bus
// is closed. The returned channel is closed once the collector has exited.
// The first recording error is logged; later ones are counted and reported
// when the collector stops.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[coremetrics.IterationEvent], sink coremetrics.MetricsSink, log corelogger.Logger) <-chan struct{} {
	if log == nil {
		log = corelogger.Nop{}
	}
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.IterationRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		failures := 0
		defer close(done)
		defer bus.Unsubscribe(sub)
		defer func() {
			if failures > 1 {
				log.Warnf("record iteration: %d failures", failures)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := rec.RecordIteration(ev); err != nil {
					failures++
					if failures == 1 {
						log.Warnf("record iteration %d: %v", ev.Iteration, err)
					}
				}
			}
		}
	}()
	return done
}
