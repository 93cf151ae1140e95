package metrics

import "errors"

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the run to every sink. All sinks are attempted; their
// errors are joined.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordRun(ev))
	}
	return errors.Join(errs...)
}

// RecordIteration forwards to sinks implementing IterationRecorder.
func (m *MultiSink) RecordIteration(ev IterationEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(IterationRecorder); ok {
			errs = append(errs, rec.RecordIteration(ev))
		}
	}
	return errors.Join(errs...)
}

// RecordPublish forwards to sinks implementing PublishRecorder.
func (m *MultiSink) RecordPublish(runID string, entries int, perr error) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(PublishRecorder); ok {
			errs = append(errs, rec.RecordPublish(runID, entries, perr))
		}
	}
	return errors.Join(errs...)
}
