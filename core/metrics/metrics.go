package metrics

import "time"

// RunEvent summarises one completed optimisation run.
type RunEvent struct {
	RunID       string
	Iterations  int
	SwarmSize   int
	Evaluations int
	Duration    time.Duration

	BestFitness float64
	Cost        float64
	Discomfort  float64
	Penalty     float64
	PeakLoadKW  float64
	HourlyLoad  []float64

	BaselineCost float64
	Savings      float64

	Time time.Time
}

// IterationEvent is the swarm state after one sweep.
type IterationEvent struct {
	RunID       string
	Iteration   int
	BestFitness float64
	MeanFitness float64
	Diversity   float64
	Evaluations int
	Time        time.Time
}

// MetricsSink records run summaries.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// IterationRecorder is implemented by sinks that track convergence.
type IterationRecorder interface {
	RecordIteration(ev IterationEvent) error
}

// PublishRecorder is implemented by sinks that track plan publication.
type PublishRecorder interface {
	RecordPublish(runID string, entries int, err error) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error               { return nil }
func (NopSink) RecordIteration(IterationEvent) error   { return nil }
func (NopSink) RecordPublish(string, int, error) error { return nil }
