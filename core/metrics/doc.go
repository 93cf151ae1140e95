// Package metrics defines the telemetry emitted by optimisation runs. Sinks
// such as PromSink and InfluxSink in infra/metrics record a RunEvent once per
// run and, when they implement IterationRecorder, one IterationEvent per
// swarm sweep. Sinks are built from configuration through a registry;
// NewMetricsSink returns a MultiSink automatically when several are configured.
package metrics
