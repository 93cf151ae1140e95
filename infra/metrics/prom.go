package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/loadshift/core/metrics"
)

// PromSink records optimisation runs in Prometheus metrics.
type PromSink struct {
	runs        prometheus.Counter
	evaluations prometheus.Counter
	duration    prometheus.Histogram
	fitness     *prometheus.GaugeVec
	hourly      *prometheus.GaugeVec
	iteration   *prometheus.GaugeVec
	publishes   *prometheus.CounterVec
}

// NewPromSink registers optimisation metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.runs, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loadshift_runs_total",
		Help: "Number of completed optimisation runs",
	})); err != nil {
		return nil, err
	}
	if s.evaluations, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loadshift_fitness_evaluations_total",
		Help: "Fitness evaluations performed by the swarm",
	})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "loadshift_run_duration_seconds",
		Help:    "Wall time of an optimisation run",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})); err != nil {
		return nil, err
	}
	if s.fitness, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "loadshift_last_run",
		Help: "Breakdown of the last run's best schedule",
	}, []string{"term"})); err != nil {
		return nil, err
	}
	if s.hourly, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "loadshift_hourly_load_kw",
		Help: "Household load per hour of the last optimised schedule",
	}, []string{"hour"})); err != nil {
		return nil, err
	}
	if s.iteration, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "loadshift_swarm_iteration",
		Help: "Swarm state after the latest iteration",
	}, []string{"stat"})); err != nil {
		return nil, err
	}
	if s.publishes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loadshift_plan_publish_total",
		Help: "Plan publications by result",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// RecordRun updates counters and the last-run gauges.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.Inc()
	s.evaluations.Add(float64(ev.Evaluations))
	s.duration.Observe(ev.Duration.Seconds())
	s.fitness.WithLabelValues("fitness").Set(ev.BestFitness)
	s.fitness.WithLabelValues("cost").Set(ev.Cost)
	s.fitness.WithLabelValues("discomfort").Set(ev.Discomfort)
	s.fitness.WithLabelValues("penalty").Set(ev.Penalty)
	s.fitness.WithLabelValues("peak_load_kw").Set(ev.PeakLoadKW)
	s.fitness.WithLabelValues("savings").Set(ev.Savings)
	for h, kw := range ev.HourlyLoad {
		s.hourly.WithLabelValues(strconv.Itoa(h)).Set(kw)
	}
	return nil
}

// RecordIteration exposes the convergence state of the running swarm.
func (s *PromSink) RecordIteration(ev coremetrics.IterationEvent) error {
	s.iteration.WithLabelValues("iteration").Set(float64(ev.Iteration))
	s.iteration.WithLabelValues("best_fitness").Set(ev.BestFitness)
	s.iteration.WithLabelValues("mean_fitness").Set(ev.MeanFitness)
	s.iteration.WithLabelValues("diversity").Set(ev.Diversity)
	return nil
}

// RecordPublish counts plan publications.
func (s *PromSink) RecordPublish(_ string, _ int, err error) error {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.publishes.WithLabelValues(result).Inc()
	return nil
}
