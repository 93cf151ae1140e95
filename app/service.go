// Package app wires the dataset, evaluator, swarm, metrics sinks and plan
// publisher into one optimisation run.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/loadshift/config"
	"github.com/kilianp07/loadshift/core/fitness"
	coremetrics "github.com/kilianp07/loadshift/core/metrics"
	"github.com/kilianp07/loadshift/core/model"
	coremon "github.com/kilianp07/loadshift/core/monitoring"
	"github.com/kilianp07/loadshift/core/schedule"
	"github.com/kilianp07/loadshift/core/swarm"
	"github.com/kilianp07/loadshift/infra/dataset"
	"github.com/kilianp07/loadshift/infra/logger"
	"github.com/kilianp07/loadshift/infra/metrics"
	"github.com/kilianp07/loadshift/infra/mqtt"
	"github.com/kilianp07/loadshift/internal/eventbus"
)

// Report is the outcome of one run.
type Report struct {
	RunID       string          `json:"run_id"`
	Seed        int64           `json:"seed"`
	Iterations  int             `json:"iterations"`
	Evaluations int             `json:"evaluations"`
	Duration    time.Duration   `json:"duration"`
	Best        []float64       `json:"best"`
	History     []float64       `json:"history"`
	Optimized   fitness.Result  `json:"optimized"`
	Baseline    fitness.Result  `json:"baseline"`
	Summary     fitness.Summary `json:"summary"`
	Plan        schedule.Plan   `json:"plan"`
}

// Service runs the optimiser for one household.
type Service struct {
	cfg        config.Config
	appliances []model.Appliance
	shiftable  []model.Task
	evaluator  *fitness.Evaluator
	sink       coremetrics.MetricsSink
	publisher  schedule.Publisher
	log        logger.Logger
	newRunID   func() string
	closers    []func()
}

// Option customises a Service.
type Option func(*Service)

// WithAppliances skips loading the dataset from cfg.Data.Path.
func WithAppliances(apps []model.Appliance) Option {
	return func(s *Service) { s.appliances = apps }
}

// WithSink replaces the sinks built from cfg.Metrics.
func WithSink(sink coremetrics.MetricsSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithPublisher replaces the MQTT publisher built from cfg.MQTT.
func WithPublisher(p schedule.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithRunID fixes the identifier generator, mainly for tests.
func WithRunID(f func() string) Option {
	return func(s *Service) { s.newRunID = f }
}

// New creates a Service from the configuration. Sinks and publisher not
// injected through options are built from cfg; an empty MQTT broker disables
// publishing.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	s := &Service{cfg: *cfg, newRunID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.New("service")
	}
	if s.appliances == nil {
		apps, err := dataset.Load(cfg.Data.Path)
		if err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		s.appliances = apps
	}
	fixed, shiftable, names := model.Split(s.appliances)
	ev, err := fitness.NewEvaluator(fixed, shiftable,
		fitness.WithTariff(cfg.Tariff.Schedule()),
		fitness.WithConfig(cfg.Fitness))
	if err != nil {
		return nil, fmt.Errorf("evaluator: %w", err)
	}
	s.evaluator = ev
	s.shiftable = shiftable
	s.log.Infof("loaded %d appliances, %d shiftable: %v", len(s.appliances), len(shiftable), names)

	if s.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sinks: %w", err)
		}
		s.sink = sink
	}
	if s.publisher == nil {
		if cfg.MQTT.Broker == "" {
			s.publisher = schedule.NopPublisher{}
		} else {
			pub, err := mqtt.NewPublisher(cfg.MQTT)
			if err != nil {
				return nil, fmt.Errorf("mqtt publisher: %w", err)
			}
			s.publisher = pub
			s.closers = append(s.closers, pub.Close)
		}
	}
	return s, nil
}

// Evaluator exposes the household evaluator.
func (s *Service) Evaluator() *fitness.Evaluator { return s.evaluator }

// Appliances returns the loaded appliances.
func (s *Service) Appliances() []model.Appliance { return s.appliances }

// Run optimises the household, compares the result with the preferred-hour
// baseline, records metrics and publishes the plan. A publish failure is
// returned together with the complete report.
func (s *Service) Run(ctx context.Context) (Report, error) {
	runID := s.newRunID()
	iterations := s.cfg.Optimizer.Iterations
	log := s.log
	if zl, ok := log.(*logger.ZerologLogger); ok {
		log = zl.With("run_id", runID)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(runCtx, addr, nil); err != nil {
				log.Errorf("prom server: %v", err)
			}
		}()
	}

	bus := eventbus.NewTypedWithBuffer[coremetrics.IterationEvent](iterations)
	collected := metrics.StartEventCollector(runCtx, bus, s.sink, log)
	observer := swarm.ObserverFunc(func(ev swarm.IterationEvent) {
		bus.Publish(coremetrics.IterationEvent{
			RunID:       runID,
			Iteration:   ev.Iteration,
			BestFitness: ev.BestFitness,
			MeanFitness: ev.MeanFitness,
			Diversity:   ev.Diversity,
			Evaluations: ev.Evaluations,
			Time:        time.Now(),
		})
	})
	opt, err := swarm.New(s.evaluator, s.evaluator.Dimensions(), s.cfg.Optimizer.Swarm,
		swarm.WithLogger(log), swarm.WithObserver(observer))
	if err != nil {
		bus.Close()
		return Report{}, err
	}

	start := time.Now()
	res, err := opt.Optimize(runCtx, iterations)
	bus.Close()
	<-collected
	if err != nil {
		coremon.CaptureException(err, map[string]string{"module": "app", "run_id": runID})
		return Report{}, fmt.Errorf("optimize: %w", err)
	}
	elapsed := time.Since(start)

	report, err := s.report(runID, res, elapsed)
	if err != nil {
		return Report{}, err
	}
	log.Infof("run %s: cost %.4f (baseline %.4f, savings %.2f%%), peak %.2f kW",
		runID, report.Optimized.Cost, report.Baseline.Cost, report.Summary.EfficiencyGainPct, report.Optimized.PeakLoad)

	if err := s.sink.RecordRun(s.runEvent(report)); err != nil {
		log.Warnf("record run: %v", err)
	}

	pubErr := s.publisher.Publish(ctx, report.Plan)
	if rec, ok := s.sink.(coremetrics.PublishRecorder); ok {
		if err := rec.RecordPublish(runID, len(report.Plan.Entries), pubErr); err != nil {
			log.Warnf("record publish: %v", err)
		}
	}
	if pubErr != nil {
		return report, fmt.Errorf("publish plan: %w", pubErr)
	}
	return report, nil
}

func (s *Service) report(runID string, res swarm.Result, elapsed time.Duration) (Report, error) {
	optimized, err := s.evaluator.Evaluate(res.Best)
	if err != nil {
		return Report{}, fmt.Errorf("evaluate best: %w", err)
	}
	baseline, err := s.evaluator.Evaluate(fitness.Baseline(s.shiftable))
	if err != nil {
		return Report{}, fmt.Errorf("evaluate baseline: %w", err)
	}
	plan, err := schedule.Build(runID, s.appliances, res.Best)
	if err != nil {
		return Report{}, fmt.Errorf("build plan: %w", err)
	}
	return Report{
		RunID:       runID,
		Seed:        res.Seed,
		Iterations:  len(res.History),
		Evaluations: res.Evaluations,
		Duration:    elapsed,
		Best:        res.Best,
		History:     res.History,
		Optimized:   optimized,
		Baseline:    baseline,
		Summary:     fitness.Compare(baseline, optimized),
		Plan:        plan,
	}, nil
}

func (s *Service) runEvent(r Report) coremetrics.RunEvent {
	return coremetrics.RunEvent{
		RunID:        r.RunID,
		Iterations:   r.Iterations,
		SwarmSize:    s.cfg.Optimizer.Swarm.SwarmSize,
		Evaluations:  r.Evaluations,
		Duration:     r.Duration,
		BestFitness:  r.Optimized.Fitness,
		Cost:         r.Optimized.Cost,
		Discomfort:   r.Optimized.Discomfort,
		Penalty:      r.Optimized.Penalty,
		PeakLoadKW:   r.Optimized.PeakLoad,
		HourlyLoad:   append([]float64(nil), r.Optimized.Load[:]...),
		BaselineCost: r.Baseline.Cost,
		Savings:      r.Summary.Savings,
		Time:         time.Now(),
	}
}

// Close releases the publisher connection.
func (s *Service) Close() error {
	for _, c := range s.closers {
		c()
	}
	s.closers = nil
	return nil
}
