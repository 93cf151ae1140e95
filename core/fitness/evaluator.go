package fitness

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/loadshift/core/model"
	"github.com/kilianp07/loadshift/core/tariff"
)

var (
	// ErrAssignmentLength is returned when an assignment does not carry
	// exactly one start hour per shiftable task.
	ErrAssignmentLength = errors.New("assignment length does not match shiftable tasks")
	// ErrAssignmentValue is returned for NaN or infinite start hours.
	ErrAssignmentValue = errors.New("assignment contains a non-finite start hour")
)

// LoadProfile is the household draw in kW for each hour of the day.
type LoadProfile [tariff.Hours]float64

// Peak returns the highest hourly load.
func (l LoadProfile) Peak() float64 { return floats.Max(l[:]) }

// Total returns the energy in kWh drawn over the day.
func (l LoadProfile) Total() float64 { return floats.Sum(l[:]) }

// Result is the breakdown of one evaluation.
type Result struct {
	Fitness    float64     `json:"fitness"`
	Cost       float64     `json:"cost"`
	Discomfort float64     `json:"discomfort"`
	Penalty    float64     `json:"penalty"`
	PeakLoad   float64     `json:"peak_load_kw"`
	Load       LoadProfile `json:"hourly_load_kw"`
}

// Evaluator scores start-hour assignments for a fixed set of tasks. It holds
// no mutable state; Evaluate may be called concurrently.
type Evaluator struct {
	fixed     []model.Task
	shiftable []model.Task
	prices    tariff.Schedule
	cfg       Config
}

// Option customises an Evaluator.
type Option func(*Evaluator)

// WithTariff prices load with the given schedule instead of the default TOU tariff.
func WithTariff(s tariff.Schedule) Option {
	return func(e *Evaluator) { e.prices = s }
}

// WithConfig overrides the fitness weighting.
func WithConfig(c Config) Option {
	return func(e *Evaluator) { e.cfg = c }
}

// WithCircularDiscomfort measures deviation around the clock.
func WithCircularDiscomfort() Option {
	return func(e *Evaluator) { e.cfg.CircularDiscomfort = true }
}

// NewEvaluator validates the task lists and returns an Evaluator. The slices
// are copied so later changes by the caller do not leak into scoring.
func NewEvaluator(fixed, shiftable []model.Task, opts ...Option) (*Evaluator, error) {
	if err := model.ValidateTasks("fixed", fixed); err != nil {
		return nil, err
	}
	if err := model.ValidateTasks("shiftable", shiftable); err != nil {
		return nil, err
	}
	e := &Evaluator{
		fixed:     append([]model.Task(nil), fixed...),
		shiftable: append([]model.Task(nil), shiftable...),
		prices:    tariff.Default(),
		cfg:       DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.prices.Validate(); err != nil {
		return nil, err
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fitness config: %w", err)
	}
	return e, nil
}

// Dimensions returns the number of shiftable tasks, i.e. the assignment length.
func (e *Evaluator) Dimensions() int { return len(e.shiftable) }

// Shiftable returns a copy of the shiftable tasks.
func (e *Evaluator) Shiftable() []model.Task {
	return append([]model.Task(nil), e.shiftable...)
}

// Evaluate scores one assignment. assignment[i] is the start hour of the
// i-th shiftable task; it is rounded and wrapped into the day, so values
// outside [0,23] are accepted.
func (e *Evaluator) Evaluate(assignment []float64) (Result, error) {
	if len(assignment) != len(e.shiftable) {
		return Result{}, fmt.Errorf("%w: got %d want %d", ErrAssignmentLength, len(assignment), len(e.shiftable))
	}
	var res Result
	for _, t := range e.fixed {
		res.Cost += e.accumulate(&res.Load, t.PreferredStartHour, t)
	}
	for i, t := range e.shiftable {
		if math.IsNaN(assignment[i]) || math.IsInf(assignment[i], 0) {
			return Result{}, fmt.Errorf("%w: index %d", ErrAssignmentValue, i)
		}
		start := StartHour(assignment[i])
		res.Discomfort += e.deviation(start, t.PreferredStartHour)
		res.Cost += e.accumulate(&res.Load, start, t)
	}

	res.PeakLoad = res.Load.Peak()
	if res.PeakLoad > e.cfg.CapacityKW {
		// Only the single worst hour is penalised.
		res.Penalty = (res.PeakLoad - e.cfg.CapacityKW) * e.cfg.PenaltyFactor
	}
	res.Fitness = res.Cost + res.Discomfort*e.cfg.DiscomfortWeight + res.Penalty
	return res, nil
}

// Objective returns only the scalar fitness. It lets the Evaluator drive the
// swarm optimizer.
func (e *Evaluator) Objective(v []float64) (float64, error) {
	res, err := e.Evaluate(v)
	if err != nil {
		return math.Inf(1), err
	}
	return res.Fitness, nil
}

// accumulate adds the task's draw to every hour it covers and returns the
// cost of those hours.
func (e *Evaluator) accumulate(load *LoadProfile, start int, t model.Task) float64 {
	cost := 0.0
	for h := start; h < start+t.DurationHours; h++ {
		slot := tariff.Wrap(h)
		load[slot] += t.AvgPowerKW
		cost += t.AvgPowerKW * e.prices[slot]
	}
	return cost
}

func (e *Evaluator) deviation(start, preferred int) float64 {
	d := start - preferred
	if d < 0 {
		d = -d
	}
	if e.cfg.CircularDiscomfort && d > tariff.Hours/2 {
		d = tariff.Hours - d
	}
	return float64(d)
}

// StartHour converts a continuous position into the effective start hour:
// round half to even, then wrap into [0,23]. The hour is reduced modulo a
// day before the integer conversion so huge positions stay well defined.
func StartHour(x float64) int {
	return tariff.Wrap(int(math.Mod(math.RoundToEven(x), tariff.Hours)))
}

// Evaluate scores assignment with the default tariff and weighting. It
// returns the fitness, total cost, total discomfort and hourly load.
func Evaluate(assignment []float64, fixed, shiftable []model.Task) (fitness, cost, discomfort float64, load LoadProfile, err error) {
	e, err := NewEvaluator(fixed, shiftable)
	if err != nil {
		return 0, 0, 0, LoadProfile{}, err
	}
	res, err := e.Evaluate(assignment)
	if err != nil {
		return 0, 0, 0, LoadProfile{}, err
	}
	return res.Fitness, res.Cost, res.Discomfort, res.Load, nil
}
