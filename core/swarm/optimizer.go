package swarm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/loadshift/core/logger"
)

// ErrInvalidIterations is returned by Optimize for a non-positive iteration count.
var ErrInvalidIterations = errors.New("iterations must be positive")

// Objective scores a position. Lower values are better.
type Objective interface {
	Objective(v []float64) (float64, error)
}

// ObjectiveFunc adapts a plain function to Objective.
type ObjectiveFunc func(v []float64) (float64, error)

func (f ObjectiveFunc) Objective(v []float64) (float64, error) { return f(v) }

// IterationEvent summarises the swarm after one full sweep.
type IterationEvent struct {
	Iteration   int
	BestFitness float64
	MeanFitness float64
	// Diversity is the mean per-dimension population standard deviation of
	// the particle positions.
	Diversity   float64
	Evaluations int
}

// Observer is notified after every iteration. It runs on the optimizer's
// goroutine and must not block.
type Observer interface {
	ObserveIteration(IterationEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(IterationEvent)

func (f ObserverFunc) ObserveIteration(ev IterationEvent) { f(ev) }

// Result is the outcome of an optimisation run.
type Result struct {
	Best        []float64 `json:"best"`
	BestFitness float64   `json:"best_fitness"`
	// History[i] is the global best fitness after iteration i.
	History     []float64 `json:"history"`
	Evaluations int       `json:"evaluations"`
	Seed        int64     `json:"seed,omitempty"`
}

// Optimizer runs particle swarm optimisation for one objective. It is not
// safe for concurrent calls to Optimize because the random source is shared.
type Optimizer struct {
	obj      Objective
	dims     int
	cfg      Config
	rng      *rand.Rand
	seed     int64
	log      logger.Logger
	observer Observer

	evals int
}

// Option customises an Optimizer.
type Option func(*Optimizer)

// WithRand injects the random source used for initialisation and velocity
// coefficients. Config.Seed is ignored when set.
func WithRand(r *rand.Rand) Option {
	return func(o *Optimizer) { o.rng = r }
}

// WithLogger sets the logger used for run progress.
func WithLogger(l logger.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.log = l
		}
	}
}

// WithObserver registers an observer for per-iteration events.
func WithObserver(obs Observer) Option {
	return func(o *Optimizer) { o.observer = obs }
}

// New validates cfg and returns an Optimizer searching a dims-dimensional box.
func New(obj Objective, dims int, cfg Config, opts ...Option) (*Optimizer, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w: objective is nil", ErrInvalidConfig)
	}
	if dims < 0 {
		return nil, fmt.Errorf("%w: dimensions %d must not be negative", ErrInvalidConfig, dims)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &Optimizer{obj: obj, dims: dims, cfg: cfg, log: logger.Nop{}}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		o.seed = cfg.Seed
		if o.seed == 0 {
			o.seed = time.Now().UnixNano()
		}
		o.rng = rand.New(rand.NewSource(o.seed))
	}
	return o, nil
}

// Config returns the validated configuration.
func (o *Optimizer) Config() Config { return o.cfg }

// Optimize runs the swarm for exactly iterations sweeps and returns the best
// position found with the per-iteration history. The context is checked
// between iterations and, with several workers, before each evaluation.
func (o *Optimizer) Optimize(ctx context.Context, iterations int) (Result, error) {
	if iterations <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidIterations, iterations)
	}
	o.evals = 0
	start := time.Now()
	s, err := o.initialize(ctx)
	if err != nil {
		return Result{}, err
	}
	o.log.Debugw("swarm initialised", map[string]any{
		"particles":    len(s.particles),
		"dimensions":   o.dims,
		"best_fitness": s.bestFitness,
		"seed":         o.seed,
	})

	history := make([]float64, 0, iterations)
	for it := 0; it < iterations; it++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("iteration %d: %w", it, err)
		}
		if o.cfg.Workers > 1 {
			err = o.stepParallel(ctx, s)
		} else {
			err = o.stepSequential(s)
		}
		if err != nil {
			return Result{}, fmt.Errorf("iteration %d: %w", it, err)
		}
		history = append(history, s.bestFitness)
		if o.observer != nil {
			o.observer.ObserveIteration(o.event(it, s))
		}
	}

	o.log.Infof("swarm finished %d iterations in %s: best fitness %.4f after %d evaluations",
		iterations, time.Since(start).Round(time.Millisecond), s.bestFitness, o.evals)
	return Result{
		Best:        append([]float64(nil), s.bestPos...),
		BestFitness: s.bestFitness,
		History:     history,
		Evaluations: o.evals,
		Seed:        o.seed,
	}, nil
}

// initialize draws uniform positions inside the bounds and small random
// velocities, evaluates them and seeds the personal and global bests.
func (o *Optimizer) initialize(ctx context.Context) (*state, error) {
	s := newState(o.cfg.SwarmSize, o.dims)
	span := o.cfg.UpperBound - o.cfg.LowerBound
	for i := range s.particles {
		p := &s.particles[i]
		for d := 0; d < o.dims; d++ {
			p.Position[d] = o.cfg.LowerBound + span*o.rng.Float64()
			if o.cfg.InitialVelocity > 0 {
				p.Velocity[d] = (2*o.rng.Float64() - 1) * o.cfg.InitialVelocity
			}
		}
	}
	fits, err := o.evaluateAll(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("initial evaluation: %w", err)
	}
	for i := range s.particles {
		p := &s.particles[i]
		p.Fitness = fits[i]
		p.BestFitness = fits[i]
		copy(p.BestPosition, p.Position)
		s.offer(i)
	}
	if s.bestIndex < 0 {
		// Every particle scored +Inf; keep the first as the reference point.
		s.bestIndex = 0
		copy(s.bestPos, s.particles[0].BestPosition)
	}
	return s, nil
}

// stepSequential moves, evaluates and offers each particle in index order, so
// later particles already follow a global best improved earlier in the sweep.
func (o *Optimizer) stepSequential(s *state) error {
	for i := range s.particles {
		p := &s.particles[i]
		o.move(p, s.bestPos)
		f, err := o.evaluate(p.Position)
		if err != nil {
			return fmt.Errorf("particle %d: %w", i, err)
		}
		if p.update(f) {
			s.offer(i)
		}
	}
	return nil
}

// stepParallel moves every particle against the iteration-start global best,
// evaluates all of them concurrently, then reduces in index order.
func (o *Optimizer) stepParallel(ctx context.Context, s *state) error {
	for i := range s.particles {
		o.move(&s.particles[i], s.bestPos)
	}
	fits, err := o.evaluateAll(ctx, s)
	if err != nil {
		return err
	}
	for i := range s.particles {
		if s.particles[i].update(fits[i]) {
			s.offer(i)
		}
	}
	return nil
}

// evaluateAll scores the current position of every particle, concurrently
// when more than one worker is configured.
func (o *Optimizer) evaluateAll(ctx context.Context, s *state) ([]float64, error) {
	fits := make([]float64, len(s.particles))
	if o.cfg.Workers <= 1 {
		for i := range s.particles {
			f, err := o.evaluate(s.particles[i].Position)
			if err != nil {
				return nil, fmt.Errorf("particle %d: %w", i, err)
			}
			fits[i] = f
		}
		return fits, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for i := range s.particles {
		pos := s.particles[i].Position
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := o.obj.Objective(pos)
			if err != nil {
				return fmt.Errorf("particle %d: %w", i, err)
			}
			fits[i] = sanitize(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	o.evals += len(s.particles)
	return fits, nil
}

func (o *Optimizer) evaluate(pos []float64) (float64, error) {
	f, err := o.obj.Objective(pos)
	o.evals++
	if err != nil {
		return math.Inf(1), err
	}
	return sanitize(f), nil
}

// move applies the velocity update v = w*v + c1*r1*(pbest-x) + c2*r2*(gbest-x)
// with fresh coefficients per dimension, then x += v and the boundary policy.
func (o *Optimizer) move(p *Particle, globalBest []float64) {
	for d := range p.Position {
		r1 := o.rng.Float64()
		r2 := o.rng.Float64()
		v := o.cfg.Inertia*p.Velocity[d] +
			o.cfg.Cognitive*r1*(p.BestPosition[d]-p.Position[d]) +
			o.cfg.Social*r2*(globalBest[d]-p.Position[d])
		if vmax := o.cfg.MaxVelocity; vmax > 0 {
			v = math.Max(-vmax, math.Min(vmax, v))
		}
		p.Velocity[d] = v
		p.Position[d] += v
		o.confine(p, d)
	}
}

func (o *Optimizer) confine(p *Particle, d int) {
	lo, hi := o.cfg.LowerBound, o.cfg.UpperBound
	x := p.Position[d]
	if x >= lo && x <= hi {
		return
	}
	switch o.cfg.Boundary {
	case BoundaryReflect:
		if x < lo {
			x = lo + (lo - x)
		} else {
			x = hi - (x - hi)
		}
		p.Velocity[d] = -p.Velocity[d]
		// A step longer than the box can still overshoot after one mirror.
		x = math.Max(lo, math.Min(hi, x))
	default:
		x = math.Max(lo, math.Min(hi, x))
		p.Velocity[d] = 0
	}
	p.Position[d] = x
}

func (o *Optimizer) event(it int, s *state) IterationEvent {
	fits := make([]float64, len(s.particles))
	for i := range s.particles {
		fits[i] = s.particles[i].Fitness
	}
	ev := IterationEvent{
		Iteration:   it,
		BestFitness: s.bestFitness,
		MeanFitness: stat.Mean(fits, nil),
		Evaluations: o.evals,
	}
	if o.dims > 0 {
		col := make([]float64, len(s.particles))
		total := 0.0
		for d := 0; d < o.dims; d++ {
			for i := range s.particles {
				col[i] = s.particles[i].Position[d]
			}
			total += stat.PopStdDev(col, nil)
		}
		ev.Diversity = total / float64(o.dims)
	}
	return ev
}

// sanitize maps NaN to +Inf so it never wins a comparison.
func sanitize(f float64) float64 {
	if math.IsNaN(f) {
		return math.Inf(1)
	}
	return f
}
