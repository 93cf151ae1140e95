package swarm

import "math"

// Particle is one candidate position with its velocity and best-known point.
type Particle struct {
	Position     []float64
	Velocity     []float64
	Fitness      float64
	BestPosition []float64
	BestFitness  float64
}

func newParticle(dims int) Particle {
	return Particle{
		Position:     make([]float64, dims),
		Velocity:     make([]float64, dims),
		BestPosition: make([]float64, dims),
		Fitness:      math.Inf(1),
		BestFitness:  math.Inf(1),
	}
}

// update records a freshly evaluated fitness and reports whether it improved
// the particle's own best.
func (p *Particle) update(fitness float64) bool {
	p.Fitness = fitness
	if fitness < p.BestFitness {
		p.BestFitness = fitness
		copy(p.BestPosition, p.Position)
		return true
	}
	return false
}

// state is the swarm arena: particles are addressed by index and the global
// best is held by value so no particle aliases it.
type state struct {
	particles   []Particle
	bestPos     []float64
	bestFitness float64
	bestIndex   int
}

func newState(size, dims int) *state {
	s := &state{
		particles:   make([]Particle, size),
		bestPos:     make([]float64, dims),
		bestFitness: math.Inf(1),
		bestIndex:   -1,
	}
	for i := range s.particles {
		s.particles[i] = newParticle(dims)
	}
	return s
}

// offer compares particle i's personal best against the global best.
func (s *state) offer(i int) {
	p := &s.particles[i]
	if p.BestFitness < s.bestFitness {
		s.bestFitness = p.BestFitness
		s.bestIndex = i
		copy(s.bestPos, p.BestPosition)
	}
}
