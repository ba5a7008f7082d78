package genetic

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/a-bouts/pod-racer/race"
)

const (
	DefaultPopulation = 8
	DefaultHorizon    = 6

	progressScore = 10000.0
	distanceScore = 5000.0
	speedFactor   = 10.0
)

type Options struct {
	Population int
	Horizon    int
	// Shield lets genes decode into SHIELD instructions
	Shield bool
}

func DefaultOptions() Options {
	return Options{
		Population: DefaultPopulation,
		Horizon:    DefaultHorizon,
	}
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Stats counts the work of the last search, plus the Score calls made since
type Stats struct {
	Generations int    `json:"generations" msgpack:"generations"`
	Simulations uint64 `json:"simulations" msgpack:"simulations"`
}

// Engine keeps a population of plans alive from one turn to the next
type Engine struct {
	opts       Options
	rnd        *rand.Rand
	population []Genome

	generations int
	ops         uint64
}

func NewEngine(opts Options, rnd *rand.Rand) *Engine {
	if opts.Population <= 0 {
		opts.Population = DefaultPopulation
	}
	if opts.Horizon <= 0 {
		opts.Horizon = DefaultHorizon
	}

	e := &Engine{
		opts:       opts,
		rnd:        rnd,
		population: make([]Genome, opts.Population),
	}
	for i := range e.population {
		e.population[i] = NewGenome(opts.Horizon, rnd)
	}

	return e
}

func (e *Engine) Options() Options {
	return e.opts
}

// Population returns a copy of the current generation
func (e *Engine) Population() []Genome {
	p := make([]Genome, len(e.population))
	for i, g := range e.population {
		p[i] = g.Clone()
	}
	return p
}

// Best is the genome kept by the last generation
func (e *Engine) Best() Genome {
	return e.population[0]
}

func (e *Engine) Stats() Stats {
	return Stats{
		Generations: e.generations,
		Simulations: atomic.LoadUint64(&e.ops),
	}
}

// Score plays the genome from the leader position and rates where it ends up
func (e *Engine) Score(g Genome, s *race.State) float64 {
	leader := s.Leader()

	final := leader
	for _, gene := range g {
		final = final.Simulate(gene.Decode(e.opts.Shield), s.Course)
	}
	atomic.AddUint64(&e.ops, uint64(len(g)))

	target := s.Course.Checkpoint(final.Next)

	score := distanceScore - final.Position.Distance(target)
	if final.Next > leader.Next {
		score = progressScore
	}

	return score + speedFactor*final.Velocity.ProjectedLengthOn(target.Sub(final.Position))
}

// RunGeneration scores the population, keeps the best genome first and
// replaces every other genome by a mutation of it
func (e *Engine) RunGeneration(s *race.State) {
	best := 0
	bestScore := 0.0
	for i, g := range e.population {
		score := e.Score(g, s)
		if i == 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	top := e.population[best]
	next := make([]Genome, len(e.population))
	next[0] = top
	for i := 1; i < len(next); i++ {
		next[i] = top.Mutate(e.rnd)
	}
	e.population = next
}

// Search runs generations until the clock reaches the deadline. When the
// deadline is already gone the first genome is returned as is.
func (e *Engine) Search(s *race.State, deadline time.Time, clock Clock) Genome {
	e.generations = 0
	atomic.StoreUint64(&e.ops, 0)
	for clock.Now().Before(deadline) {
		e.RunGeneration(s)
		e.generations++
	}

	return e.Best()
}

// AdvanceTurn consumes the first gene of every genome and appends a fresh one
func (e *Engine) AdvanceTurn() {
	for i, g := range e.population {
		e.population[i] = g.Shift(NewGene(e.rnd))
	}
}
