package genetic

import "math/rand"

// Genome is a plan : one gene per turn of the horizon
type Genome []Gene

func NewGenome(horizon int, rnd *rand.Rand) Genome {
	g := make(Genome, horizon)
	for i := range g {
		g[i] = NewGene(rnd)
	}
	return g
}

func (g Genome) Clone() Genome {
	c := make(Genome, len(g))
	copy(c, g)
	return c
}

// Mutate returns a new genome, every gene mutated from its own parent gene
func (g Genome) Mutate(rnd *rand.Rand) Genome {
	m := make(Genome, len(g))
	for i, gene := range g {
		m[i] = gene.Mutate(rnd)
	}
	return m
}

// Shift drops the gene played this turn and appends next at the end
func (g Genome) Shift(next Gene) Genome {
	s := make(Genome, 0, len(g))
	if len(g) > 0 {
		s = append(s, g[1:]...)
	}
	return append(s, next)
}
