package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testConfig is a small neutral Wright-Fisher recipe: one subpopulation of
// 50 hermaphrodites, one neutral mutation type, 10 generations.
func testConfig() *Config {
	return &Config{
		Seed:        42,
		Generations: 10,
		Chromosome: ChromosomeConfig{
			LastPosition:      99999,
			MutationRate:      1e-7,
			RecombinationRate: 1e-8,
		},
		MutationTypes: []MutationTypeConfig{
			{ID: 1, Dominance: 0.5, DFE: DFEFixed, Params: []float64{0}, Weight: 1},
		},
		Subpopulations: []SubpopConfig{{ID: 1, Size: 50}},
	}
}

// newTestSimulation builds a simulation from testConfig after applying edit.
func newTestSimulation(t *testing.T, edit func(*Config)) *Simulation {
	t.Helper()
	cfg := testConfig()
	if edit != nil {
		edit(cfg)
	}
	s, err := NewSimulation(cfg)
	require.NoError(t, err)
	return s
}

// plantMutation registers a mutation originating in p1 and inserts it into
// every genome in gs.
func plantMutation(s *Simulation, mt *MutationType, pos int64, coeff float64, gs ...*Genome) *Mutation {
	m := s.pop.registerMutation(mt, pos, coeff, 1)
	for _, g := range gs {
		g.insertSorted(m)
	}
	return m
}

// founder returns a detached individual with pedigree ID id and no
// recorded ancestry.
func founder(id int64) *Individual {
	ind := newIndividual(nil, 0, Hermaphrodite)
	ind.setPedigree(id, nil, nil)
	return ind
}

// offspring returns a detached individual with pedigree ID id born to p1
// and p2.
func offspring(id int64, p1, p2 *Individual) *Individual {
	ind := newIndividual(nil, 0, Hermaphrodite)
	ind.setPedigree(id, p1, p2)
	return ind
}
