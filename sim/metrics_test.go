package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slim-sim/slim-sim/sim/internal/testutil"
)

func TestMetrics_RecordAccumulatesTotals(t *testing.T) {
	m := NewMetrics()
	_, ok := m.Last()
	assert.False(t, ok)

	m.Record(GenerationStats{Generation: 1, Fixed: 2, Lost: 5, MeanFitness: 1})
	m.Record(GenerationStats{Generation: 2, Fixed: 1, Lost: 3, MeanFitness: 0.5})

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, int64(2), last.Generation)
	assert.Equal(t, 3, m.TotalFixed)
	assert.Equal(t, 8, m.TotalLost)
	testutil.AssertFloat64SliceEqual(t, "mean fitness series", []float64{1, 0.5}, m.MeanFitnessSeries(), 0)
}

func TestCollectStats_DiversityAndFitness(t *testing.T) {
	// GIVEN two individuals where one mutation (s = 0.5, h = 0.5) sits in
	// genome 0 only and another (neutral) in genomes 0 and 1
	s := newTestSimulation(t, func(c *Config) { c.Subpopulations[0].Size = 2 })
	g := s.pop.Subpopulation(1).Genomes()
	plantMutation(s, s.MutationType(1), 10, 0.5, g[0])
	plantMutation(s, s.MutationType(1), 20, 0, g[0], g[1])
	s.pop.TallyMutationReferences()
	s.pop.UpdateFitness()

	// WHEN stats are collected
	gs := s.collectStats(0, 0)

	// THEN the summaries follow from the frequencies 1/4 and 1/2
	assert.Equal(t, 1, gs.Subpops)
	assert.Equal(t, 2, gs.Individuals)
	assert.Equal(t, 2, gs.Segregating)
	testutil.AssertFloat64Equal(t, "diversity", 2*0.25*0.75+2*0.5*0.5, gs.Diversity, 1e-12)
	testutil.AssertFloat64Equal(t, "mean fitness", (1.25+1)/2, gs.MeanFitness, 1e-12)
	testutil.AssertFloat64Equal(t, "mutations per genome", 3.0/4, gs.MeanMutationsPerGenome, 1e-12)
	assert.Greater(t, gs.FitnessVariance, 0.0)
}

func TestMetrics_OneEntryPerGeneration(t *testing.T) {
	s := newTestSimulation(t, func(c *Config) { c.Generations = 4 })
	require.NoError(t, s.Run())

	require.Len(t, s.Metrics().Generations, 4)
	for i, gs := range s.Metrics().Generations {
		assert.Equal(t, int64(i+1), gs.Generation)
		assert.Equal(t, 50, gs.Individuals)
		// neutral model
		testutil.AssertFloat64Equal(t, "mean fitness", 1, gs.MeanFitness, 0)
	}
}
