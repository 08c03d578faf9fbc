package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slim-sim/slim-sim/eidos"
	"github.com/slim-sim/slim-sim/sim/trace"
)

func TestPopulation_AddSubpopulation_Errors(t *testing.T) {
	s := newTestSimulation(t, nil)

	tests := []struct {
		name string
		id   int64
		size int
	}{
		{"duplicate id", 1, 10},
		{"negative id", -3, 10},
		{"empty", 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.pop.AddSubpopulation(tt.id, tt.size, 0)
			assert.True(t, errors.Is(err, eidos.ErrRange), "got %v", err)
		})
	}
}

func TestPopulation_Subpopulations_OrderedByID(t *testing.T) {
	s := newTestSimulation(t, nil)
	_, err := s.pop.AddSubpopulation(7, 5, 0)
	require.NoError(t, err)
	_, err = s.pop.AddSubpopulation(3, 5, 0)
	require.NoError(t, err)

	var ids []int64
	for _, sp := range s.pop.Subpopulations() {
		ids = append(ids, sp.ID)
	}
	assert.Equal(t, []int64{1, 3, 7}, ids)
}

func TestPopulation_AddSubpopulationFromSource_CopiesGenomes(t *testing.T) {
	// GIVEN a source in which every genome carries the same mutation
	s := newTestSimulation(t, nil)
	src := s.pop.Subpopulation(1)
	m := plantMutation(s, s.MutationType(1), 500, 0, src.Genomes()...)

	// WHEN a new subpopulation is split from it
	sp, err := s.pop.AddSubpopulationFromSource(2, src, 20, 0)
	require.NoError(t, err)

	// THEN every copied genome carries the mutation, independently of the source
	require.Len(t, sp.Genomes(), 40)
	for _, g := range sp.Genomes() {
		assert.True(t, g.Contains(m))
	}
	src.Genomes()[0].mutations = nil
	assert.True(t, sp.Genomes()[0].Contains(m), "split genomes must not alias the source")
}

func TestPopulation_AddSubpopulationFromSource_MatchesSex(t *testing.T) {
	// GIVEN a sexual source where only males carry a mutation
	s := newTestSimulation(t, func(c *Config) {
		c.Sex = true
		c.Subpopulations[0].SexRatio = 0.5
	})
	src := s.pop.Subpopulation(1)
	var maleGenomes []*Genome
	for i, ind := range src.Individuals() {
		if ind.Sex() == Male {
			maleGenomes = append(maleGenomes, src.Genomes()[2*i], src.Genomes()[2*i+1])
		}
	}
	m := plantMutation(s, s.MutationType(1), 10, 0, maleGenomes...)

	// WHEN split
	sp, err := s.pop.AddSubpopulationFromSource(2, src, 10, 0.5)
	require.NoError(t, err)

	// THEN males, and only males, carry it
	for i, ind := range sp.Individuals() {
		assert.Equal(t, ind.Sex() == Male, sp.Genomes()[2*i].Contains(m), "individual %d (%s)", i, ind.Sex())
	}
}

func TestPopulation_SetSize_ZeroRemovesSubpopulationAndMigration(t *testing.T) {
	s := newTestSimulation(t, nil)
	p2, err := s.pop.AddSubpopulation(2, 10, 0)
	require.NoError(t, err)
	p1 := s.pop.Subpopulation(1)
	require.NoError(t, s.pop.SetMigration(p1, 2, 0.1))

	require.NoError(t, s.pop.SetSize(p2, 0))

	assert.Nil(t, s.pop.Subpopulation(2))
	ids, _ := p1.MigrantFractions()
	assert.Empty(t, ids)
}

func TestPopulation_SetSize_ChangesNextGeneration(t *testing.T) {
	s := newTestSimulation(t, nil)
	sp := s.pop.Subpopulation(1)

	require.NoError(t, s.pop.SetSize(sp, 80))
	assert.Equal(t, 50, sp.ParentSize())
	assert.Equal(t, 80, sp.ChildSize())

	_, err := s.RunOneGeneration()
	require.NoError(t, err)
	assert.Equal(t, 80, sp.ParentSize())

	assert.True(t, errors.Is(s.pop.SetSize(sp, -1), eidos.ErrRange))
}

func TestPopulation_SetMigration_Validation(t *testing.T) {
	s := newTestSimulation(t, nil)
	_, err := s.pop.AddSubpopulation(2, 10, 0)
	require.NoError(t, err)
	_, err = s.pop.AddSubpopulation(3, 10, 0)
	require.NoError(t, err)
	p1 := s.pop.Subpopulation(1)

	assert.True(t, errors.Is(s.pop.SetMigration(p1, 1, 0.1), eidos.ErrRange), "self migration")
	assert.True(t, errors.Is(s.pop.SetMigration(p1, 9, 0.1), eidos.ErrRange), "unknown source")
	assert.True(t, errors.Is(s.pop.SetMigration(p1, 2, 1.5), eidos.ErrRange), "rate above 1")

	require.NoError(t, s.pop.SetMigration(p1, 2, 0.6))
	assert.True(t, errors.Is(s.pop.SetMigration(p1, 3, 0.5), eidos.ErrRange), "sum above 1")
	// replacing an existing rate is measured against the others only
	require.NoError(t, s.pop.SetMigration(p1, 2, 0.9))

	require.NoError(t, s.pop.SetMigration(p1, 2, 0))
	ids, _ := p1.MigrantFractions()
	assert.Empty(t, ids)
}

func TestPopulation_RemoveFixedMutations(t *testing.T) {
	// GIVEN one mutation carried by every genome, one by some, one by none
	s := newTestSimulation(t, func(c *Config) { c.Trace = string(trace.TraceLevelAll) })
	sp := s.pop.Subpopulation(1)
	genomes := sp.Genomes()
	mt := s.MutationType(1)

	fixed := plantMutation(s, mt, 300, 0.01, genomes...)
	segregating := plantMutation(s, mt, 200, 0, genomes[:10]...)
	lost := plantMutation(s, mt, 100, 0)

	// WHEN tallied and cleaned
	s.pop.TallyMutationReferences()
	assert.Equal(t, 100, s.pop.TotalGenomeCount())
	assert.Equal(t, 100, fixed.RefCount())
	assert.Equal(t, 10, segregating.RefCount())
	assert.Equal(t, 0, lost.RefCount())

	nFixed, nLost := s.pop.RemoveFixedMutations()

	// THEN the fixed mutation became a substitution and left every genome
	assert.Equal(t, 1, nFixed)
	assert.Equal(t, 1, nLost)
	require.Len(t, s.pop.Substitutions(), 1)
	sub := s.pop.Substitutions()[0]
	assert.Equal(t, fixed.ID, sub.ID)
	assert.Equal(t, int64(300), sub.Position)
	assert.Equal(t, int64(1), sub.FixationGeneration)
	for _, g := range genomes {
		assert.False(t, g.Contains(fixed))
	}

	// THEN only the segregating mutation remains registered
	assert.Equal(t, []*Mutation{segregating}, s.pop.MutationRegistry())
	assert.True(t, genomes[0].Contains(segregating))

	// THEN both fates were traced
	require.Len(t, s.Trace().Fixations, 1)
	assert.Equal(t, fixed.ID, s.Trace().Fixations[0].MutationID)
	require.Len(t, s.Trace().Losses, 1)
	assert.Equal(t, lost.ID, s.Trace().Losses[0].MutationID)

	assert.NotPanics(t, s.pop.CheckMutationRegistry)
}

func TestPopulation_RemoveFixedMutations_SubstitutionsSortedByPosition(t *testing.T) {
	s := newTestSimulation(t, nil)
	genomes := s.pop.Subpopulation(1).Genomes()
	mt := s.MutationType(1)
	plantMutation(s, mt, 900, 0, genomes...)
	plantMutation(s, mt, 50, 0, genomes...)
	plantMutation(s, mt, 400, 0, genomes...)

	s.pop.TallyMutationReferences()
	nFixed, _ := s.pop.RemoveFixedMutations()

	require.Equal(t, 3, nFixed)
	var positions []int64
	for _, sub := range s.pop.Substitutions() {
		positions = append(positions, sub.Position)
	}
	assert.Equal(t, []int64{50, 400, 900}, positions)
	assert.Empty(t, s.pop.MutationRegistry())
}

func TestPopulation_CheckMutationRegistry_ZombiePanics(t *testing.T) {
	s := newTestSimulation(t, nil)
	g := s.pop.Subpopulation(1).Genomes()[0]

	// GIVEN a genome carrying a mutation the registry does not know
	g.insertSorted(&Mutation{ID: 99, Type: s.MutationType(1), Position: 10})

	require.Panics(t, s.pop.CheckMutationRegistry)
}

func TestPopulation_SwapGenerations_RequiresValidChildren(t *testing.T) {
	s := newTestSimulation(t, nil)
	require.Panics(t, s.pop.SwapGenerations)
}

func TestPopulation_RemoveAllSubpopulationInfo_ReleasesSubstitutions(t *testing.T) {
	s := newTestSimulation(t, nil)
	plantMutation(s, s.MutationType(1), 10, 0, s.pop.Subpopulation(1).Genomes()...)
	s.pop.TallyMutationReferences()
	s.pop.RemoveFixedMutations()
	sub := s.pop.Substitutions()[0]
	require.Equal(t, 1, sub.RefCount())

	s.pop.RemoveAllSubpopulationInfo()

	assert.Empty(t, s.pop.Subpopulations())
	assert.Empty(t, s.pop.Substitutions())
	assert.Empty(t, s.pop.MutationRegistry())
	assert.True(t, sub.Freed())
}
