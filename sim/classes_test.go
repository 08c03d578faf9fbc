package sim

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slim-sim/slim-sim/eidos"
)

func call(t *testing.T, s *Simulation, e eidos.ObjectElement, method string, args ...eidos.Value) (eidos.Value, error) {
	t.Helper()
	return eidos.ExecuteMethod(e, eidos.GlobalStringID(method), args, s.ExecContext())
}

func get(t *testing.T, e eidos.ObjectElement, property string) eidos.Value {
	t.Helper()
	v, err := eidos.GetValueForMember(e, eidos.GlobalStringID(property))
	require.NoError(t, err)
	return v
}

func TestClasses_Signatures(t *testing.T) {
	tests := []struct {
		class  *eidos.Class
		method string
		want   string
	}{
		{IndividualClass, "containsMutations", "- (logical)containsMutations(object<Mutation> mutations)"},
		{IndividualClass, "countOfMutationsOfType", "- (integer$)countOfMutationsOfType(io<MutationType>$ mutType)"},
		{IndividualClass, "relatedness", "- (float)relatedness(object<Individual> individuals)"},
		{IndividualClass, "uniqueMutationsOfType", "- (object<Mutation>)uniqueMutationsOfType(io<MutationType>$ mutType)"},
		{GenomeClass, "mutationsOfType", "- (object<Mutation>)mutationsOfType(io<MutationType>$ mutType)"},
		{MutationClass, "setSelectionCoeff", "- (void)setSelectionCoeff(float$ selectionCoeff)"},
		{SubpopulationClass, "setMigrationRates", "- (void)setMigrationRates(io<Subpopulation> sourceSubpops, numeric rates)"},
		{SubpopulationClass, "setSubpopulationSize", "- (void)setSubpopulationSize(integer$ size)"},
		{SubpopulationClass, "cachedFitness", "- (float)cachedFitness(Ni indices)"},
	}
	for _, tt := range tests {
		t.Run(tt.class.Name()+"."+tt.method, func(t *testing.T) {
			sig := tt.class.Method(eidos.GlobalStringID(tt.method))
			require.NotNil(t, sig)
			assert.Equal(t, tt.want, sig.String())
		})
	}
}

func TestClasses_MemberLists(t *testing.T) {
	assert.Equal(t, []string{
		"genomes", "index", "pedigreeGrandparentIDs", "pedigreeID", "pedigreeParentIDs",
		"sex", "subpopulation", "uniqueMutations",
	}, IndividualClass.ReadOnlyMembers())
	assert.Equal(t, []string{"tag"}, IndividualClass.ReadWriteMembers())
	assert.Equal(t, []string{"dominanceCoeff", "tag"}, MutationTypeClass.ReadWriteMembers())
	assert.Contains(t, SubstitutionClass.ReadOnlyMembers(), "fixationGeneration")
	// base-class introspection methods are inherited
	assert.Contains(t, GenomeClass.MethodNames(), "str")
}

func TestIndividualClass_Properties(t *testing.T) {
	s := newTestSimulation(t, func(c *Config) { c.Pedigrees = true })
	sp := s.pop.Subpopulation(1)
	ind := sp.Individuals()[3]

	assert.Equal(t, "\"H\"", eidos.ToString(get(t, ind, "sex")))
	idx, _ := get(t, ind, "index").IntAtIndex(0)
	assert.Equal(t, int64(3), idx)

	genomes := get(t, ind, "genomes")
	require.Equal(t, 2, genomes.Count())
	g0, _ := genomes.ObjectElementAtIndex(0)
	assert.Same(t, sp.Genomes()[6], g0)

	sub, _ := get(t, ind, "subpopulation").ObjectElementAtIndex(0)
	assert.Same(t, sp, sub)

	parents := get(t, ind, "pedigreeParentIDs")
	assert.Equal(t, 2, parents.Count())
	id, _ := get(t, ind, "pedigreeID").IntAtIndex(0)
	assert.Equal(t, int64(3), id)
}

func TestIndividualClass_MutationQueries(t *testing.T) {
	s := newTestSimulation(t, func(c *Config) {
		c.MutationTypes = append(c.MutationTypes, MutationTypeConfig{ID: 2, Dominance: 1, DFE: DFEFixed, Params: []float64{0.1}, Weight: 1})
	})
	sp := s.pop.Subpopulation(1)
	ind := sp.Individuals()[0]
	g1, g2 := ind.Genomes()
	a := plantMutation(s, s.MutationType(1), 10, 0, g1, g2)
	b := plantMutation(s, s.MutationType(2), 20, 0.1, g2)
	other := plantMutation(s, s.MutationType(1), 30, 0, sp.Genomes()[2])

	v, err := call(t, s, ind, "countOfMutationsOfType", eidos.NewIntSingleton(1))
	require.NoError(t, err)
	n, _ := v.IntAtIndex(0)
	assert.Equal(t, int64(2), n)

	v, err = call(t, s, ind, "countOfMutationsOfType", eidos.NewObjectSingleton(s.MutationType(2)))
	require.NoError(t, err)
	n, _ = v.IntAtIndex(0)
	assert.Equal(t, int64(1), n)

	muts, err := eidos.NewObjectVectorOf(a, b, other)
	require.NoError(t, err)
	v, err = call(t, s, ind, "containsMutations", muts)
	require.NoError(t, err)
	for i, want := range []bool{true, true, false} {
		got, _ := v.LogicalAtIndex(i)
		assert.Equal(t, want, got, "mutation %d", i)
	}

	v, err = call(t, s, ind, "uniqueMutationsOfType", eidos.NewIntSingleton(2))
	require.NoError(t, err)
	require.Equal(t, 1, v.Count())
	e, _ := v.ObjectElementAtIndex(0)
	assert.Same(t, b, e)

	assert.Equal(t, 2, get(t, ind, "uniqueMutations").Count())
	assert.Equal(t, "object<Mutation>", eidos.StringForValueMask(eidos.MaskObject, MutationClass, ""))
}

func TestIndividualClass_UnknownMutationType(t *testing.T) {
	s := newTestSimulation(t, nil)
	ind := s.pop.Subpopulation(1).Individuals()[0]

	_, err := call(t, s, ind, "countOfMutationsOfType", eidos.NewIntSingleton(7))

	assert.True(t, errors.Is(err, eidos.ErrRange))
	assert.ErrorContains(t, err, "mutation type m7 not defined.")
}

func TestIndividualClass_Relatedness(t *testing.T) {
	s := newTestSimulation(t, func(c *Config) { c.Pedigrees = true })
	inds := s.pop.Subpopulation(1).Individuals()

	others, err := eidos.NewObjectVectorOf(inds[0], inds[1])
	require.NoError(t, err)
	v, err := call(t, s, inds[0], "relatedness", others)
	require.NoError(t, err)

	self, _ := v.FloatAtIndex(0)
	unrelated, _ := v.FloatAtIndex(1)
	assert.Equal(t, 1.0, self)
	assert.Equal(t, 0.0, unrelated)
}

func TestClasses_TagIsReadWrite(t *testing.T) {
	s := newTestSimulation(t, nil)
	g := s.pop.Subpopulation(1).Genomes()[0]

	require.NoError(t, eidos.SetValueForMember(g, eidos.GlobalStringID("tag"), eidos.NewIntSingleton(17)))

	assert.Equal(t, int64(17), g.Tag)
	n, _ := get(t, g, "tag").IntAtIndex(0)
	assert.Equal(t, int64(17), n)
}

func TestClasses_ReadOnlyPropertyRejectsAssignment(t *testing.T) {
	s := newTestSimulation(t, nil)
	ind := s.pop.Subpopulation(1).Individuals()[0]

	err := eidos.SetValueForMember(ind, eidos.GlobalStringID("index"), eidos.NewIntSingleton(5))

	assert.True(t, errors.Is(err, eidos.ErrReadOnlyProperty))
	assert.Equal(t, 0, ind.Index())
}

func TestMutationTypeClass_DominanceIsWritable(t *testing.T) {
	s := newTestSimulation(t, nil)
	mt := s.MutationType(1)

	require.NoError(t, eidos.SetValueForMember(mt, eidos.GlobalStringID("dominanceCoeff"), eidos.NewFloatSingleton(0.25)))

	assert.Equal(t, 0.25, mt.Dominance)
	assert.Equal(t, "\"f\"", eidos.ToString(get(t, mt, "distributionType")))
}

func TestMutationClass_SetSelectionCoeff(t *testing.T) {
	s := newTestSimulation(t, nil)
	m := plantMutation(s, s.MutationType(1), 5, 0)

	_, err := call(t, s, m, "setSelectionCoeff", eidos.NewFloatSingleton(-0.02))

	require.NoError(t, err)
	assert.Equal(t, -0.02, m.SelectionCoeff)
}

func TestMutationClass_Str(t *testing.T) {
	s := newTestSimulation(t, nil)
	m := plantMutation(s, s.MutationType(1), 100, 0.5)
	var buf bytes.Buffer
	s.TeeOutput(&buf)

	_, err := call(t, s, m, "str")
	require.NoError(t, err)

	want := "Mutation:\n" +
		"\tid => (integer) 0\n" +
		"\tmutationType => (object) MutationType<m1>\n" +
		"\toriginGeneration => (integer) 1\n" +
		"\tposition => (integer) 100\n" +
		"\tselectionCoeff => (float) 0.5\n" +
		"\tsubpopID => (integer) 1\n" +
		"\ttag -> (integer) 0\n"
	assert.Equal(t, want, buf.String())
}

func TestSubpopulationClass_SetMigrationRates(t *testing.T) {
	s := newTestSimulation(t, func(c *Config) {
		c.Subpopulations = append(c.Subpopulations, SubpopConfig{ID: 2, Size: 10}, SubpopConfig{ID: 3, Size: 10})
	})
	p1 := s.pop.Subpopulation(1)

	_, err := call(t, s, p1, "setMigrationRates", eidos.NewIntVector(2, 3), eidos.NewFloatVector(0.1, 0.2))
	require.NoError(t, err)
	ids, rates := p1.MigrantFractions()
	assert.Equal(t, []int64{2, 3}, ids)
	assert.Equal(t, []float64{0.1, 0.2}, rates)

	_, err = call(t, s, p1, "setMigrationRates", eidos.NewIntVector(2, 3), eidos.NewFloatVector(0.1))
	assert.True(t, errors.Is(err, eidos.ErrArityMismatch))

	_, err = call(t, s, p1, "setMigrationRates", eidos.NewIntVector(9), eidos.NewFloatVector(0.1))
	assert.True(t, errors.Is(err, eidos.ErrRange))

	_, err = call(t, s, p1, "setMigrationRates", eidos.NewObjectSingleton(p1), eidos.NewFloatVector(0.1))
	assert.True(t, errors.Is(err, eidos.ErrRange), "self-migration")
}

func TestSubpopulationClass_SetSubpopulationSize(t *testing.T) {
	s := newTestSimulation(t, func(c *Config) {
		c.Subpopulations = append(c.Subpopulations, SubpopConfig{ID: 2, Size: 10})
	})
	p2 := s.pop.Subpopulation(2)

	_, err := call(t, s, p2, "setSubpopulationSize", eidos.NewIntSingleton(25))
	require.NoError(t, err)
	assert.Equal(t, 25, p2.ChildSize())

	_, err = call(t, s, p2, "setSubpopulationSize", eidos.NewIntSingleton(0))
	require.NoError(t, err)
	assert.Nil(t, s.pop.Subpopulation(2))

	_, err = call(t, s, s.pop.Subpopulation(1), "setSubpopulationSize", eidos.NewIntSingleton(-1))
	assert.True(t, errors.Is(err, eidos.ErrRange))
}

func TestSubpopulationClass_Rates(t *testing.T) {
	s := newTestSimulation(t, nil)
	p1 := s.pop.Subpopulation(1)

	_, err := call(t, s, p1, "setSelfingRate", eidos.NewFloatSingleton(0.5))
	require.NoError(t, err)
	_, err = call(t, s, p1, "setCloningRate", eidos.NewIntSingleton(1))
	require.NoError(t, err)
	_, err = call(t, s, p1, "setCloningRate", eidos.NewFloatSingleton(1.5))
	assert.True(t, errors.Is(err, eidos.ErrRange))

	assert.Equal(t, 0.5, p1.SelfingRate)
	assert.Equal(t, 1.0, p1.CloningRate)
}

func TestSubpopulationClass_SelfingRejectedWithSexes(t *testing.T) {
	s := newTestSimulation(t, func(c *Config) {
		c.Sex = true
		c.Subpopulations[0].SexRatio = 0.5
	})

	_, err := call(t, s, s.pop.Subpopulation(1), "setSelfingRate", eidos.NewFloatSingleton(0.1))

	assert.True(t, errors.Is(err, eidos.ErrUndefinedOperation))
}

func TestSubpopulationClass_CachedFitness(t *testing.T) {
	s := newTestSimulation(t, func(c *Config) {
		c.MutationTypes[0].Params = []float64{0.5}
		c.Subpopulations[0].Size = 3
	})
	sp := s.pop.Subpopulation(1)
	g := sp.Genomes()
	plantMutation(s, s.MutationType(1), 1, 0.5, g[0])       // heterozygous: 1 + 0.5*0.5
	plantMutation(s, s.MutationType(1), 2, 0.5, g[2], g[3]) // homozygous: 1 + 0.5
	s.pop.UpdateFitness()

	all, err := call(t, s, sp, "cachedFitness", eidos.NewNull())
	require.NoError(t, err)
	require.Equal(t, 3, all.Count())
	for i, want := range []float64{1.25, 1.5, 1} {
		got, _ := all.FloatAtIndex(i)
		assert.InDelta(t, want, got, 1e-12, "individual %d", i)
	}

	one, err := call(t, s, sp, "cachedFitness", eidos.NewIntVector(1))
	require.NoError(t, err)
	w, _ := one.FloatAtIndex(0)
	assert.InDelta(t, 1.5, w, 1e-12)

	_, err = call(t, s, sp, "cachedFitness", eidos.NewIntVector(3))
	assert.True(t, errors.Is(err, eidos.ErrIndex))
}

func TestSubstitutionClass_Properties(t *testing.T) {
	s := newTestSimulation(t, nil)
	plantMutation(s, s.MutationType(1), 100, 0, s.pop.Subpopulation(1).Genomes()...)
	s.pop.TallyMutationReferences()
	s.pop.RemoveFixedMutations()
	require.Len(t, s.pop.Substitutions(), 1)
	sub := s.pop.Substitutions()[0]

	gen, _ := get(t, sub, "fixationGeneration").IntAtIndex(0)
	assert.Equal(t, int64(1), gen)
	mt, _ := get(t, sub, "mutationType").ObjectElementAtIndex(0)
	assert.Same(t, s.MutationType(1), mt)
}
