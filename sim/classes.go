package sim

import (
	"github.com/slim-sim/slim-sim/eidos"
)

// Script-facing classes of the simulation model. They are populated in
// init because Individual and Subpopulation refer to each other.
var (
	IndividualClass    = eidos.NewClass("Individual", nil)
	GenomeClass        = eidos.NewClass("Genome", nil)
	MutationClass      = eidos.NewClass("Mutation", nil)
	MutationTypeClass  = eidos.NewClass("MutationType", nil)
	SubpopulationClass = eidos.NewClass("Subpopulation", nil)
	SubstitutionClass  = eidos.NewClass("Substitution", nil)
)

func init() {
	defineIndividualClass(IndividualClass)
	defineGenomeClass(GenomeClass)
	defineMutationClass(MutationClass)
	defineMutationTypeClass(MutationTypeClass)
	defineSubpopulationClass(SubpopulationClass)
	defineSubstitutionClass(SubstitutionClass)
}

func (ind *Individual) Class() *eidos.Class   { return IndividualClass }
func (g *Genome) Class() *eidos.Class         { return GenomeClass }
func (m *Mutation) Class() *eidos.Class       { return MutationClass }
func (mt *MutationType) Class() *eidos.Class  { return MutationTypeClass }
func (sp *Subpopulation) Class() *eidos.Class { return SubpopulationClass }
func (s *Substitution) Class() *eidos.Class   { return SubstitutionClass }

// === helpers ===

func readOnly(name string, mask eidos.ValueMask, class *eidos.Class, get eidos.PropertyGetter) *eidos.PropertySignature {
	sig := eidos.NewPropertySignature(name, true, mask, class)
	sig.Get = get
	return sig
}

func readWrite(name string, mask eidos.ValueMask, get eidos.PropertyGetter, set eidos.PropertySetter) *eidos.PropertySignature {
	sig := eidos.NewPropertySignature(name, false, mask, nil)
	sig.Get = get
	sig.Set = set
	return sig
}

func singleton(mask eidos.ValueMask) eidos.ValueMask { return mask | eidos.MaskSingleton }

// objectsOf wraps elements in a vector of class; an empty slice yields an
// empty vector that still reports class.
func objectsOf[T eidos.ObjectElement](class *eidos.Class, elements []T) eidos.Value {
	v := eidos.NewObjectVector(class)
	for _, e := range elements {
		if err := v.PushElement(e); err != nil {
			eidos.Internalf("objectsOf", "%v", err)
		}
	}
	return v
}

func tagProperty[T eidos.ObjectElement](tag func(T) *int64) *eidos.PropertySignature {
	return readWrite("tag", singleton(eidos.MaskInt),
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewIntSingleton(*tag(e.(T))), nil
		},
		func(e eidos.ObjectElement, v eidos.Value) error {
			n, err := v.IntAtIndex(0)
			if err != nil {
				return err
			}
			*tag(e.(T)) = n
			return nil
		})
}

// resolveMutationType accepts an io<MutationType>$ argument: either a
// MutationType element or the integer ID of one defined in s.
func resolveMutationType(s *Simulation, op string, v eidos.Value) (*MutationType, error) {
	if v.Type() == eidos.TypeInt {
		id, err := v.IntAtIndex(0)
		if err != nil {
			return nil, err
		}
		mt := s.MutationType(id)
		if mt == nil {
			return nil, eidos.NewError(eidos.ErrRange, op, "mutation type m%d not defined.", id)
		}
		return mt, nil
	}
	e, err := v.ObjectElementAtIndex(0)
	if err != nil {
		return nil, err
	}
	return e.(*MutationType), nil
}

// resolveSubpopulations accepts an io<Subpopulation> argument.
func resolveSubpopulations(p *Population, op string, v eidos.Value) ([]*Subpopulation, error) {
	out := make([]*Subpopulation, 0, v.Count())
	for i := range v.Count() {
		if v.Type() == eidos.TypeInt {
			id, err := v.IntAtIndex(i)
			if err != nil {
				return nil, err
			}
			sp := p.Subpopulation(id)
			if sp == nil {
				return nil, eidos.NewError(eidos.ErrRange, op, "subpopulation p%d not defined.", id)
			}
			out = append(out, sp)
			continue
		}
		e, err := v.ObjectElementAtIndex(i)
		if err != nil {
			return nil, err
		}
		out = append(out, e.(*Subpopulation))
	}
	return out, nil
}

func mutationsArg(v eidos.Value) ([]*Mutation, error) {
	out := make([]*Mutation, 0, v.Count())
	for i := range v.Count() {
		e, err := v.ObjectElementAtIndex(i)
		if err != nil {
			return nil, err
		}
		out = append(out, e.(*Mutation))
	}
	return out, nil
}

// === Individual ===

func defineIndividualClass(c *eidos.Class) {
	self := func(e eidos.ObjectElement) *Individual { return e.(*Individual) }

	c.AddProperty(readOnly("subpopulation", singleton(eidos.MaskObject), SubpopulationClass,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewObjectSingleton(self(e).subpop), nil
		}))
	c.AddProperty(readOnly("index", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewIntSingleton(int64(self(e).index)), nil
		}))
	c.AddProperty(readOnly("genomes", eidos.MaskObject, GenomeClass,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			g1, g2 := self(e).Genomes()
			return objectsOf(GenomeClass, []*Genome{g1, g2}), nil
		}))
	c.AddProperty(readOnly("sex", singleton(eidos.MaskString), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewString(self(e).sex.String()), nil
		}))
	c.AddProperty(tagProperty(func(ind *Individual) *int64 { return &ind.Tag }))
	c.AddProperty(readOnly("pedigreeID", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewIntSingleton(self(e).pedigreeID), nil
		}))
	c.AddProperty(readOnly("pedigreeParentIDs", eidos.MaskInt, nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			ids := self(e).parentIDs
			return eidos.NewIntVector(ids[:]...), nil
		}))
	c.AddProperty(readOnly("pedigreeGrandparentIDs", eidos.MaskInt, nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			ids := self(e).grandparentIDs
			return eidos.NewIntVector(ids[:]...), nil
		}))
	c.AddProperty(readOnly("uniqueMutations", eidos.MaskObject, MutationClass,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return objectsOf(MutationClass, self(e).UniqueMutations()), nil
		}))

	c.AddMethod(eidos.NewInstanceMethod("containsMutations", eidos.MaskLogical, nil,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			muts, err := mutationsArg(args[0])
			if err != nil {
				return nil, err
			}
			out := eidos.NewLogical()
			for _, m := range muts {
				out.PushLogical(self(e).ContainsMutation(m))
			}
			return out, nil
		}).AddArg("mutations", eidos.MaskObject, MutationClass))

	c.AddMethod(eidos.NewInstanceMethod("countOfMutationsOfType", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			ind := self(e)
			mt, err := resolveMutationType(ind.subpop.pop.sim, "countOfMutationsOfType()", args[0])
			if err != nil {
				return nil, err
			}
			return eidos.NewIntSingleton(int64(ind.CountOfMutationsOfType(mt))), nil
		}).AddArg("mutType", singleton(eidos.MaskInt|eidos.MaskObject), MutationTypeClass))

	c.AddMethod(eidos.NewInstanceMethod("relatedness", eidos.MaskFloat, nil,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			out := eidos.NewFloatVector()
			for i := range args[0].Count() {
				other, err := args[0].ObjectElementAtIndex(i)
				if err != nil {
					return nil, err
				}
				out.PushFloat(self(e).RelatednessTo(other.(*Individual)))
			}
			return out, nil
		}).AddArg("individuals", eidos.MaskObject, IndividualClass))

	c.AddMethod(eidos.NewInstanceMethod("uniqueMutationsOfType", eidos.MaskObject, MutationClass,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			ind := self(e)
			mt, err := resolveMutationType(ind.subpop.pop.sim, "uniqueMutationsOfType()", args[0])
			if err != nil {
				return nil, err
			}
			return objectsOf(MutationClass, ind.UniqueMutationsOfType(mt)), nil
		}).AddArg("mutType", singleton(eidos.MaskInt|eidos.MaskObject), MutationTypeClass))
}

// === Genome ===

func defineGenomeClass(c *eidos.Class) {
	self := func(e eidos.ObjectElement) *Genome { return e.(*Genome) }

	c.AddProperty(readOnly("genomeType", singleton(eidos.MaskString), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewString(self(e).typ.String()), nil
		}))
	c.AddProperty(readOnly("isNullGenome", singleton(eidos.MaskLogical), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.LogicalFor(self(e).null), nil
		}))
	c.AddProperty(readOnly("mutations", eidos.MaskObject, MutationClass,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return objectsOf(MutationClass, self(e).mutations), nil
		}))
	c.AddProperty(tagProperty(func(g *Genome) *int64 { return &g.Tag }))

	c.AddMethod(eidos.NewInstanceMethod("containsMutations", eidos.MaskLogical, nil,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			muts, err := mutationsArg(args[0])
			if err != nil {
				return nil, err
			}
			out := eidos.NewLogical()
			for _, m := range muts {
				out.PushLogical(self(e).Contains(m))
			}
			return out, nil
		}).AddArg("mutations", eidos.MaskObject, MutationClass))

	c.AddMethod(eidos.NewInstanceMethod("countOfMutationsOfType", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			g := self(e)
			mt, err := resolveMutationType(g.subpop.pop.sim, "countOfMutationsOfType()", args[0])
			if err != nil {
				return nil, err
			}
			return eidos.NewIntSingleton(int64(g.CountOfType(mt))), nil
		}).AddArg("mutType", singleton(eidos.MaskInt|eidos.MaskObject), MutationTypeClass))

	c.AddMethod(eidos.NewInstanceMethod("mutationsOfType", eidos.MaskObject, MutationClass,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			g := self(e)
			mt, err := resolveMutationType(g.subpop.pop.sim, "mutationsOfType()", args[0])
			if err != nil {
				return nil, err
			}
			return objectsOf(MutationClass, g.MutationsOfType(mt)), nil
		}).AddArg("mutType", singleton(eidos.MaskInt|eidos.MaskObject), MutationTypeClass))
}

// === Mutation ===

func defineMutationClass(c *eidos.Class) {
	self := func(e eidos.ObjectElement) *Mutation { return e.(*Mutation) }

	c.AddProperty(readOnly("id", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) { return eidos.NewIntSingleton(self(e).ID), nil }))
	c.AddProperty(readOnly("mutationType", singleton(eidos.MaskObject), MutationTypeClass,
		func(e eidos.ObjectElement) (eidos.Value, error) { return eidos.NewObjectSingleton(self(e).Type), nil }))
	c.AddProperty(readOnly("position", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) { return eidos.NewIntSingleton(self(e).Position), nil }))
	c.AddProperty(readOnly("selectionCoeff", singleton(eidos.MaskFloat), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewFloatSingleton(self(e).SelectionCoeff), nil
		}))
	c.AddProperty(readOnly("subpopID", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) { return eidos.NewIntSingleton(self(e).SubpopID), nil }))
	c.AddProperty(readOnly("originGeneration", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewIntSingleton(self(e).OriginGeneration), nil
		}))
	c.AddProperty(tagProperty(func(m *Mutation) *int64 { return &m.Tag }))

	c.AddMethod(eidos.NewInstanceMethod("setSelectionCoeff", eidos.MaskNULL, nil,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			s, err := args[0].FloatAtIndex(0)
			if err != nil {
				return nil, err
			}
			self(e).SelectionCoeff = s
			return eidos.NULLInvisible, nil
		}).AddArg("selectionCoeff", singleton(eidos.MaskFloat), nil))
}

// === MutationType ===

func defineMutationTypeClass(c *eidos.Class) {
	self := func(e eidos.ObjectElement) *MutationType { return e.(*MutationType) }

	c.AddProperty(readOnly("id", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) { return eidos.NewIntSingleton(self(e).ID), nil }))
	c.AddProperty(readWrite("dominanceCoeff", singleton(eidos.MaskFloat),
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewFloatSingleton(self(e).Dominance), nil
		},
		func(e eidos.ObjectElement, v eidos.Value) error {
			h, err := v.FloatAtIndex(0)
			if err != nil {
				return err
			}
			self(e).Dominance = h
			return nil
		}))
	c.AddProperty(readOnly("distributionType", singleton(eidos.MaskString), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) { return eidos.NewString(self(e).DFE), nil }))
	c.AddProperty(readOnly("distributionParams", eidos.MaskFloat, nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewFloatVector(self(e).Params...), nil
		}))
	c.AddProperty(tagProperty(func(mt *MutationType) *int64 { return &mt.Tag }))
}

// === Subpopulation ===

func defineSubpopulationClass(c *eidos.Class) {
	self := func(e eidos.ObjectElement) *Subpopulation { return e.(*Subpopulation) }

	c.AddProperty(readOnly("id", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) { return eidos.NewIntSingleton(self(e).ID), nil }))
	c.AddProperty(readOnly("individualCount", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewIntSingleton(int64(self(e).parentSize)), nil
		}))
	c.AddProperty(readOnly("firstMaleIndex", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewIntSingleton(int64(self(e).parentFirstMale)), nil
		}))
	c.AddProperty(readOnly("individuals", eidos.MaskObject, IndividualClass,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return objectsOf(IndividualClass, self(e).parentIndividuals), nil
		}))
	c.AddProperty(readOnly("genomes", eidos.MaskObject, GenomeClass,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return objectsOf(GenomeClass, self(e).parentGenomes), nil
		}))
	c.AddProperty(readOnly("sexRatio", singleton(eidos.MaskFloat), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewFloatSingleton(self(e).parentSexRatio), nil
		}))
	c.AddProperty(readOnly("selfingRate", singleton(eidos.MaskFloat), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) { return eidos.NewFloatSingleton(self(e).SelfingRate), nil }))
	c.AddProperty(readOnly("cloningRate", singleton(eidos.MaskFloat), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) { return eidos.NewFloatSingleton(self(e).CloningRate), nil }))
	c.AddProperty(tagProperty(func(sp *Subpopulation) *int64 { return &sp.Tag }))

	c.AddMethod(eidos.NewInstanceMethod("setMigrationRates", eidos.MaskNULL, nil,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			const op = "setMigrationRates()"
			sp := self(e)
			sources, err := resolveSubpopulations(sp.pop, op, args[0])
			if err != nil {
				return nil, err
			}
			if len(sources) != args[1].Count() {
				return nil, eidos.NewError(eidos.ErrArityMismatch, op, "sourceSubpops and rates must be equal in size.")
			}
			for i, src := range sources {
				rate, err := args[1].FloatAtIndex(i)
				if err != nil {
					return nil, err
				}
				if err := sp.pop.SetMigration(sp, src.ID, rate); err != nil {
					return nil, err
				}
			}
			return eidos.NULLInvisible, nil
		}).
		AddArg("sourceSubpops", eidos.MaskInt|eidos.MaskObject, SubpopulationClass).
		AddArg("rates", eidos.MaskNumeric, nil))

	c.AddMethod(eidos.NewInstanceMethod("setSubpopulationSize", eidos.MaskNULL, nil,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			n, err := args[0].IntAtIndex(0)
			if err != nil {
				return nil, err
			}
			sp := self(e)
			if err := sp.pop.SetSize(sp, int(n)); err != nil {
				return nil, err
			}
			return eidos.NULLInvisible, nil
		}).AddArg("size", singleton(eidos.MaskInt), nil))

	c.AddMethod(eidos.NewInstanceMethod("setSelfingRate", eidos.MaskNULL, nil,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			const op = "setSelfingRate()"
			rate, err := args[0].FloatAtIndex(0)
			if err != nil {
				return nil, err
			}
			sp := self(e)
			if sp.pop.sim.sexEnabled && rate != 0 {
				return nil, eidos.NewError(eidos.ErrUndefinedOperation, op, "selfing cannot be enabled in a model with separate sexes.")
			}
			if rate < 0 || rate > 1 {
				return nil, eidos.NewError(eidos.ErrRange, op, "selfing rate %g is out of range [0, 1].", rate)
			}
			sp.SelfingRate = rate
			return eidos.NULLInvisible, nil
		}).AddArg("rate", singleton(eidos.MaskNumeric), nil))

	c.AddMethod(eidos.NewInstanceMethod("setCloningRate", eidos.MaskNULL, nil,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			rate, err := args[0].FloatAtIndex(0)
			if err != nil {
				return nil, err
			}
			if rate < 0 || rate > 1 {
				return nil, eidos.NewError(eidos.ErrRange, "setCloningRate()", "cloning rate %g is out of range [0, 1].", rate)
			}
			self(e).CloningRate = rate
			return eidos.NULLInvisible, nil
		}).AddArg("rate", singleton(eidos.MaskNumeric), nil))

	c.AddMethod(eidos.NewInstanceMethod("setSexRatio", eidos.MaskNULL, nil,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			ratio, err := args[0].FloatAtIndex(0)
			if err != nil {
				return nil, err
			}
			if err := self(e).SetChildSexRatio(ratio); err != nil {
				return nil, err
			}
			return eidos.NULLInvisible, nil
		}).AddArg("sexRatio", singleton(eidos.MaskFloat), nil))

	c.AddMethod(eidos.NewInstanceMethod("cachedFitness", eidos.MaskFloat, nil,
		func(e eidos.ObjectElement, args []eidos.Value, _ *eidos.ExecContext) (eidos.Value, error) {
			sp := self(e)
			out := eidos.NewFloatVector()
			if len(args) == 0 || args[0].Type() == eidos.TypeNULL {
				for i := range sp.cachedFitness {
					out.PushFloat(sp.cachedFitness[i])
				}
				return out, nil
			}
			for i := range args[0].Count() {
				idx, err := args[0].IntAtIndex(i)
				if err != nil {
					return nil, err
				}
				w, err := sp.CachedFitness(int(idx))
				if err != nil {
					return nil, err
				}
				out.PushFloat(w)
			}
			return out, nil
		}).AddArg("indices", eidos.MaskNULL|eidos.MaskInt, nil))
}

// === Substitution ===

func defineSubstitutionClass(c *eidos.Class) {
	self := func(e eidos.ObjectElement) *Substitution { return e.(*Substitution) }

	c.AddProperty(readOnly("id", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) { return eidos.NewIntSingleton(self(e).ID), nil }))
	c.AddProperty(readOnly("mutationType", singleton(eidos.MaskObject), MutationTypeClass,
		func(e eidos.ObjectElement) (eidos.Value, error) { return eidos.NewObjectSingleton(self(e).Type), nil }))
	c.AddProperty(readOnly("position", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) { return eidos.NewIntSingleton(self(e).Position), nil }))
	c.AddProperty(readOnly("selectionCoeff", singleton(eidos.MaskFloat), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewFloatSingleton(self(e).SelectionCoeff), nil
		}))
	c.AddProperty(readOnly("subpopID", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) { return eidos.NewIntSingleton(self(e).SubpopID), nil }))
	c.AddProperty(readOnly("originGeneration", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewIntSingleton(self(e).OriginGeneration), nil
		}))
	c.AddProperty(readOnly("fixationGeneration", singleton(eidos.MaskInt), nil,
		func(e eidos.ObjectElement) (eidos.Value, error) {
			return eidos.NewIntSingleton(self(e).FixationGeneration), nil
		}))
	c.AddProperty(tagProperty(func(sub *Substitution) *int64 { return &sub.Tag }))
}
