package sim

import (
	"cmp"
	"slices"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/sirupsen/logrus"

	"github.com/slim-sim/slim-sim/eidos"
	"github.com/slim-sim/slim-sim/sim/trace"
)

// Population is the set of subpopulations plus the mutation registry and
// the substitutions fixed so far.
type Population struct {
	sim *Simulation

	subpops *treemap.Map // int64 -> *Subpopulation

	// registry holds every mutation that may still be carried by a
	// genome, in discovery order.
	registry      []*Mutation
	substitutions []*Substitution

	totalGenomeCount     int
	childGenerationValid bool
}

func newPopulation(s *Simulation) *Population {
	return &Population{
		sim:     s,
		subpops: treemap.NewWith(utils.Int64Comparator),
	}
}

// Subpopulation returns subpopulation id, or nil.
func (p *Population) Subpopulation(id int64) *Subpopulation {
	v, ok := p.subpops.Get(id)
	if !ok {
		return nil
	}
	return v.(*Subpopulation)
}

// Subpopulations returns every subpopulation in ID order.
func (p *Population) Subpopulations() []*Subpopulation {
	out := make([]*Subpopulation, 0, p.subpops.Size())
	it := p.subpops.Iterator()
	for it.Next() {
		out = append(out, it.Value().(*Subpopulation))
	}
	return out
}

// MutationRegistry returns the live mutations in discovery order; callers
// must not modify it.
func (p *Population) MutationRegistry() []*Mutation { return p.registry }

// Substitutions returns the fixed mutations in fixation order.
func (p *Population) Substitutions() []*Substitution { return p.substitutions }

// TotalGenomeCount is the fixation threshold from the last tally.
func (p *Population) TotalGenomeCount() int { return p.totalGenomeCount }

// === subpopulation management ===

// AddSubpopulation creates subpopulation id with size new individuals
// carrying empty genomes.
func (p *Population) AddSubpopulation(id int64, size int, sexRatio float64) (*Subpopulation, error) {
	if err := p.checkNewSubpop(id, size, sexRatio); err != nil {
		return nil, err
	}
	sp := newSubpopulation(p, id, size, sexRatio)
	p.assignFounderPedigrees(sp)
	p.subpops.Put(id, sp)
	logrus.Infof("[gen %d] added subpopulation p%d (%d individuals)", p.sim.generation, id, size)
	return sp, nil
}

// AddSubpopulationFromSource creates subpopulation id whose individuals are
// copies of uniformly drawn parents of source, matching sex where sexes are
// modelled.
func (p *Population) AddSubpopulationFromSource(id int64, source *Subpopulation, size int, sexRatio float64) (*Subpopulation, error) {
	if err := p.checkNewSubpop(id, size, sexRatio); err != nil {
		return nil, err
	}
	if source == nil || p.Subpopulation(source.ID) != source {
		return nil, eidos.NewError(eidos.ErrRange, "addSubpopSplit()", "source subpopulation does not exist.")
	}
	sp := newSubpopulation(p, id, size, sexRatio)

	rng := p.sim.rng.ForSubsystem(SubsystemMating)
	for i, ind := range sp.parentIndividuals {
		lo, hi := 0, source.parentSize
		if p.sim.sexEnabled {
			if ind.sex == Female {
				hi = source.parentFirstMale
			} else {
				lo = source.parentFirstMale
			}
		}
		if hi <= lo {
			return nil, eidos.NewError(eidos.ErrRange, "addSubpopSplit()", "source subpopulation p%d has no %s individuals to copy.", source.ID, ind.sex)
		}
		from := lo + rng.IntN(hi-lo)
		sp.parentGenomes[2*i].copyFrom(source.parentGenomes[2*from])
		sp.parentGenomes[2*i+1].copyFrom(source.parentGenomes[2*from+1])
	}
	p.assignFounderPedigrees(sp)
	p.subpops.Put(id, sp)
	logrus.Infof("[gen %d] split subpopulation p%d (%d individuals) from p%d", p.sim.generation, id, size, source.ID)
	return sp, nil
}

func (p *Population) checkNewSubpop(id int64, size int, sexRatio float64) error {
	const op = "addSubpop()"
	if id < 0 {
		return eidos.NewError(eidos.ErrRange, op, "subpopulation id %d must be non-negative.", id)
	}
	if p.Subpopulation(id) != nil {
		return eidos.NewError(eidos.ErrRange, op, "subpopulation p%d already exists.", id)
	}
	if size < 1 {
		return eidos.NewError(eidos.ErrRange, op, "subpopulation p%d empty.", id)
	}
	if p.sim.sexEnabled && (sexRatio < 0 || sexRatio > 1) {
		return eidos.NewError(eidos.ErrRange, op, "sex ratio %g is out of range [0, 1].", sexRatio)
	}
	return nil
}

func (p *Population) assignFounderPedigrees(sp *Subpopulation) {
	if !p.sim.pedigrees {
		return
	}
	for _, ind := range sp.parentIndividuals {
		ind.setPedigree(p.sim.nextPedigreeID(), nil, nil)
	}
}

// SetSize sets the size of sp's next generation. Size 0 removes sp at
// once, along with every migration rate that names it.
func (p *Population) SetSize(sp *Subpopulation, size int) error {
	if size < 0 {
		return eidos.NewError(eidos.ErrRange, "setSubpopulationSize()", "size %d must be non-negative.", size)
	}
	if size == 0 {
		p.subpops.Remove(sp.ID)
		for _, other := range p.Subpopulations() {
			other.migrants.Remove(sp.ID)
		}
		logrus.Infof("[gen %d] removed subpopulation p%d", p.sim.generation, sp.ID)
		return nil
	}
	sp.childSize = size
	return nil
}

// SetMigration sets the fraction of target's next generation drawn from
// source's parents. A rate of 0 removes the entry.
func (p *Population) SetMigration(target *Subpopulation, sourceID int64, rate float64) error {
	const op = "setMigrationRates()"
	if p.Subpopulation(sourceID) == nil {
		return eidos.NewError(eidos.ErrRange, op, "no subpopulation p%d.", sourceID)
	}
	if sourceID == target.ID {
		return eidos.NewError(eidos.ErrRange, op, "a subpopulation cannot receive migrants from itself.")
	}
	if rate < 0 || rate > 1 {
		return eidos.NewError(eidos.ErrRange, op, "migration rate %g is out of range [0, 1].", rate)
	}
	old, _ := target.migrants.Get(sourceID)
	prev, _ := old.(float64)
	if target.totalMigrantFraction()-prev+rate > 1 {
		return eidos.NewError(eidos.ErrRange, op, "migration rates into p%d would sum to more than 1.", target.ID)
	}
	if rate == 0 {
		target.migrants.Remove(sourceID)
	} else {
		target.migrants.Put(sourceID, rate)
	}
	return nil
}

// RemoveAllSubpopulationInfo drops every subpopulation, the registry and
// the substitutions.
func (p *Population) RemoveAllSubpopulationInfo() {
	p.subpops.Clear()
	p.registry = nil
	for _, s := range p.substitutions {
		s.Release()
	}
	p.substitutions = nil
	p.totalGenomeCount = 0
	p.childGenerationValid = false
}

// === generation cycle ===

// UpdateFitness recomputes fitness for every subpopulation's parents.
func (p *Population) UpdateFitness() {
	for _, sp := range p.Subpopulations() {
		sp.UpdateFitness()
	}
}

// SwapGenerations makes each subpopulation's children its parents.
func (p *Population) SwapGenerations() {
	if !p.childGenerationValid {
		eidos.Internalf("Population.SwapGenerations", "child generation is not valid.")
	}
	for _, sp := range p.Subpopulations() {
		sp.parentIndividuals, sp.childIndividuals = sp.childIndividuals, nil
		sp.parentGenomes, sp.childGenomes = sp.childGenomes, nil
		sp.parentSize = sp.childSize
		sp.parentSexRatio = sp.childSexRatio
		sp.parentFirstMale = sp.childFirstMale
		sp.cachedFitness = nil
	}
	p.childGenerationValid = false
}

// TallyMutationReferences counts, for every registered mutation, the
// live genomes carrying it, and records the number of live non-null
// genomes as the fixation threshold.
func (p *Population) TallyMutationReferences() {
	for _, m := range p.registry {
		m.refCount = 0
	}
	total := 0
	for _, sp := range p.Subpopulations() {
		for _, g := range sp.parentGenomes {
			if g.null {
				continue
			}
			total++
			for _, m := range g.mutations {
				m.refCount++
			}
		}
	}
	p.totalGenomeCount = total
}

// RemoveFixedMutations converts every mutation carried by all genomes into
// a Substitution, strips it from the genomes and the registry, and drops
// mutations carried by none. Call after TallyMutationReferences.
func (p *Population) RemoveFixedMutations() (fixed, lost int) {
	gen := p.sim.generation
	var fixedMuts []*Mutation
	kept := p.registry[:0]
	for _, m := range p.registry {
		switch {
		case p.totalGenomeCount > 0 && m.refCount == p.totalGenomeCount:
			fixedMuts = append(fixedMuts, m)
		case m.refCount == 0:
			lost++
			p.sim.trace.RecordLoss(trace.LossRecord{MutationID: m.ID, Position: m.Position, Generation: gen})
		default:
			kept = append(kept, m)
		}
	}
	clear(p.registry[len(kept):])
	p.registry = kept

	if len(fixedMuts) == 0 {
		return 0, lost
	}

	slices.SortStableFunc(fixedMuts, func(a, b *Mutation) int { return cmp.Compare(a.Position, b.Position) })
	drop := make(map[*Mutation]bool, len(fixedMuts))
	for _, m := range fixedMuts {
		drop[m] = true
		p.substitutions = append(p.substitutions, NewSubstitution(m, gen))
		p.sim.trace.RecordFixation(trace.FixationRecord{
			MutationID:       m.ID,
			MutationType:     m.Type.ID,
			Position:         m.Position,
			SelectionCoeff:   m.SelectionCoeff,
			OriginGeneration: m.OriginGeneration,
			Generation:       gen,
		})
		logrus.Debugf("[gen %d] mutation %d fixed at position %d", gen, m.ID, m.Position)
	}
	for _, sp := range p.Subpopulations() {
		for _, g := range sp.parentGenomes {
			if len(g.mutations) > 0 {
				g.removeAll(drop)
			}
		}
	}
	return len(fixedMuts), lost
}

// CheckMutationRegistry verifies that every mutation carried by a live
// genome is registered. A carried but unregistered mutation is an engine
// invariant violation.
func (p *Population) CheckMutationRegistry() {
	registered := make(map[*Mutation]bool, len(p.registry))
	for _, m := range p.registry {
		registered[m] = true
	}
	for _, sp := range p.Subpopulations() {
		for _, g := range sp.parentGenomes {
			for _, m := range g.mutations {
				if !registered[m] {
					eidos.Internalf("Population.CheckMutationRegistry", "zombie mutation %d at position %d found in p%d.", m.ID, m.Position, sp.ID)
				}
			}
		}
	}
}

// registerMutation creates a new mutation originating in subpopulation
// subpopID and adds it to the registry.
func (p *Population) registerMutation(mt *MutationType, pos int64, s float64, subpopID int64) *Mutation {
	m := &Mutation{
		ID:               p.sim.nextMutationID(),
		Type:             mt,
		Position:         pos,
		SelectionCoeff:   s,
		SubpopID:         subpopID,
		OriginGeneration: p.sim.generation,
	}
	p.registry = append(p.registry, m)
	return m
}

// unregisterSince drops the mutations registered after the registry held n
// entries. Their IDs are not reused.
func (p *Population) unregisterSince(n int) {
	clear(p.registry[n:])
	p.registry = p.registry[:n]
}
