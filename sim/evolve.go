package sim

import (
	"slices"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/slim-sim/slim-sim/eidos"
)

// migrantBatch is a run of consecutive child slots drawn from one source.
type migrantBatch struct {
	source *Subpopulation
	count  int
}

// migrantBatches splits n children between sp's migration sources and sp
// itself. Sources are visited in ID order and each count is a binomial
// draw on what remains.
func (p *Population) migrantBatches(sp *Subpopulation, n int) []migrantBatch {
	ids, rates := sp.MigrantFractions()
	src := p.sim.rng.ForSubsystem(SubsystemMating)

	var batches []migrantBatch
	remaining := n
	remainingFraction := 1.0
	for i, id := range ids {
		if remaining == 0 {
			break
		}
		source := p.Subpopulation(id)
		if source == nil || rates[i] <= 0 {
			continue
		}
		count := remaining
		if prob := rates[i] / remainingFraction; prob < 1 {
			count = int(distuv.Binomial{N: float64(remaining), P: prob, Src: src}.Rand())
		}
		remainingFraction -= rates[i]
		if count > 0 {
			batches = append(batches, migrantBatch{source: source, count: count})
			remaining -= count
		}
	}
	if remaining > 0 {
		batches = append(batches, migrantBatch{source: sp, count: remaining})
	}
	return batches
}

// EvolveSubpopulation generates sp's complete child generation from the
// parents of sp and its migration sources. Fitness must be current.
func (p *Population) EvolveSubpopulation(sp *Subpopulation) error {
	sp.generateChildrenToFit()

	ranges := [][2]int{{0, sp.childSize}}
	if p.sim.sexEnabled {
		ranges = [][2]int{{0, sp.childFirstMale}, {sp.childFirstMale, sp.childSize}}
	}
	modifyChild := p.sim.modifyChildFor(sp.ID)

	for _, r := range ranges {
		slot := r[0]
		for _, batch := range p.migrantBatches(sp, r[1]-r[0]) {
			mateChoice := p.sim.mateChoiceFor(batch.source.ID)
			for k := 0; k < batch.count; k++ {
				if err := p.generateChild(sp, slot, batch.source, mateChoice, modifyChild); err != nil {
					return err
				}
				slot++
			}
		}
	}
	return nil
}

// generateChild fills child slot of sp, retrying until every modifyChild()
// callback accepts the result. Mutations made for a rejected child are
// unregistered.
func (p *Population) generateChild(sp *Subpopulation, slot int, source *Subpopulation, mateChoice []*MateChoiceCallback, modifyChild []*ModifyChildCallback) error {
	rng := p.sim.rng.ForSubsystem(SubsystemMating)
	child := sp.childIndividuals[slot]
	cg1, cg2 := sp.childGenomes[2*slot], sp.childGenomes[2*slot+1]

	for {
		cg1.mutations = cg1.mutations[:0]
		cg2.mutations = cg2.mutations[:0]
		registered := len(p.registry)

		p1 := source.femaleDraw.draw()
		if p1 < 0 {
			return eidos.NewError(eidos.ErrRange, "EvolveSubpopulation", "no eligible first parent in p%d.", source.ID)
		}

		isCloning := source.CloningRate > 0 && rng.Float64() < source.CloningRate
		isSelfing := !isCloning && !p.sim.sexEnabled && source.SelfingRate > 0 && rng.Float64() < source.SelfingRate

		p2 := p1
		if !isCloning && !isSelfing {
			var err error
			p2, err = p.drawSecondParent(source, p1, mateChoice)
			if err != nil {
				return err
			}
			if p2 < 0 {
				continue
			}
		}

		pg := source.parentGenomes
		if isCloning {
			p.DoClonalMutation(sp, cg1, pg[2*p1])
			p.DoClonalMutation(sp, cg2, pg[2*p1+1])
		} else {
			p.DoCrossoverMutation(sp, cg1, pg[2*p1], pg[2*p1+1])
			if !cg2.null {
				p.DoCrossoverMutation(sp, cg2, pg[2*p2], pg[2*p2+1])
			}
		}

		parent1, parent2 := source.parentIndividuals[p1], source.parentIndividuals[p2]
		if p.sim.pedigrees {
			child.setPedigree(p.sim.nextPedigreeID(), parent1, parent2)
		}

		if len(modifyChild) == 0 {
			return nil
		}
		ok, err := p.ApplyModifyChildCallbacks(&ChildEvent{
			Child:     child,
			Parent1:   parent1,
			Parent2:   parent2,
			IsSelfing: isSelfing,
			IsCloning: isCloning,
			Source:    source,
		}, modifyChild)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		p.unregisterSince(registered)
	}
}

// drawSecondParent draws a mate for p1, or returns -1 when a mateChoice()
// callback rejected p1.
func (p *Population) drawSecondParent(source *Subpopulation, p1 int, mateChoice []*MateChoiceCallback) (int, error) {
	if len(mateChoice) > 0 {
		return p.ApplyMateChoiceCallbacks(source.parentIndividuals[p1], source, mateChoice)
	}
	p2 := source.maleDraw.draw()
	if p2 < 0 {
		return 0, eidos.NewError(eidos.ErrRange, "EvolveSubpopulation", "no eligible second parent in p%d.", source.ID)
	}
	// hermaphrodites do not self unless selfing was drawn
	if !p.sim.sexEnabled && p2 == p1 && source.parentSize > 1 {
		p2 = source.maleDraw.drawExcluding(p1)
		if p2 < 0 {
			return 0, eidos.NewError(eidos.ErrRange, "EvolveSubpopulation", "no eligible second parent in p%d.", source.ID)
		}
	}
	return p2, nil
}

// ApplyMateChoiceCallbacks runs callbacks in order over the default mate
// weights and draws a mate from the result. It returns -1 when a callback
// rejects parent1 by returning all-zero weights.
func (p *Population) ApplyMateChoiceCallbacks(parent1 *Individual, source *Subpopulation, callbacks []*MateChoiceCallback) (int, error) {
	const op = "mateChoice() callback"
	weights := make([]float64, source.parentSize)
	for i := range weights {
		if p.sim.sexEnabled && i < source.parentFirstMale {
			continue
		}
		if !p.sim.sexEnabled && source.parentIndividuals[i] == parent1 {
			continue
		}
		weights[i] = source.cachedFitness[i]
	}

	for _, cb := range callbacks {
		w, err := cb.Fn(p.sim, parent1, source, slices.Clone(weights))
		if err != nil {
			return 0, err
		}
		if w == nil {
			continue
		}
		if len(w) != source.parentSize {
			return 0, eidos.NewError(eidos.ErrArityMismatch, op, "returned %d weights for %d individuals.", len(w), source.parentSize)
		}
		total := 0.0
		for i, x := range w {
			if x < 0 {
				return 0, eidos.NewError(eidos.ErrRange, op, "weight %g for individual %d is negative.", x, i)
			}
			if x > 0 && p.sim.sexEnabled && i < source.parentFirstMale {
				return 0, eidos.NewError(eidos.ErrRange, op, "weight for female individual %d must be zero.", i)
			}
			total += x
		}
		if total == 0 {
			return -1, nil
		}
		weights = w
	}

	total := 0.0
	for _, x := range weights {
		total += x
	}
	if total == 0 {
		return -1, nil
	}
	src := p.sim.rng.ForSubsystem(SubsystemMating)
	return int(distuv.NewCategorical(weights, src).Rand()), nil
}

// ApplyModifyChildCallbacks returns false as soon as one callback rejects
// the child.
func (p *Population) ApplyModifyChildCallbacks(ev *ChildEvent, callbacks []*ModifyChildCallback) (bool, error) {
	for _, cb := range callbacks {
		ok, err := cb.Fn(p.sim, ev)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// DoCrossoverMutation builds child from parent strands a and b, switching
// strand at each recombination breakpoint starting from a randomly chosen
// strand, then adds new mutations. A null strand is never copied from.
func (p *Population) DoCrossoverMutation(sp *Subpopulation, child, a, b *Genome) {
	switch {
	case a.null && b.null:
		eidos.Internalf("DoCrossoverMutation", "both parental strands are null.")
	case b.null:
		p.DoClonalMutation(sp, child, a)
		return
	case a.null:
		p.DoClonalMutation(sp, child, b)
		return
	}

	recomb := p.sim.rng.ForSubsystem(SubsystemRecombination)
	if recomb.IntN(2) == 1 {
		a, b = b, a
	}
	breakpoints := p.sim.chromosome.DrawBreakpoints(recomb)

	if len(breakpoints) == 0 {
		child.copyFrom(a)
	} else {
		child.mutations = child.mutations[:0]
		strands := [2]*Genome{a, b}
		start := int64(0)
		for k := 0; k <= len(breakpoints); k++ {
			end := p.sim.chromosome.LastPosition + 1
			if k < len(breakpoints) {
				end = breakpoints[k]
			}
			from := strands[k%2]
			for i := from.firstAtOrAfter(start); i < len(from.mutations) && from.mutations[i].Position < end; i++ {
				child.mutations = append(child.mutations, from.mutations[i])
			}
			start = end
		}
	}
	p.addNewMutations(sp, child)
}

// DoClonalMutation copies parent into child and adds new mutations.
func (p *Population) DoClonalMutation(sp *Subpopulation, child, parent *Genome) {
	if child.null {
		return
	}
	child.copyFrom(parent)
	p.addNewMutations(sp, child)
}

func (p *Population) addNewMutations(sp *Subpopulation, g *Genome) {
	c := p.sim.chromosome
	rng := p.sim.rng.ForSubsystem(SubsystemMutation)
	n := c.DrawMutationCount(rng)
	for range n {
		mt := c.DrawMutationType(rng)
		pos := c.DrawMutationPosition(rng)
		s := mt.DrawSelectionCoefficient(rng)
		g.insertSorted(p.registerMutation(mt, pos, s, sp.ID))
	}
}
