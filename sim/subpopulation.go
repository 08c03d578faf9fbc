package sim

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/slim-sim/slim-sim/eidos"
)

// Subpopulation holds two generations of individuals: the parents, which
// are the live population, and the children being generated from them.
// Genomes of individual i are at 2*i and 2*i+1 of the matching genome
// slice. With separate sexes, females occupy [0, firstMaleIndex) and males
// the rest.
type Subpopulation struct {
	ID  int64
	Tag int64

	pop *Population

	parentSize, childSize           int
	parentSexRatio, childSexRatio   float64
	parentFirstMale, childFirstMale int
	parentGenomes, childGenomes     []*Genome
	parentIndividuals               []*Individual
	childIndividuals                []*Individual

	SelfingRate float64
	CloningRate float64

	// migrants maps source subpopulation ID to the fraction of children
	// drawn from it; ordered so migrant draws are reproducible.
	migrants *treemap.Map

	cachedFitness []float64
	femaleDraw    *parentLookup
	maleDraw      *parentLookup
}

func newSubpopulation(pop *Population, id int64, size int, sexRatio float64) *Subpopulation {
	sp := &Subpopulation{
		ID:             id,
		pop:            pop,
		parentSize:     size,
		childSize:      size,
		parentSexRatio: sexRatio,
		childSexRatio:  sexRatio,
		migrants:       treemap.NewWith(utils.Int64Comparator),
	}
	sp.parentFirstMale = sp.firstMaleIndex(size, sexRatio)
	sp.childFirstMale = sp.parentFirstMale
	sp.parentIndividuals, sp.parentGenomes = sp.allocateGeneration(size, sp.parentFirstMale)
	return sp
}

// firstMaleIndex returns size when sexes are not modelled.
func (sp *Subpopulation) firstMaleIndex(size int, sexRatio float64) int {
	if !sp.pop.sim.sexEnabled {
		return size
	}
	males := int(math.Round(sexRatio * float64(size)))
	return size - males
}

func (sp *Subpopulation) allocateGeneration(size, firstMale int) ([]*Individual, []*Genome) {
	sexEnabled := sp.pop.sim.sexEnabled
	chromType := sp.pop.sim.chromosome.Type

	individuals := make([]*Individual, size)
	genomes := make([]*Genome, 2*size)
	for i := range individuals {
		sex := Hermaphrodite
		if sexEnabled {
			sex = Female
			if i >= firstMale {
				sex = Male
			}
		}
		individuals[i] = newIndividual(sp, i, sex)

		switch {
		case chromType == GenomeX && sex == Male:
			genomes[2*i] = newGenome(sp, GenomeX, false)
			genomes[2*i+1] = newGenome(sp, GenomeY, true)
		default:
			genomes[2*i] = newGenome(sp, chromType, false)
			genomes[2*i+1] = newGenome(sp, chromType, false)
		}
	}
	return individuals, genomes
}

// generateChildrenToFit allocates a fresh child generation of childSize.
func (sp *Subpopulation) generateChildrenToFit() {
	sp.childFirstMale = sp.firstMaleIndex(sp.childSize, sp.childSexRatio)
	sp.childIndividuals, sp.childGenomes = sp.allocateGeneration(sp.childSize, sp.childFirstMale)
}

// ParentSize is the number of individuals in the live generation.
func (sp *Subpopulation) ParentSize() int { return sp.parentSize }

// ChildSize is the size the next generation will have.
func (sp *Subpopulation) ChildSize() int { return sp.childSize }

// FirstMaleIndex is the index of the first male in the live generation,
// or ParentSize without separate sexes.
func (sp *Subpopulation) FirstMaleIndex() int { return sp.parentFirstMale }

// SexRatio is the fraction of males in the live generation.
func (sp *Subpopulation) SexRatio() float64 { return sp.parentSexRatio }

// Individuals returns the live generation; callers must not modify it.
func (sp *Subpopulation) Individuals() []*Individual { return sp.parentIndividuals }

// Genomes returns the live generation's genomes; callers must not modify it.
func (sp *Subpopulation) Genomes() []*Genome { return sp.parentGenomes }

// SetChildSexRatio sets the male fraction of the next generation.
func (sp *Subpopulation) SetChildSexRatio(ratio float64) error {
	if !sp.pop.sim.sexEnabled {
		return eidos.NewError(eidos.ErrUndefinedOperation, "setSexRatio()", "sex ratio cannot be set in a model without separate sexes.")
	}
	if ratio < 0 || ratio > 1 {
		return eidos.NewError(eidos.ErrRange, "setSexRatio()", "sex ratio %g is out of range [0, 1].", ratio)
	}
	sp.childSexRatio = ratio
	return nil
}

// MigrantFractions returns source IDs and fractions in ID order.
func (sp *Subpopulation) MigrantFractions() ([]int64, []float64) {
	ids := make([]int64, 0, sp.migrants.Size())
	rates := make([]float64, 0, sp.migrants.Size())
	it := sp.migrants.Iterator()
	for it.Next() {
		ids = append(ids, it.Key().(int64))
		rates = append(rates, it.Value().(float64))
	}
	return ids, rates
}

func (sp *Subpopulation) totalMigrantFraction() float64 {
	total := 0.0
	for _, v := range sp.migrants.Values() {
		total += v.(float64)
	}
	return total
}

// === fitness ===

// UpdateFitness recomputes cached fitness for the live generation and
// rebuilds the parent lookup tables.
func (sp *Subpopulation) UpdateFitness() {
	sp.cachedFitness = make([]float64, sp.parentSize)
	for i := range sp.parentIndividuals {
		sp.cachedFitness[i] = genomeFitness(sp.parentGenomes[2*i], sp.parentGenomes[2*i+1])
	}

	src := sp.pop.sim.rng.ForSubsystem(SubsystemMating)
	if sp.pop.sim.sexEnabled {
		sp.femaleDraw = newParentLookup(sp.cachedFitness, 0, sp.parentFirstMale, src)
		sp.maleDraw = newParentLookup(sp.cachedFitness, sp.parentFirstMale, sp.parentSize, src)
	} else {
		sp.femaleDraw = newParentLookup(sp.cachedFitness, 0, sp.parentSize, src)
		sp.maleDraw = sp.femaleDraw
	}
}

// CachedFitness returns the fitness of individual i from the last
// UpdateFitness.
func (sp *Subpopulation) CachedFitness(i int) (float64, error) {
	if i < 0 || i >= len(sp.cachedFitness) {
		return 0, eidos.NewError(eidos.ErrIndex, "cachedFitness()", "index %d out of range.", i)
	}
	return sp.cachedFitness[i], nil
}

// genomeFitness is multiplicative: 1+s for homozygous (or hemizygous)
// mutations and 1+h*s for heterozygous ones, floored at 0.
func genomeFitness(g1, g2 *Genome) float64 {
	w := 1.0
	switch {
	case g1.null && g2.null:
		return w
	case g2.null:
		for _, m := range g1.mutations {
			w *= 1 + m.SelectionCoeff
		}
		return math.Max(w, 0)
	case g1.null:
		for _, m := range g2.mutations {
			w *= 1 + m.SelectionCoeff
		}
		return math.Max(w, 0)
	}

	for _, m := range mergeUnique(g1.mutations, g2.mutations, nil) {
		if g1.Contains(m) && g2.Contains(m) {
			w *= 1 + m.SelectionCoeff
		} else {
			w *= 1 + m.Type.Dominance*m.SelectionCoeff
		}
		if w <= 0 {
			return 0
		}
	}
	return w
}

// parentLookup draws indices in [lo, hi) in proportion to fitness.
type parentLookup struct {
	lo, hi  int
	fitness []float64
	cat     *distuv.Categorical
	src     rand.Source
}

func newParentLookup(fitness []float64, lo, hi int, src rand.Source) *parentLookup {
	l := &parentLookup{lo: lo, hi: hi, fitness: fitness, src: src}
	if hi <= lo {
		return l
	}
	if floats.Sum(fitness[lo:hi]) > 0 {
		c := distuv.NewCategorical(fitness[lo:hi], src)
		l.cat = &c
	}
	return l
}

// draw returns -1 when the range is empty. When every candidate has zero
// fitness the draw is uniform.
func (l *parentLookup) draw() int {
	if l.hi <= l.lo {
		return -1
	}
	if l.cat == nil {
		return l.lo + int(l.src.Uint64()%uint64(l.hi-l.lo))
	}
	return l.lo + int(l.cat.Rand())
}

// drawExcluding draws as draw does but never returns skip. It returns -1
// when no other candidate has positive fitness.
func (l *parentLookup) drawExcluding(skip int) int {
	n := l.hi - l.lo
	if skip < l.lo || skip >= l.hi {
		return l.draw()
	}
	if n < 2 {
		return -1
	}
	if l.cat == nil {
		k := l.lo + int(l.src.Uint64()%uint64(n-1))
		if k >= skip {
			k++
		}
		return k
	}
	weights := slices.Clone(l.fitness[l.lo:l.hi])
	weights[skip-l.lo] = 0
	if floats.Sum(weights) <= 0 {
		return -1
	}
	return l.lo + int(distuv.NewCategorical(weights, l.src).Rand())
}

func (sp *Subpopulation) String() string { return fmt.Sprintf("Subpopulation<p%d>", sp.ID) }
