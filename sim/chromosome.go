package sim

import (
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// GenomeType identifies which chromosome a genome models.
type GenomeType int

const (
	GenomeAutosome GenomeType = iota
	GenomeX
	GenomeY
)

func (t GenomeType) String() string {
	switch t {
	case GenomeX:
		return "X"
	case GenomeY:
		return "Y"
	}
	return "A"
}

// Chromosome holds the uniform mutation and recombination rates over
// positions [0, LastPosition], and the weighted mutation types new
// mutations are drawn from.
type Chromosome struct {
	Type              GenomeType
	LastPosition      int64
	MutationRate      float64
	RecombinationRate float64

	mutationTypes []*MutationType
	typeWeights   []float64
}

// NewChromosome builds a chromosome from its recipe entry. types and
// weights are parallel.
func NewChromosome(cfg ChromosomeConfig, types []*MutationType, weights []float64) *Chromosome {
	t := GenomeAutosome
	if cfg.Type == "X" {
		t = GenomeX
	}
	return &Chromosome{
		Type:              t,
		LastPosition:      cfg.LastPosition,
		MutationRate:      cfg.MutationRate,
		RecombinationRate: cfg.RecombinationRate,
		mutationTypes:     types,
		typeWeights:       weights,
	}
}

func (c *Chromosome) length() float64 { return float64(c.LastPosition + 1) }

// DrawMutationCount draws the number of new mutations on one gamete.
func (c *Chromosome) DrawMutationCount(src rand.Source) int {
	lambda := c.MutationRate * c.length()
	if lambda <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: lambda, Src: src}.Rand())
}

// DrawMutationPosition draws a uniform position on the chromosome.
func (c *Chromosome) DrawMutationPosition(rng *rand.Rand) int64 {
	return rng.Int64N(c.LastPosition + 1)
}

// DrawMutationType picks a mutation type in proportion to its weight.
func (c *Chromosome) DrawMutationType(src rand.Source) *MutationType {
	if len(c.mutationTypes) == 1 {
		return c.mutationTypes[0]
	}
	idx := int(distuv.NewCategorical(c.typeWeights, src).Rand())
	return c.mutationTypes[idx]
}

// DrawBreakpoints returns sorted, distinct crossover positions in
// [1, LastPosition]. A breakpoint at p means position p comes from the
// other strand.
func (c *Chromosome) DrawBreakpoints(rng *rand.Rand) []int64 {
	if c.LastPosition < 1 || c.RecombinationRate <= 0 {
		return nil
	}
	lambda := c.RecombinationRate * float64(c.LastPosition)
	n := int(distuv.Poisson{Lambda: lambda, Src: rng}.Rand())
	if n == 0 {
		return nil
	}
	bps := make([]int64, n)
	for i := range bps {
		bps[i] = 1 + rng.Int64N(c.LastPosition)
	}
	slices.Sort(bps)
	return slices.Compact(bps)
}
