package sim

import (
	"sort"

	"github.com/slim-sim/slim-sim/eidos"
)

// Genome is one haplotype: a position-sorted, duplicate-free list of
// mutations. A null genome is the placeholder for an absent sex chromosome
// and never carries mutations.
type Genome struct {
	mutations []*Mutation
	typ       GenomeType
	null      bool
	subpop    *Subpopulation
	Tag       int64
}

func newGenome(subpop *Subpopulation, typ GenomeType, null bool) *Genome {
	return &Genome{subpop: subpop, typ: typ, null: null}
}

// Mutations returns the position-sorted mutation list; callers must not
// modify it.
func (g *Genome) Mutations() []*Mutation { return g.mutations }

// Count returns the number of mutations carried.
func (g *Genome) Count() int { return len(g.mutations) }

// IsNull reports whether g is a null placeholder.
func (g *Genome) IsNull() bool { return g.null }

// Type returns the modelled chromosome.
func (g *Genome) Type() GenomeType { return g.typ }

// Subpopulation returns the owning subpopulation.
func (g *Genome) Subpopulation() *Subpopulation { return g.subpop }

// firstAtOrAfter returns the index of the first mutation with position >= pos.
func (g *Genome) firstAtOrAfter(pos int64) int {
	return sort.Search(len(g.mutations), func(i int) bool { return g.mutations[i].Position >= pos })
}

// Contains reports whether m is carried, by identity.
func (g *Genome) Contains(m *Mutation) bool {
	for i := g.firstAtOrAfter(m.Position); i < len(g.mutations) && g.mutations[i].Position == m.Position; i++ {
		if g.mutations[i] == m {
			return true
		}
	}
	return false
}

// insertSorted adds m after any mutations already at its position.
func (g *Genome) insertSorted(m *Mutation) {
	if g.null {
		eidos.Internalf("Genome.insertSorted", "mutation %d added to a null genome.", m.ID)
	}
	i := g.firstAtOrAfter(m.Position + 1)
	g.mutations = append(g.mutations, nil)
	copy(g.mutations[i+1:], g.mutations[i:])
	g.mutations[i] = m
}

// removeAll drops every mutation in drop.
func (g *Genome) removeAll(drop map[*Mutation]bool) {
	kept := g.mutations[:0]
	for _, m := range g.mutations {
		if !drop[m] {
			kept = append(kept, m)
		}
	}
	clear(g.mutations[len(kept):])
	g.mutations = kept
}

// CountOfType counts the mutations of type mt.
func (g *Genome) CountOfType(mt *MutationType) int {
	n := 0
	for _, m := range g.mutations {
		if m.Type == mt {
			n++
		}
	}
	return n
}

// MutationsOfType returns the mutations of type mt in position order.
func (g *Genome) MutationsOfType(mt *MutationType) []*Mutation {
	var out []*Mutation
	for _, m := range g.mutations {
		if m.Type == mt {
			out = append(out, m)
		}
	}
	return out
}

// copyFrom replaces g's mutations with src's.
func (g *Genome) copyFrom(src *Genome) {
	g.mutations = append(g.mutations[:0], src.mutations...)
}
