package sim

import (
	"fmt"
	"slices"

	"github.com/slim-sim/slim-sim/eidos"
)

// Sex of an individual.
type Sex int

const (
	Hermaphrodite Sex = iota
	Female
	Male
)

// String returns the one-letter designation used in output.
func (s Sex) String() string {
	switch s {
	case Female:
		return "F"
	case Male:
		return "M"
	}
	return "H"
}

// Individual is one organism in one generation slot of a subpopulation.
// Its genomes live in the subpopulation's genome array at 2*index and
// 2*index+1; Individual holds no genome pointers of its own.
//
// Individuals are owned by their subpopulation, so they are not reference
// counted.
type Individual struct {
	subpop *Subpopulation
	index  int
	sex    Sex
	Tag    int64

	pedigreeID     int64
	parentIDs      [2]int64
	grandparentIDs [4]int64
}

func newIndividual(subpop *Subpopulation, index int, sex Sex) *Individual {
	return &Individual{
		subpop:         subpop,
		index:          index,
		sex:            sex,
		pedigreeID:     -1,
		parentIDs:      [2]int64{-1, -1},
		grandparentIDs: [4]int64{-1, -1, -1, -1},
	}
}

func (ind *Individual) Subpopulation() *Subpopulation { return ind.subpop }
func (ind *Individual) Index() int                    { return ind.index }
func (ind *Individual) Sex() Sex                      { return ind.sex }

// PedigreeID is -1 when pedigree tracking is off.
func (ind *Individual) PedigreeID() int64 { return ind.pedigreeID }

func (ind *Individual) ParentIDs() [2]int64      { return ind.parentIDs }
func (ind *Individual) GrandparentIDs() [4]int64 { return ind.grandparentIDs }

// setPedigree assigns id and records the ancestry of p1 and p2, which may
// be nil for founders.
func (ind *Individual) setPedigree(id int64, p1, p2 *Individual) {
	ind.pedigreeID = id
	if p1 == nil || p2 == nil {
		return
	}
	ind.parentIDs = [2]int64{p1.pedigreeID, p2.pedigreeID}
	ind.grandparentIDs = [4]int64{p1.parentIDs[0], p1.parentIDs[1], p2.parentIDs[0], p2.parentIDs[1]}
}

// Genomes returns the individual's two genomes. The individual must be a
// member of exactly one of its subpopulation's generations; anything else
// is an engine invariant violation.
func (ind *Individual) Genomes() (*Genome, *Genome) {
	sp := ind.subpop
	inParent := ind.index < len(sp.parentIndividuals) && sp.parentIndividuals[ind.index] == ind
	inChild := ind.index < len(sp.childIndividuals) && sp.childIndividuals[ind.index] == ind

	var genomes []*Genome
	switch {
	case inParent && !inChild:
		genomes = sp.parentGenomes
	case inChild && !inParent:
		genomes = sp.childGenomes
	default:
		eidos.Internalf("Individual.Genomes", "individual %d of p%d is not a member of exactly one generation.", ind.index, sp.ID)
	}
	return genomes[2*ind.index], genomes[2*ind.index+1]
}

// RelatednessTo returns the coefficient of relatedness to other: 1 for the
// same individual, otherwise 0.125 per shared grandparent (when both have
// grandparent data), else 0.25 per shared parent, capped at 0.5.
func (ind *Individual) RelatednessTo(other *Individual) float64 {
	if ind == other {
		return 1.0
	}

	if ind.grandparentIDs[0] != -1 && other.grandparentIDs[0] != -1 {
		return min(0.125*float64(sharedIDs(ind.grandparentIDs[:], other.grandparentIDs[:])), 0.5)
	}

	if ind.parentIDs[0] != -1 && other.parentIDs[0] != -1 {
		return min(0.25*float64(sharedIDs(ind.parentIDs[:], other.parentIDs[:])), 0.5)
	}
	return 0.0
}

// sharedIDs counts the entries of a that appear anywhere in b.
func sharedIDs(a, b []int64) int {
	n := 0
	for _, x := range a {
		if x != -1 && slices.Contains(b, x) {
			n++
		}
	}
	return n
}

// UniqueMutations merges the two genomes by position. At equal positions
// genome 1's mutations come first, followed by genome 2's that are not
// the same object as one of genome 1's at that position.
func (ind *Individual) UniqueMutations() []*Mutation {
	g1, g2 := ind.Genomes()
	return mergeUnique(g1.mutations, g2.mutations, nil)
}

// UniqueMutationsOfType is UniqueMutations restricted to type mt.
func (ind *Individual) UniqueMutationsOfType(mt *MutationType) []*Mutation {
	g1, g2 := ind.Genomes()
	return mergeUnique(g1.mutations, g2.mutations, mt)
}

// mergeUnique merges two position-sorted lists. mt, if non-nil, filters
// by mutation type.
func mergeUnique(a, b []*Mutation, mt *MutationType) []*Mutation {
	out := make([]*Mutation, 0, len(a)+len(b))
	i, j := 0, 0
	skip := func(list []*Mutation, k int) int {
		for mt != nil && k < len(list) && list[k].Type != mt {
			k++
		}
		return k
	}

	for {
		i, j = skip(a, i), skip(b, j)
		if i >= len(a) || j >= len(b) {
			break
		}
		pa, pb := a[i].Position, b[j].Position
		switch {
		case pa < pb:
			out = append(out, a[i])
			i++
		case pb < pa:
			out = append(out, b[j])
			j++
		default:
			start := len(out)
			for ; i < len(a) && a[i].Position == pa; i++ {
				if mt == nil || a[i].Type == mt {
					out = append(out, a[i])
				}
			}
			fromA := out[start:]
			for ; j < len(b) && b[j].Position == pa; j++ {
				if (mt == nil || b[j].Type == mt) && !slices.Contains(fromA, b[j]) {
					out = append(out, b[j])
				}
			}
		}
	}
	for ; i < len(a); i++ {
		if mt == nil || a[i].Type == mt {
			out = append(out, a[i])
		}
	}
	for ; j < len(b); j++ {
		if mt == nil || b[j].Type == mt {
			out = append(out, b[j])
		}
	}
	return out
}

// ContainsMutation reports whether either genome carries m.
func (ind *Individual) ContainsMutation(m *Mutation) bool {
	g1, g2 := ind.Genomes()
	return g1.Contains(m) || g2.Contains(m)
}

// CountOfMutationsOfType counts mt's mutations over both genomes; a
// homozygous mutation counts twice.
func (ind *Individual) CountOfMutationsOfType(mt *MutationType) int {
	g1, g2 := ind.Genomes()
	return g1.CountOfType(mt) + g2.CountOfType(mt)
}

func (ind *Individual) String() string {
	return fmt.Sprintf("Individual<p%d:i%d>", ind.subpop.ID, ind.index)
}
