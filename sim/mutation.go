package sim

import (
	"fmt"

	"github.com/slim-sim/slim-sim/eidos"
)

// Mutation is one segregating mutation. Its lifetime is owned by the
// population's registry; genomes hold plain pointers to it.
type Mutation struct {
	ID               int64
	Type             *MutationType
	Position         int64
	SelectionCoeff   float64
	SubpopID         int64
	OriginGeneration int64
	Tag              int64

	// refCount is the number of genomes carrying the mutation as of the
	// last TallyMutationReferences.
	refCount int
}

// RefCount returns the tally from the last TallyMutationReferences.
func (m *Mutation) RefCount() int { return m.refCount }

func (m *Mutation) String() string { return fmt.Sprintf("Mutation<%d:%d>", m.ID, m.Position) }

// Substitution is the permanent record of a fixed mutation.
// Substitutions are internally owned, so they are reference counted.
type Substitution struct {
	eidos.RefCounted

	ID                 int64
	Type               *MutationType
	Position           int64
	SelectionCoeff     float64
	SubpopID           int64
	OriginGeneration   int64
	FixationGeneration int64
	Tag                int64
}

// NewSubstitution archives m as fixed in generation gen.
func NewSubstitution(m *Mutation, gen int64) *Substitution {
	return &Substitution{
		ID:                 m.ID,
		Type:               m.Type,
		Position:           m.Position,
		SelectionCoeff:     m.SelectionCoeff,
		SubpopID:           m.SubpopID,
		OriginGeneration:   m.OriginGeneration,
		FixationGeneration: gen,
		Tag:                m.Tag,
	}
}

func (s *Substitution) String() string { return fmt.Sprintf("Substitution<%d:%d>", s.ID, s.Position) }
