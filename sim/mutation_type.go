package sim

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution of fitness effects codes.
const (
	DFEFixed       = "f" // s = mean
	DFEExponential = "e" // mean; negative means deleterious
	DFEGamma       = "g" // mean, shape; negative mean means deleterious
	DFENormal      = "n" // mean, sd
)

// MutationType groups mutations sharing a dominance coefficient and a
// distribution of fitness effects.
type MutationType struct {
	ID        int64
	Dominance float64
	DFE       string
	Params    []float64
	Tag       int64
}

// NewMutationType builds a mutation type from its recipe entry.
func NewMutationType(cfg MutationTypeConfig) *MutationType {
	return &MutationType{
		ID:        cfg.ID,
		Dominance: cfg.Dominance,
		DFE:       cfg.DFE,
		Params:    append([]float64(nil), cfg.Params...),
	}
}

// DrawSelectionCoefficient draws s from the type's DFE.
func (mt *MutationType) DrawSelectionCoefficient(src rand.Source) float64 {
	switch mt.DFE {
	case DFEFixed:
		return mt.Params[0]
	case DFEExponential:
		mean := mt.Params[0]
		s := distuv.Exponential{Rate: 1 / abs(mean), Src: src}.Rand()
		if mean < 0 {
			return -s
		}
		return s
	case DFEGamma:
		mean, shape := mt.Params[0], mt.Params[1]
		s := distuv.Gamma{Alpha: shape, Beta: shape / abs(mean), Src: src}.Rand()
		if mean < 0 {
			return -s
		}
		return s
	case DFENormal:
		return distuv.Normal{Mu: mt.Params[0], Sigma: mt.Params[1], Src: src}.Rand()
	}
	panic(fmt.Sprintf("mutation type m%d: unknown DFE %q", mt.ID, mt.DFE))
}

func (mt *MutationType) String() string { return fmt.Sprintf("MutationType<m%d>", mt.ID) }

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
