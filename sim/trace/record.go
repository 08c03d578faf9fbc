// Package trace records per-mutation fate events (fixation and loss)
// during a simulation run. It has no dependencies on sim/ and stores pure
// data types.
package trace

// FixationRecord captures one mutation reaching fixation and becoming a
// substitution.
type FixationRecord struct {
	MutationID       int64
	MutationType     int64
	Position         int64
	SelectionCoeff   float64
	OriginGeneration int64
	Generation       int64 // generation in which fixation was detected
}

// SojournTime is the number of generations the mutation segregated.
func (r FixationRecord) SojournTime() int64 { return r.Generation - r.OriginGeneration }

// LossRecord captures one mutation dropping out of every genome.
type LossRecord struct {
	MutationID int64
	Position   int64
	Generation int64
}
