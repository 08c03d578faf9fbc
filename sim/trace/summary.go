package trace

import "gonum.org/v1/gonum/stat"

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	FixedCount int
	LostCount  int

	// MeanSojournTime is the mean number of generations between origin
	// and fixation; MaxSojournTime the longest.
	MeanSojournTime float64
	MaxSojournTime  int64

	MeanFixedSelectionCoeff float64
	FixationsByType         map[int64]int // mutation type ID → fixations
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		FixationsByType: make(map[int64]int),
	}
	if st == nil {
		return summary
	}

	summary.FixedCount = len(st.Fixations)
	summary.LostCount = len(st.Losses)

	if len(st.Fixations) > 0 {
		sojourn := make([]float64, len(st.Fixations))
		coeffs := make([]float64, len(st.Fixations))
		for i, f := range st.Fixations {
			summary.FixationsByType[f.MutationType]++
			sojourn[i] = float64(f.SojournTime())
			coeffs[i] = f.SelectionCoeff
			summary.MaxSojournTime = max(summary.MaxSojournTime, f.SojournTime())
		}
		summary.MeanSojournTime = stat.Mean(sojourn, nil)
		summary.MeanFixedSelectionCoeff = stat.Mean(coeffs, nil)
	}

	return summary
}
