// Tracks population-genetic summaries per generation such as:
// mean fitness, segregating sites, diversity, fixations and losses.

package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarizes the population at the end of one generation.
type GenerationStats struct {
	Generation  int64
	Subpops     int
	Individuals int

	Segregating   int // registered mutations still polymorphic
	Fixed         int // mutations fixed this generation
	Lost          int // mutations lost this generation
	Substitutions int // substitutions so far

	MeanFitness     float64
	FitnessVariance float64

	// MeanMutationsPerGenome counts non-null genomes only.
	MeanMutationsPerGenome float64
	// Diversity is the sum over segregating sites of 2p(1-p).
	Diversity float64
}

// Metrics aggregates statistics about the simulation
// for final reporting.
type Metrics struct {
	Generations []GenerationStats

	TotalFixed int
	TotalLost  int
}

// NewMetrics returns an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{Generations: make([]GenerationStats, 0)}
}

// Record appends one generation's stats.
func (m *Metrics) Record(gs GenerationStats) {
	m.Generations = append(m.Generations, gs)
	m.TotalFixed += gs.Fixed
	m.TotalLost += gs.Lost
}

// Last returns the most recent stats, or false before the first generation.
func (m *Metrics) Last() (GenerationStats, bool) {
	if len(m.Generations) == 0 {
		return GenerationStats{}, false
	}
	return m.Generations[len(m.Generations)-1], true
}

// MeanFitnessSeries returns the mean fitness of every recorded generation.
func (m *Metrics) MeanFitnessSeries() []float64 {
	out := make([]float64, len(m.Generations))
	for i, gs := range m.Generations {
		out[i] = gs.MeanFitness
	}
	return out
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Generations Run      : %d\n", len(m.Generations))
	last, ok := m.Last()
	if !ok {
		return
	}
	fmt.Printf("Subpopulations       : %d\n", last.Subpops)
	fmt.Printf("Individuals          : %d\n", last.Individuals)
	fmt.Printf("Segregating Sites    : %d\n", last.Segregating)
	fmt.Printf("Total Fixed          : %d\n", m.TotalFixed)
	fmt.Printf("Total Lost           : %d\n", m.TotalLost)
	fmt.Printf("Final Mean Fitness   : %.4f\n", last.MeanFitness)
	fmt.Printf("Mean Fitness (run)   : %.4f\n", stat.Mean(m.MeanFitnessSeries(), nil))
	fmt.Printf("Final Diversity      : %.4f\n", last.Diversity)
}

// collectStats summarizes the live generation. Mutation reference counts
// and cached fitness must be current.
func (s *Simulation) collectStats(fixed, lost int) GenerationStats {
	gs := GenerationStats{
		Generation:    s.generation,
		Fixed:         fixed,
		Lost:          lost,
		Segregating:   len(s.pop.registry),
		Substitutions: len(s.pop.substitutions),
	}

	var fitness, perGenome []float64
	for _, sp := range s.pop.Subpopulations() {
		gs.Subpops++
		gs.Individuals += sp.parentSize
		fitness = append(fitness, sp.cachedFitness...)
		for _, g := range sp.parentGenomes {
			if !g.null {
				perGenome = append(perGenome, float64(len(g.mutations)))
			}
		}
	}
	if len(fitness) > 0 {
		gs.MeanFitness, gs.FitnessVariance = stat.MeanVariance(fitness, nil)
	}
	if len(perGenome) > 0 {
		gs.MeanMutationsPerGenome = stat.Mean(perGenome, nil)
	}

	if total := s.pop.totalGenomeCount; total > 0 {
		for _, m := range s.pop.registry {
			p := float64(m.refCount) / float64(total)
			gs.Diversity += 2 * p * (1 - p)
		}
	}
	return gs
}
