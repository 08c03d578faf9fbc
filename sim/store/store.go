// Package store persists finished simulation runs: the run record, the
// per-generation statistics and the substitutions.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cnf/structhash"
	"github.com/google/uuid"

	"github.com/slim-sim/slim-sim/sim"
)

// Store defines the persistence operations for run results.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	SaveGenerationStats(ctx context.Context, runID string, stats []sim.GenerationStats) error
	GetGenerationStats(ctx context.Context, runID string) ([]sim.GenerationStats, bool, error)
	SaveSubstitutions(ctx context.Context, runID string, subs []SubstitutionRecord) error
	GetSubstitutions(ctx context.Context, runID string) ([]SubstitutionRecord, bool, error)
	Close() error
}

// RunRecord identifies one finished run. ConfigHash fingerprints the
// recipe, so replicates of one recipe share it and differ by Seed.
type RunRecord struct {
	ID               string    `json:"id"`
	ConfigHash       string    `json:"config_hash"`
	Seed             int64     `json:"seed"`
	Generations      int64     `json:"generations"`
	LastGeneration   int64     `json:"last_generation"`
	Terminated       string    `json:"terminated,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	Substitutions    int       `json:"substitutions"`
	SegregatingSites int       `json:"segregating_sites"`
}

// SubstitutionRecord is the stored form of a sim.Substitution.
type SubstitutionRecord struct {
	ID                 int64   `json:"id"`
	MutationType       int64   `json:"mutation_type"`
	Position           int64   `json:"position"`
	SelectionCoeff     float64 `json:"selection_coeff"`
	SubpopID           int64   `json:"subpop_id"`
	OriginGeneration   int64   `json:"origin_generation"`
	FixationGeneration int64   `json:"fixation_generation"`
}

// ConfigHash fingerprints a recipe. The seed is excluded.
func ConfigHash(cfg *sim.Config) (string, error) {
	c := *cfg
	c.Seed = 0
	h, err := structhash.Hash(c, 1)
	if err != nil {
		return "", fmt.Errorf("hashing recipe: %w", err)
	}
	return h, nil
}

// NewRunRecord describes s under a fresh run ID. runErr is the error Run
// returned, if any.
func NewRunRecord(s *sim.Simulation, runErr error) (RunRecord, error) {
	hash, err := ConfigHash(s.Config())
	if err != nil {
		return RunRecord{}, err
	}
	run := RunRecord{
		ID:             uuid.NewString(),
		ConfigHash:     hash,
		Seed:           s.Config().Seed,
		Generations:    s.Config().Generations,
		LastGeneration: s.Generation() - 1,
		CreatedAt:      time.Now().UTC(),
		Substitutions:  len(s.Population().Substitutions()),
	}
	if last, ok := s.Metrics().Last(); ok {
		run.LastGeneration = last.Generation
		run.SegregatingSites = last.Segregating
	}
	if runErr != nil {
		run.Terminated = runErr.Error()
	}
	return run, nil
}

// SubstitutionRecords converts the population's substitutions.
func SubstitutionRecords(subs []*sim.Substitution) []SubstitutionRecord {
	out := make([]SubstitutionRecord, len(subs))
	for i, s := range subs {
		out[i] = SubstitutionRecord{
			ID:                 s.ID,
			MutationType:       s.Type.ID,
			Position:           s.Position,
			SelectionCoeff:     s.SelectionCoeff,
			SubpopID:           s.SubpopID,
			OriginGeneration:   s.OriginGeneration,
			FixationGeneration: s.FixationGeneration,
		}
	}
	return out
}

// SaveSimulation writes the run record, statistics and substitutions of
// s and returns the record.
func SaveSimulation(ctx context.Context, st Store, s *sim.Simulation, runErr error) (RunRecord, error) {
	run, err := NewRunRecord(s, runErr)
	if err != nil {
		return RunRecord{}, err
	}
	if err := st.SaveRun(ctx, run); err != nil {
		return RunRecord{}, fmt.Errorf("save run %s: %w", run.ID, err)
	}
	if err := st.SaveGenerationStats(ctx, run.ID, s.Metrics().Generations); err != nil {
		return RunRecord{}, fmt.Errorf("save generation stats %s: %w", run.ID, err)
	}
	if err := st.SaveSubstitutions(ctx, run.ID, SubstitutionRecords(s.Population().Substitutions())); err != nil {
		return RunRecord{}, fmt.Errorf("save substitutions %s: %w", run.ID, err)
	}
	return run, nil
}
