package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/slim-sim/slim-sim/sim"
)

type MemoryStore struct {
	mu            sync.RWMutex
	initialized   bool
	runs          map[string]RunRecord
	stats         map[string][]sim.GenerationStats
	substitutions map[string][]SubstitutionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]RunRecord)
	s.stats = make(map[string][]sim.GenerationStats)
	s.substitutions = make(map[string][]SubstitutionRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) SaveGenerationStats(_ context.Context, runID string, stats []sim.GenerationStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.stats[runID] = slices.Clone(stats)
	return nil
}

func (s *MemoryStore) GetGenerationStats(_ context.Context, runID string) ([]sim.GenerationStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.stats[runID]
	return slices.Clone(stats), ok, nil
}

func (s *MemoryStore) SaveSubstitutions(_ context.Context, runID string, subs []SubstitutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.substitutions[runID] = slices.Clone(subs)
	return nil
}

func (s *MemoryStore) GetSubstitutions(_ context.Context, runID string) ([]SubstitutionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs, ok := s.substitutions[runID]
	return slices.Clone(subs), ok, nil
}

func (s *MemoryStore) Close() error { return nil }

var errNotInitialized = errors.New("store is not initialized")
