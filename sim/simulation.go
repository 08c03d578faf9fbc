package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/sirupsen/logrus"

	"github.com/slim-sim/slim-sim/eidos"
	"github.com/slim-sim/slim-sim/sim/trace"
)

// ErrSimulationInvalid is returned by RunOneGeneration after a
// termination error; the simulation must be rebuilt.
var ErrSimulationInvalid = errors.New("simulation is invalid after a termination error")

// TerminationError carries a script-level failure that ended the run.
type TerminationError struct {
	Generation int64
	Err        error
}

func (e *TerminationError) Error() string {
	return fmt.Sprintf("simulation terminated in generation %d: %v", e.Generation, e.Err)
}

func (e *TerminationError) Unwrap() error { return e.Err }

// Simulation owns one run: its RNG, counters, population, callbacks and
// output sink. Nothing is shared between Simulations.
//
// Thread-safety: NOT thread-safe. Independent Simulations may run on
// separate goroutines.
type Simulation struct {
	cfg *Config
	rng *PartitionedRNG

	generation int64
	pedigrees  bool
	sexEnabled bool

	pedigreeCounter int64
	mutationCounter int64

	chromosome    *Chromosome
	mutationTypes *treemap.Map // int64 -> *MutationType
	pop           *Population

	early, late []*ScriptBlock
	mateChoice  []*MateChoiceCallback
	modifyChild []*ModifyChildCallback

	outputs []OutputConfig
	out     *bytes.Buffer
	tee     io.Writer

	stopped bool
	invalid error

	metrics *Metrics
	trace   *trace.SimulationTrace
}

// NewSimulation validates cfg, builds the chromosome and mutation types,
// and leaves the simulation at generation 1 with the recipe's
// subpopulations created.
func NewSimulation(cfg *Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recipe: %w", err)
	}

	s := &Simulation{
		cfg:           cfg,
		rng:           NewPartitionedRNG(cfg.Seed),
		pedigrees:     cfg.Pedigrees,
		sexEnabled:    cfg.Sex,
		mutationTypes: treemap.NewWith(utils.Int64Comparator),
		outputs:       cfg.Outputs,
		out:           &bytes.Buffer{},
		metrics:       NewMetrics(),
		trace:         trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(cfg.Trace)}),
	}
	s.pop = newPopulation(s)

	types := make([]*MutationType, len(cfg.MutationTypes))
	weights := make([]float64, len(cfg.MutationTypes))
	for i, mtc := range cfg.MutationTypes {
		types[i] = NewMutationType(mtc)
		weights[i] = mtc.Weight
		s.mutationTypes.Put(mtc.ID, types[i])
	}
	s.chromosome = NewChromosome(cfg.Chromosome, types, weights)

	s.generation = 1
	for _, spc := range cfg.Subpopulations {
		var sp *Subpopulation
		var err error
		if spc.SourceID != nil {
			sp, err = s.pop.AddSubpopulationFromSource(spc.ID, s.pop.Subpopulation(*spc.SourceID), spc.Size, spc.SexRatio)
		} else {
			sp, err = s.pop.AddSubpopulation(spc.ID, spc.Size, spc.SexRatio)
		}
		if err != nil {
			return nil, fmt.Errorf("creating subpopulation p%d: %w", spc.ID, err)
		}
		sp.SelfingRate = spc.SelfingRate
		sp.CloningRate = spc.CloningRate
	}
	for _, spc := range cfg.Subpopulations {
		target := s.pop.Subpopulation(spc.ID)
		for src, rate := range spc.MigrationMap {
			if err := s.pop.SetMigration(target, src, rate); err != nil {
				return nil, fmt.Errorf("migration into p%d: %w", spc.ID, err)
			}
		}
	}
	return s, nil
}

// Trace returns the fate trace, or nil when tracing is disabled.
func (s *Simulation) Trace() *trace.SimulationTrace { return s.trace }

// Generation is the generation about to run (or, after the run ends, the
// last one completed plus one). It is 0 only before initialization.
func (s *Simulation) Generation() int64 { return s.generation }

func (s *Simulation) Config() *Config         { return s.cfg }
func (s *Simulation) Population() *Population { return s.pop }
func (s *Simulation) Chromosome() *Chromosome { return s.chromosome }
func (s *Simulation) RNG() *PartitionedRNG    { return s.rng }
func (s *Simulation) Metrics() *Metrics       { return s.metrics }

// SexEnabled reports whether separate sexes are modelled.
func (s *Simulation) SexEnabled() bool { return s.sexEnabled }

// PedigreesEnabled reports whether pedigree IDs are assigned.
func (s *Simulation) PedigreesEnabled() bool { return s.pedigrees }

// Output returns everything written to the output sink so far.
func (s *Simulation) Output() *bytes.Buffer { return s.out }

// TeeOutput makes later output go to w as well as the sink.
func (s *Simulation) TeeOutput(w io.Writer) { s.tee = w }

func (s *Simulation) writer() io.Writer {
	if s.tee == nil {
		return s.out
	}
	return io.MultiWriter(s.out, s.tee)
}

// MutationType returns mutation type id, or nil.
func (s *Simulation) MutationType(id int64) *MutationType {
	v, ok := s.mutationTypes.Get(id)
	if !ok {
		return nil
	}
	return v.(*MutationType)
}

// MutationTypes returns every mutation type in ID order.
func (s *Simulation) MutationTypes() []*MutationType {
	out := make([]*MutationType, 0, s.mutationTypes.Size())
	for _, v := range s.mutationTypes.Values() {
		out = append(out, v.(*MutationType))
	}
	return out
}

func (s *Simulation) nextPedigreeID() int64 {
	id := s.pedigreeCounter
	s.pedigreeCounter++
	return id
}

func (s *Simulation) nextMutationID() int64 {
	id := s.mutationCounter
	s.mutationCounter++
	return id
}

// Stop ends the run after the current generation completes.
func (s *Simulation) Stop() { s.stopped = true }

// Invalid returns the termination error that invalidated the simulation.
func (s *Simulation) Invalid() error { return s.invalid }

// ExecContext returns the context methods run in: output to the sink,
// host set to s.
func (s *Simulation) ExecContext() *eidos.ExecContext {
	return &eidos.ExecContext{Output: s.writer(), Host: s}
}

// RunOneGeneration advances exactly one generation:
// early() events, offspring generation, generation swap, fixation
// bookkeeping, late() events, scheduled output. It returns false once the
// last generation has run or Stop was called.
func (s *Simulation) RunOneGeneration() (bool, error) {
	if s.invalid != nil {
		return false, ErrSimulationInvalid
	}
	if s.stopped || s.generation > s.cfg.Generations {
		return false, nil
	}

	if err := s.runGeneration(); err != nil {
		s.invalid = &TerminationError{Generation: s.generation, Err: err}
		logrus.Errorf("%v", s.invalid)
		return false, s.invalid
	}

	s.generation++
	return !s.stopped && s.generation <= s.cfg.Generations, nil
}

func (s *Simulation) runGeneration() error {
	gen := s.generation
	logrus.Debugf("[gen %d] start", gen)

	if err := s.runEvents(s.early); err != nil {
		return fmt.Errorf("early() event: %w", err)
	}
	if s.stopped {
		return nil
	}

	s.pop.UpdateFitness()
	for _, sp := range s.pop.Subpopulations() {
		if err := s.pop.EvolveSubpopulation(sp); err != nil {
			return err
		}
	}
	s.pop.childGenerationValid = true
	s.pop.SwapGenerations()

	s.pop.TallyMutationReferences()
	fixed, lost := s.pop.RemoveFixedMutations()
	s.pop.UpdateFitness()

	if err := s.runEvents(s.late); err != nil {
		return fmt.Errorf("late() event: %w", err)
	}

	if err := s.runOutputs(); err != nil {
		return err
	}

	s.metrics.Record(s.collectStats(fixed, lost))
	return nil
}

// Run advances until the last generation or Stop.
func (s *Simulation) Run() error {
	for {
		more, err := s.RunOneGeneration()
		if err != nil {
			return err
		}
		if !more {
			logrus.Infof("[gen %d] simulation finished", s.generation-1)
			return nil
		}
	}
}
