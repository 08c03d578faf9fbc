package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/slim-sim/slim-sim/sim/trace"
)

// Config is a simulation recipe: everything needed to construct and run
// one Simulation. Loaded from YAML with LoadConfig.
type Config struct {
	Seed        int64 `yaml:"seed"`
	Generations int64 `yaml:"generations"`

	// Pedigrees enables pedigree ID assignment and relatedness queries.
	Pedigrees bool `yaml:"pedigrees"`
	// Sex enables separate sexes; subpopulation sex ratios then apply.
	Sex bool `yaml:"sex"`
	// Trace selects fate tracing: "none" (default), "fixations" or "all".
	Trace string `yaml:"trace,omitempty"`

	Chromosome     ChromosomeConfig     `yaml:"chromosome"`
	MutationTypes  []MutationTypeConfig `yaml:"mutation_types"`
	Subpopulations []SubpopConfig       `yaml:"subpopulations"`
	Outputs        []OutputConfig       `yaml:"outputs,omitempty"`
}

// ChromosomeConfig describes the single modelled chromosome. Rates are
// uniform along its length.
type ChromosomeConfig struct {
	// Type is "A" (autosome, default) or "X" (males carry a null Y placeholder).
	Type              string  `yaml:"type,omitempty"`
	LastPosition      int64   `yaml:"last_position"`
	MutationRate      float64 `yaml:"mutation_rate"`
	RecombinationRate float64 `yaml:"recombination_rate"`
}

// MutationTypeConfig declares one mutation type and its share of new
// mutations.
type MutationTypeConfig struct {
	ID        int64     `yaml:"id"`
	Dominance float64   `yaml:"dominance"`
	DFE       string    `yaml:"dfe"`
	Params    []float64 `yaml:"params"`
	Weight    float64   `yaml:"weight"`
}

// SubpopConfig declares a subpopulation created at the start of
// generation 1, optionally split from an earlier one.
type SubpopConfig struct {
	ID           int64             `yaml:"id"`
	Size         int               `yaml:"size"`
	// SexRatio is the male fraction. With sex enabled it is required and
	// must lie strictly between 0 and 1.
	SexRatio     float64           `yaml:"sex_ratio,omitempty"`
	SelfingRate  float64           `yaml:"selfing_rate,omitempty"`
	CloningRate  float64           `yaml:"cloning_rate,omitempty"`
	SourceID     *int64            `yaml:"source,omitempty"`
	MigrationMap map[int64]float64 `yaml:"migration,omitempty"`
}

// OutputConfig schedules one output event at the end of a generation.
type OutputConfig struct {
	Generation int64 `yaml:"generation"`
	// Kind is one of "all", "sample", "ms", "fixed".
	Kind     string `yaml:"kind"`
	SubpopID int64  `yaml:"subpop,omitempty"`
	Size     int    `yaml:"size,omitempty"`
	// SexFilter restricts sampled genomes: "*" (default), "F", "M" or "H".
	SexFilter string `yaml:"sex,omitempty"`
}

var validDFEs = map[string]int{
	DFEFixed:       1,
	DFEExponential: 1,
	DFEGamma:       2,
	DFENormal:      2,
}

var validOutputKinds = map[string]bool{
	OutputAll:    true,
	OutputSample: true,
	OutputMS:     true,
	OutputFixed:  true,
}

var validChromosomeTypes = map[string]bool{
	"":  true,
	"A": true,
	"X": true,
}

var validSexFilters = map[string]bool{
	"":  true,
	"*": true,
	"F": true,
	"M": true,
	"H": true,
}

// LoadConfig reads a YAML recipe. Unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML recipe from memory. Unknown fields are rejected.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing recipe: %w", err)
	}
	return &cfg, nil
}

// Validate checks that all fields in the recipe are valid.
func (c *Config) Validate() error {
	if c.Generations <= 0 {
		return fmt.Errorf("generations must be positive, got %d", c.Generations)
	}
	if !trace.IsValidTraceLevel(c.Trace) {
		return fmt.Errorf("unknown trace level %q; valid: none, fixations, all", c.Trace)
	}
	if err := c.Chromosome.validate(); err != nil {
		return err
	}
	if c.Chromosome.Type == "X" && !c.Sex {
		return fmt.Errorf("chromosome: type X requires sex to be enabled")
	}
	if len(c.MutationTypes) == 0 {
		return fmt.Errorf("at least one mutation type required")
	}
	seenTypes := make(map[int64]bool)
	totalWeight := 0.0
	for i, mt := range c.MutationTypes {
		if err := mt.validate(i); err != nil {
			return err
		}
		if seenTypes[mt.ID] {
			return fmt.Errorf("mutation_types[%d]: duplicate id m%d", i, mt.ID)
		}
		seenTypes[mt.ID] = true
		totalWeight += mt.Weight
	}
	if totalWeight <= 0 {
		return fmt.Errorf("mutation type weights must sum to a positive value")
	}

	if len(c.Subpopulations) == 0 {
		return fmt.Errorf("at least one subpopulation required")
	}
	seenSubpops := make(map[int64]bool)
	for i, sp := range c.Subpopulations {
		if err := sp.validate(i, c.Sex); err != nil {
			return err
		}
		if seenSubpops[sp.ID] {
			return fmt.Errorf("subpopulations[%d]: duplicate id p%d", i, sp.ID)
		}
		if sp.SourceID != nil && !seenSubpops[*sp.SourceID] {
			return fmt.Errorf("subpopulations[%d]: source p%d must be declared earlier", i, *sp.SourceID)
		}
		seenSubpops[sp.ID] = true
	}
	for i, sp := range c.Subpopulations {
		for src := range sp.MigrationMap {
			if !seenSubpops[src] {
				return fmt.Errorf("subpopulations[%d]: migration source p%d not declared", i, src)
			}
		}
	}

	for i, o := range c.Outputs {
		if err := o.validate(i, seenSubpops); err != nil {
			return err
		}
	}
	return nil
}

func (c *ChromosomeConfig) validate() error {
	if !validChromosomeTypes[c.Type] {
		return fmt.Errorf("chromosome: unknown type %q; valid: A, X", c.Type)
	}
	if c.LastPosition < 0 {
		return fmt.Errorf("chromosome: last_position must be non-negative, got %d", c.LastPosition)
	}
	if c.MutationRate < 0 {
		return fmt.Errorf("chromosome: mutation_rate must be non-negative, got %g", c.MutationRate)
	}
	if c.RecombinationRate < 0 || c.RecombinationRate > 0.5 {
		return fmt.Errorf("chromosome: recombination_rate must be in [0, 0.5], got %g", c.RecombinationRate)
	}
	return nil
}

func (mt *MutationTypeConfig) validate(idx int) error {
	prefix := fmt.Sprintf("mutation_types[%d]", idx)
	if mt.ID < 0 {
		return fmt.Errorf("%s: id must be non-negative, got %d", prefix, mt.ID)
	}
	nParams, ok := validDFEs[mt.DFE]
	if !ok {
		return fmt.Errorf("%s: unknown dfe %q; valid: f, e, g, n", prefix, mt.DFE)
	}
	if len(mt.Params) != nParams {
		return fmt.Errorf("%s: dfe %q requires %d parameter(s), got %d", prefix, mt.DFE, nParams, len(mt.Params))
	}
	switch mt.DFE {
	case DFEExponential:
		if mt.Params[0] == 0 {
			return fmt.Errorf("%s: exponential mean must be non-zero", prefix)
		}
	case DFEGamma:
		if mt.Params[0] == 0 || mt.Params[1] <= 0 {
			return fmt.Errorf("%s: gamma needs a non-zero mean and a positive shape, got %v", prefix, mt.Params)
		}
	case DFENormal:
		if mt.Params[1] < 0 {
			return fmt.Errorf("%s: normal sd must be non-negative, got %g", prefix, mt.Params[1])
		}
	}
	if mt.Weight < 0 {
		return fmt.Errorf("%s: weight must be non-negative, got %g", prefix, mt.Weight)
	}
	return nil
}

func (sp *SubpopConfig) validate(idx int, sexEnabled bool) error {
	prefix := fmt.Sprintf("subpopulations[%d]", idx)
	if sp.ID < 0 {
		return fmt.Errorf("%s: id must be non-negative, got %d", prefix, sp.ID)
	}
	if sp.Size < 1 {
		return fmt.Errorf("%s: size must be at least 1, got %d", prefix, sp.Size)
	}
	if sexEnabled {
		// both sexes must be present for the founders to mate
		if sp.SexRatio <= 0 || sp.SexRatio >= 1 {
			return fmt.Errorf("%s: sex_ratio must be in (0, 1) when sex is enabled, got %g", prefix, sp.SexRatio)
		}
	} else if sp.SexRatio != 0 {
		return fmt.Errorf("%s: sex_ratio requires sex to be enabled", prefix)
	}
	if sp.SelfingRate < 0 || sp.SelfingRate > 1 {
		return fmt.Errorf("%s: selfing_rate must be in [0, 1], got %g", prefix, sp.SelfingRate)
	}
	if sexEnabled && sp.SelfingRate != 0 {
		return fmt.Errorf("%s: selfing is not possible with separate sexes", prefix)
	}
	if sp.CloningRate < 0 || sp.CloningRate > 1 {
		return fmt.Errorf("%s: cloning_rate must be in [0, 1], got %g", prefix, sp.CloningRate)
	}
	total := 0.0
	for src, rate := range sp.MigrationMap {
		if src == sp.ID {
			return fmt.Errorf("%s: migration from itself", prefix)
		}
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%s: migration rate from p%d must be in [0, 1], got %g", prefix, src, rate)
		}
		total += rate
	}
	if total > 1 {
		return fmt.Errorf("%s: migration rates sum to %g, more than 1", prefix, total)
	}
	return nil
}

func (o *OutputConfig) validate(idx int, subpops map[int64]bool) error {
	prefix := fmt.Sprintf("outputs[%d]", idx)
	if o.Generation < 1 {
		return fmt.Errorf("%s: generation must be at least 1, got %d", prefix, o.Generation)
	}
	if !validOutputKinds[o.Kind] {
		return fmt.Errorf("%s: unknown kind %q; valid: all, sample, ms, fixed", prefix, o.Kind)
	}
	if o.Kind == OutputSample || o.Kind == OutputMS {
		if !subpops[o.SubpopID] {
			return fmt.Errorf("%s: subpop p%d not declared", prefix, o.SubpopID)
		}
		if o.Size < 1 {
			return fmt.Errorf("%s: size must be at least 1, got %d", prefix, o.Size)
		}
	}
	if !validSexFilters[o.SexFilter] {
		return fmt.Errorf("%s: unknown sex %q; valid: *, F, M, H", prefix, o.SexFilter)
	}
	return nil
}
