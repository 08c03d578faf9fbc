package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const neutralRecipe = `
seed: 5
generations: 100
pedigrees: true
trace: fixations
chromosome:
  last_position: 99999
  mutation_rate: 1.0e-7
  recombination_rate: 1.0e-8
mutation_types:
  - {id: 1, dominance: 0.5, dfe: f, params: [0.0], weight: 1}
subpopulations:
  - {id: 1, size: 500}
  - id: 2
    size: 100
    source: 1
    migration: {1: 0.01}
outputs:
  - {generation: 100, kind: ms, subpop: 2, size: 10}
`

func TestParseConfig_Recipe(t *testing.T) {
	cfg, err := ParseConfig([]byte(neutralRecipe))
	require.NoError(t, err)

	assert.Equal(t, int64(5), cfg.Seed)
	assert.Equal(t, int64(100), cfg.Generations)
	assert.True(t, cfg.Pedigrees)
	assert.Equal(t, "fixations", cfg.Trace)
	assert.Equal(t, int64(99999), cfg.Chromosome.LastPosition)
	require.Len(t, cfg.MutationTypes, 1)
	assert.Equal(t, []float64{0}, cfg.MutationTypes[0].Params)
	require.Len(t, cfg.Subpopulations, 2)
	require.NotNil(t, cfg.Subpopulations[1].SourceID)
	assert.Equal(t, int64(1), *cfg.Subpopulations[1].SourceID)
	assert.Equal(t, map[int64]float64{1: 0.01}, cfg.Subpopulations[1].MigrationMap)
	assert.Equal(t, OutputMS, cfg.Outputs[0].Kind)
	assert.NoError(t, cfg.Validate())
}

func TestParseConfig_UnknownFieldRejected(t *testing.T) {
	_, err := ParseConfig([]byte("seed: 1\ngenerationz: 5\n"))
	assert.ErrorContains(t, err, "parsing recipe")
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(neutralRecipe), 0o644))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, int64(5), cfg.Seed)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading recipe")
}

func TestConfig_Validate(t *testing.T) {
	src := int64(1)
	missing := int64(9)
	tests := []struct {
		name    string
		edit    func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero generations", func(c *Config) { c.Generations = 0 }, "generations must be positive"},
		{"bad trace", func(c *Config) { c.Trace = "verbose" }, "unknown trace level"},
		{"bad chromosome type", func(c *Config) { c.Chromosome.Type = "Z" }, "unknown type"},
		{"X without sex", func(c *Config) { c.Chromosome.Type = "X" }, "requires sex"},
		{"recombination above half", func(c *Config) { c.Chromosome.RecombinationRate = 0.6 }, "recombination_rate"},
		{"negative mutation rate", func(c *Config) { c.Chromosome.MutationRate = -1 }, "mutation_rate"},
		{"no mutation types", func(c *Config) { c.MutationTypes = nil }, "at least one mutation type"},
		{"unknown dfe", func(c *Config) { c.MutationTypes[0].DFE = "q" }, "unknown dfe"},
		{"gamma param count", func(c *Config) {
			c.MutationTypes[0].DFE = DFEGamma
		}, "requires 2 parameter(s)"},
		{"gamma shape", func(c *Config) {
			c.MutationTypes[0].DFE = DFEGamma
			c.MutationTypes[0].Params = []float64{-0.01, 0}
		}, "positive shape"},
		{"exponential zero mean", func(c *Config) {
			c.MutationTypes[0].DFE = DFEExponential
		}, "non-zero"},
		{"duplicate mutation type", func(c *Config) {
			c.MutationTypes = append(c.MutationTypes, c.MutationTypes[0])
		}, "duplicate id m1"},
		{"zero weights", func(c *Config) { c.MutationTypes[0].Weight = 0 }, "sum to a positive"},
		{"no subpopulations", func(c *Config) { c.Subpopulations = nil }, "at least one subpopulation"},
		{"empty subpopulation", func(c *Config) { c.Subpopulations[0].Size = 0 }, "size must be at least 1"},
		{"sex ratio without sex", func(c *Config) { c.Subpopulations[0].SexRatio = 0.5 }, "requires sex"},
		{"selfing with sexes", func(c *Config) {
			c.Sex = true
			c.Subpopulations[0].SexRatio = 0.5
			c.Subpopulations[0].SelfingRate = 0.1
		}, "selfing is not possible"},
		{"sex without sex ratio", func(c *Config) { c.Sex = true }, "sex_ratio must be in (0, 1)"},
		{"sex with all males", func(c *Config) {
			c.Sex = true
			c.Subpopulations[0].SexRatio = 1
		}, "sex_ratio must be in (0, 1)"},
		{"sex with both sexes", func(c *Config) {
			c.Sex = true
			c.Subpopulations[0].SexRatio = 0.3
		}, ""},
		{"cloning out of range", func(c *Config) { c.Subpopulations[0].CloningRate = 2 }, "cloning_rate"},
		{"duplicate subpopulation", func(c *Config) {
			c.Subpopulations = append(c.Subpopulations, SubpopConfig{ID: 1, Size: 5})
		}, "duplicate id p1"},
		{"source declared later", func(c *Config) {
			c.Subpopulations = append(c.Subpopulations, SubpopConfig{ID: 2, Size: 5, SourceID: &missing})
		}, "must be declared earlier"},
		{"split from earlier source", func(c *Config) {
			c.Subpopulations = append(c.Subpopulations, SubpopConfig{ID: 2, Size: 5, SourceID: &src})
		}, ""},
		{"self migration", func(c *Config) {
			c.Subpopulations[0].MigrationMap = map[int64]float64{1: 0.1}
		}, "migration from itself"},
		{"undeclared migration source", func(c *Config) {
			c.Subpopulations[0].MigrationMap = map[int64]float64{4: 0.1}
		}, "migration source p4 not declared"},
		{"migration sum above one", func(c *Config) {
			c.Subpopulations = append(c.Subpopulations, SubpopConfig{ID: 2, Size: 5}, SubpopConfig{ID: 3, Size: 5})
			c.Subpopulations[0].MigrationMap = map[int64]float64{2: 0.6, 3: 0.6}
		}, "more than 1"},
		{"unknown output kind", func(c *Config) {
			c.Outputs = []OutputConfig{{Generation: 1, Kind: "vcf"}}
		}, "unknown kind"},
		{"sample of undeclared subpop", func(c *Config) {
			c.Outputs = []OutputConfig{{Generation: 1, Kind: OutputSample, SubpopID: 3, Size: 2}}
		}, "subpop p3 not declared"},
		{"sample size zero", func(c *Config) {
			c.Outputs = []OutputConfig{{Generation: 1, Kind: OutputMS, SubpopID: 1}}
		}, "size must be at least 1"},
		{"bad sex filter", func(c *Config) {
			c.Outputs = []OutputConfig{{Generation: 1, Kind: OutputFixed, SexFilter: "Q"}}
		}, "unknown sex"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.edit(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
