package sim

import (
	"hash/fnv"
	"math/rand/v2"
)

// Subsystem names an independent random stream of a Simulation.
type Subsystem int

const (
	// SubsystemMating drives parent draws, migrant counts, cloning and
	// selfing decisions, and mateChoice() weight draws.
	SubsystemMating Subsystem = iota

	// SubsystemMutation drives new-mutation counts, positions, types and
	// selection coefficients.
	SubsystemMutation

	// SubsystemRecombination drives breakpoint counts, positions and the
	// initial strand.
	SubsystemRecombination

	// SubsystemOutput drives genome sampling for sample and ms output.
	SubsystemOutput

	numSubsystems
)

var subsystemNames = [numSubsystems]string{
	SubsystemMating:        "mating",
	SubsystemMutation:      "mutation",
	SubsystemRecombination: "recombination",
	SubsystemOutput:        "output",
}

func (s Subsystem) String() string {
	if s < 0 || s >= numSubsystems {
		return "unknown"
	}
	return subsystemNames[s]
}

// PartitionedRNG holds one PCG stream per Subsystem, all derived from a
// single seed. Stream i is seeded with (seed, seed XOR fnv1a(name_i)), so
// extra draws in the mutation stream never shift the mating stream.
//
// Thread-safety: NOT thread-safe. Each Simulation owns its own.
type PartitionedRNG struct {
	seed    int64
	streams [numSubsystems]*rand.Rand
}

// NewPartitionedRNG returns the streams for seed. Streams are created on
// first use.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{seed: seed}
}

// ForSubsystem returns the stream for sub; repeated calls return the same
// *rand.Rand. The result also satisfies rand.Source, which is what the
// gonum distributions take.
func (p *PartitionedRNG) ForSubsystem(sub Subsystem) *rand.Rand {
	if r := p.streams[sub]; r != nil {
		return r
	}
	r := rand.New(rand.NewPCG(uint64(p.seed), streamSeed(p.seed, sub)))
	p.streams[sub] = r
	return r
}

// Seed returns the seed every stream derives from.
func (p *PartitionedRNG) Seed() int64 { return p.seed }

func streamSeed(seed int64, sub Subsystem) uint64 {
	h := fnv.New64a()
	h.Write([]byte(sub.String()))
	return uint64(seed) ^ h.Sum64()
}
