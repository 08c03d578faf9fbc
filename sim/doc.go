// Package sim provides the forward-time population genetics engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - simulation.go: the Simulation context and the per-generation cycle
//   - population.go: subpopulation management, generation swap, fixation bookkeeping
//   - evolve.go: migrant batches, parent draws, crossover and mutation
//
// # Architecture
//
// A Simulation owns everything one run touches: the recipe (Config), a
// PartitionedRNG, the pedigree and mutation counters, the Chromosome, the
// mutation types, the Population and the output sink. Nothing is global,
// so independent Simulations may run concurrently.
//
// Each Subpopulation holds two generations. The parents are the live
// population; children are generated into a separate array and swapped in
// at the end of offspring generation. Individuals do not own genomes: the
// genomes of individual i sit at 2*i and 2*i+1 of the generation's genome
// array.
//
// Mutations are shared by every genome that carries them and are owned by
// the Population's registry. Once a mutation is carried by every genome it
// becomes a Substitution and leaves the genomes.
//
// Sub-packages:
//   - sim/trace/: fixation and loss records with a summary
//   - sim/store/: persistence of runs, generation stats and substitutions
//
// # Script Surface
//
// Individual, Genome, Mutation, MutationType, Subpopulation and
// Substitution implement eidos.ObjectElement; their classes are declared
// in classes.go. Scripted behavior is supplied as Go callbacks: early()
// and late() events, mateChoice() and modifyChild() callbacks.
//
// # Randomness
//
// Every draw goes through a named subsystem of the PartitionedRNG
// (mating, mutation, recombination, output), so a seed fixes the whole
// run and adding draws to one subsystem does not perturb the others.
package sim
