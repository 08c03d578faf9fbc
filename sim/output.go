package sim

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/slim-sim/slim-sim/eidos"
)

// Output kinds accepted in a recipe's outputs section.
const (
	OutputAll    = "all"
	OutputSample = "sample"
	OutputMS     = "ms"
	OutputFixed  = "fixed"
)

func (s *Simulation) runOutputs() error {
	w := s.writer()
	for _, o := range s.outputs {
		if o.Generation != s.generation {
			continue
		}
		var err error
		switch o.Kind {
		case OutputAll:
			s.pop.PrintAll(w)
		case OutputSample, OutputMS:
			sp := s.pop.Subpopulation(o.SubpopID)
			if sp == nil {
				return eidos.NewError(eidos.ErrRange, "output", "subpopulation p%d not defined.", o.SubpopID)
			}
			if o.Kind == OutputSample {
				err = s.pop.PrintSample(w, sp, o.Size, o.SexFilter)
			} else {
				err = s.pop.PrintSampleMS(w, sp, o.Size, o.SexFilter)
			}
		case OutputFixed:
			s.pop.PrintFixedMutations(w)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func formatCoeff(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// polymorphism is a mutation with its count among the printed genomes.
type polymorphism struct {
	index int
	mut   *Mutation
	count int
}

// collectPolymorphisms tallies the mutations in genomes and orders them
// by position, then ID.
func collectPolymorphisms(genomes []*Genome) ([]*polymorphism, map[*Mutation]*polymorphism) {
	byMut := make(map[*Mutation]*polymorphism)
	var list []*polymorphism
	for _, g := range genomes {
		for _, m := range g.mutations {
			if poly, ok := byMut[m]; ok {
				poly.count++
				continue
			}
			poly := &polymorphism{mut: m, count: 1}
			byMut[m] = poly
			list = append(list, poly)
		}
	}
	slices.SortFunc(list, func(a, b *polymorphism) int {
		if c := cmp.Compare(a.mut.Position, b.mut.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.mut.ID, b.mut.ID)
	})
	for i, poly := range list {
		poly.index = i
	}
	return list, byMut
}

func writeMutationLine(w io.Writer, idx int, m *Mutation, last int64) {
	fmt.Fprintf(w, "%d %d m%d %d %s %s p%d %d %d\n",
		idx, m.ID, m.Type.ID, m.Position, formatCoeff(m.SelectionCoeff), formatCoeff(m.Type.Dominance),
		m.SubpopID, m.OriginGeneration, last)
}

func writeGenomeLine(w io.Writer, label string, g *Genome, byMut map[*Mutation]*polymorphism) {
	fmt.Fprintf(w, "%s %s", label, g.typ)
	if g.null {
		io.WriteString(w, " <null>\n")
		return
	}
	for _, m := range g.mutations {
		fmt.Fprintf(w, " %d", byMut[m].index)
	}
	io.WriteString(w, "\n")
}

// PrintAll writes the full population state:
//
//	#OUT: <gen> A
//	Populations:
//	p<id> <size> H | p<id> <size> S <sexRatio>
//	Mutations:
//	<idx> <id> m<type> <pos> <s> <h> p<origin> <originGen> <count>
//	Individuals:
//	p<id>:i<n> <sex> p<id>:<g1> p<id>:<g2>
//	Genomes:
//	p<id>:<n> <A|X|Y> <idx>... | <null>
func (p *Population) PrintAll(w io.Writer) {
	fmt.Fprintf(w, "#OUT: %d A\n", p.sim.generation)

	io.WriteString(w, "Populations:\n")
	subpops := p.Subpopulations()
	var all []*Genome
	for _, sp := range subpops {
		if p.sim.sexEnabled {
			fmt.Fprintf(w, "p%d %d S %s\n", sp.ID, sp.parentSize, formatCoeff(sp.parentSexRatio))
		} else {
			fmt.Fprintf(w, "p%d %d H\n", sp.ID, sp.parentSize)
		}
		all = append(all, sp.parentGenomes...)
	}

	polys, byMut := collectPolymorphisms(all)
	io.WriteString(w, "Mutations:\n")
	for _, poly := range polys {
		writeMutationLine(w, poly.index, poly.mut, int64(poly.count))
	}

	io.WriteString(w, "Individuals:\n")
	for _, sp := range subpops {
		for i, ind := range sp.parentIndividuals {
			fmt.Fprintf(w, "p%d:i%d %s p%d:%d p%d:%d\n", sp.ID, i, ind.sex, sp.ID, 2*i, sp.ID, 2*i+1)
		}
	}

	io.WriteString(w, "Genomes:\n")
	for _, sp := range subpops {
		for i, g := range sp.parentGenomes {
			writeGenomeLine(w, fmt.Sprintf("p%d:%d", sp.ID, i), g, byMut)
		}
	}
}

// sampleGenomes draws n genomes with replacement from sp's live
// generation, restricted to individuals of the given sex ("*" or "" for
// any). Null genomes are never drawn.
func (p *Population) sampleGenomes(sp *Subpopulation, n int, sexFilter string) ([]*Genome, error) {
	const op = "outputSample()"
	if n < 1 {
		return nil, eidos.NewError(eidos.ErrRange, op, "sample size %d must be at least 1.", n)
	}
	var pool []*Genome
	for i, ind := range sp.parentIndividuals {
		if sexFilter != "" && sexFilter != "*" && ind.sex.String() != sexFilter {
			continue
		}
		for _, g := range sp.parentGenomes[2*i : 2*i+2] {
			if !g.null {
				pool = append(pool, g)
			}
		}
	}
	if len(pool) == 0 {
		return nil, eidos.NewError(eidos.ErrRange, op, "no genomes in p%d match sex %q.", sp.ID, sexFilter)
	}
	rng := p.sim.rng.ForSubsystem(SubsystemOutput)
	out := make([]*Genome, n)
	for i := range out {
		out[i] = pool[rng.IntN(len(pool))]
	}
	return out, nil
}

// PrintSample writes n randomly drawn genomes of sp in the PrintAll
// format, minus the Populations and Individuals sections:
//
//	#OUT: <gen> R p<id> <n>
func (p *Population) PrintSample(w io.Writer, sp *Subpopulation, n int, sexFilter string) error {
	sample, err := p.sampleGenomes(sp, n, sexFilter)
	if err != nil {
		return err
	}
	polys, byMut := collectPolymorphisms(sample)

	fmt.Fprintf(w, "#OUT: %d R p%d %d\n", p.sim.generation, sp.ID, n)
	io.WriteString(w, "Mutations:\n")
	for _, poly := range polys {
		writeMutationLine(w, poly.index, poly.mut, int64(poly.count))
	}
	io.WriteString(w, "Genomes:\n")
	for i, g := range sample {
		writeGenomeLine(w, fmt.Sprintf("p%d:%d", sp.ID, i), g, byMut)
	}
	return nil
}

// PrintSampleMS writes n randomly drawn genomes of sp in ms format:
//
//	#OUT: <gen> SM p<id> <n>
//	//
//	segsites: <k>
//	positions: <pos/L> ...
//	<0|1 per segregating site>
func (p *Population) PrintSampleMS(w io.Writer, sp *Subpopulation, n int, sexFilter string) error {
	sample, err := p.sampleGenomes(sp, n, sexFilter)
	if err != nil {
		return err
	}
	polys, byMut := collectPolymorphisms(sample)

	fmt.Fprintf(w, "#OUT: %d SM p%d %d\n", p.sim.generation, sp.ID, n)
	io.WriteString(w, "//\n")
	fmt.Fprintf(w, "segsites: %d\n", len(polys))
	if len(polys) > 0 {
		io.WriteString(w, "positions:")
		last := float64(max(p.sim.chromosome.LastPosition, 1))
		for _, poly := range polys {
			fmt.Fprintf(w, " %.7f", float64(poly.mut.Position)/last)
		}
		io.WriteString(w, "\n")
	}

	row := make([]byte, len(polys))
	for _, g := range sample {
		for i := range row {
			row[i] = '0'
		}
		for _, m := range g.mutations {
			row[byMut[m].index] = '1'
		}
		w.Write(row)
		io.WriteString(w, "\n")
	}
	return nil
}

// PrintFixedMutations writes every substitution:
//
//	#OUT: <gen> F
//	Mutations:
//	<idx> <id> m<type> <pos> <s> <h> p<origin> <originGen> <fixationGen>
func (p *Population) PrintFixedMutations(w io.Writer) {
	fmt.Fprintf(w, "#OUT: %d F\n", p.sim.generation)
	io.WriteString(w, "Mutations:\n")
	for i, sub := range p.substitutions {
		fmt.Fprintf(w, "%d %d m%d %d %s %s p%d %d %d\n",
			i, sub.ID, sub.Type.ID, sub.Position, formatCoeff(sub.SelectionCoeff), formatCoeff(sub.Type.Dominance),
			sub.SubpopID, sub.OriginGeneration, sub.FixationGeneration)
	}
}
