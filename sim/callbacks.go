package sim

// AllSubpops scopes a callback to every subpopulation.
const AllSubpops int64 = -1

// EventFunc is the body of an early() or late() event.
type EventFunc func(s *Simulation) error

// ScriptBlock runs an event on every generation in [Start, End]. End 0
// means no upper bound.
type ScriptBlock struct {
	ID         string
	Start, End int64
	Fn         EventFunc
}

func (b *ScriptBlock) activeIn(gen int64) bool {
	return gen >= b.Start && (b.End == 0 || gen <= b.End)
}

// MateChoiceFunc may replace the weights used to draw the second parent
// for parent1 from source. weights is indexed like source's individuals
// and already holds the default (fitness-based) weights. Returning nil
// keeps them; returning all zeros rejects parent1, forcing a redraw.
type MateChoiceFunc func(s *Simulation, parent1 *Individual, source *Subpopulation, weights []float64) ([]float64, error)

// MateChoiceCallback is a mateChoice() block. SubpopID scopes it to the
// subpopulation the parents are drawn from.
type MateChoiceCallback struct {
	ID         string
	Start, End int64
	SubpopID   int64
	Fn         MateChoiceFunc
}

func (c *MateChoiceCallback) appliesTo(gen, subpopID int64) bool {
	return gen >= c.Start && (c.End == 0 || gen <= c.End) && (c.SubpopID == AllSubpops || c.SubpopID == subpopID)
}

// ChildEvent describes one proposed child to modifyChild() callbacks. The
// child's genomes are already generated.
type ChildEvent struct {
	Child     *Individual
	Parent1   *Individual
	Parent2   *Individual
	IsSelfing bool
	IsCloning bool
	Source    *Subpopulation
}

// ModifyChildFunc accepts or rejects a proposed child. Rejection
// regenerates the same child slot from scratch.
type ModifyChildFunc func(s *Simulation, ev *ChildEvent) (bool, error)

// ModifyChildCallback is a modifyChild() block. SubpopID scopes it to the
// subpopulation the child is born into.
type ModifyChildCallback struct {
	ID         string
	Start, End int64
	SubpopID   int64
	Fn         ModifyChildFunc
}

func (c *ModifyChildCallback) appliesTo(gen, subpopID int64) bool {
	return gen >= c.Start && (c.End == 0 || gen <= c.End) && (c.SubpopID == AllSubpops || c.SubpopID == subpopID)
}

// RegisterEarly schedules an early() event, run before offspring generation.
func (s *Simulation) RegisterEarly(b *ScriptBlock) { s.early = append(s.early, b) }

// RegisterLate schedules a late() event, run after fixation bookkeeping.
func (s *Simulation) RegisterLate(b *ScriptBlock) { s.late = append(s.late, b) }

// RegisterMateChoice adds a mateChoice() callback.
func (s *Simulation) RegisterMateChoice(c *MateChoiceCallback) {
	s.mateChoice = append(s.mateChoice, c)
}

// RegisterModifyChild adds a modifyChild() callback.
func (s *Simulation) RegisterModifyChild(c *ModifyChildCallback) {
	s.modifyChild = append(s.modifyChild, c)
}

func (s *Simulation) runEvents(blocks []*ScriptBlock) error {
	for _, b := range blocks {
		if !b.activeIn(s.generation) {
			continue
		}
		if err := b.Fn(s); err != nil {
			return err
		}
		if s.stopped {
			return nil
		}
	}
	return nil
}

func (s *Simulation) mateChoiceFor(subpopID int64) []*MateChoiceCallback {
	var out []*MateChoiceCallback
	for _, c := range s.mateChoice {
		if c.appliesTo(s.generation, subpopID) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Simulation) modifyChildFor(subpopID int64) []*ModifyChildCallback {
	var out []*ModifyChildCallback
	for _, c := range s.modifyChild {
		if c.appliesTo(s.generation, subpopID) {
			out = append(out, c)
		}
	}
	return out
}
