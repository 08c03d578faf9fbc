package trace

// TraceLevel controls the verbosity of fate tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelFixations captures fixation events only.
	TraceLevelFixations TraceLevel = "fixations"
	// TraceLevelAll captures fixation and loss events.
	TraceLevelAll TraceLevel = "all"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelFixations: true,
	TraceLevelAll:       true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects fate records during a simulation. A nil
// *SimulationTrace accepts and discards every record.
type SimulationTrace struct {
	Config    TraceConfig
	Fixations []FixationRecord
	Losses    []LossRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording, or
// returns nil when config disables tracing.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	if config.Level == "" || config.Level == TraceLevelNone {
		return nil
	}
	return &SimulationTrace{
		Config:    config,
		Fixations: make([]FixationRecord, 0),
		Losses:    make([]LossRecord, 0),
	}
}

// RecordFixation appends a fixation record.
func (st *SimulationTrace) RecordFixation(record FixationRecord) {
	if st == nil {
		return
	}
	st.Fixations = append(st.Fixations, record)
}

// RecordLoss appends a loss record when the level includes losses.
func (st *SimulationTrace) RecordLoss(record LossRecord) {
	if st == nil || st.Config.Level != TraceLevelAll {
		return
	}
	st.Losses = append(st.Losses, record)
}
