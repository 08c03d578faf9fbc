package trace

import (
	"testing"
)

func TestSimulationTrace_RecordFixation_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for fixations
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelFixations})

	// WHEN a fixation record is recorded
	st.RecordFixation(FixationRecord{
		MutationID:       7,
		MutationType:     1,
		Position:         1200,
		OriginGeneration: 3,
		Generation:       40,
	})

	// THEN the trace contains one fixation record with correct data
	if len(st.Fixations) != 1 {
		t.Fatalf("expected 1 fixation, got %d", len(st.Fixations))
	}
	if st.Fixations[0].MutationID != 7 {
		t.Errorf("expected mutation ID 7, got %d", st.Fixations[0].MutationID)
	}
	if st.Fixations[0].SojournTime() != 37 {
		t.Errorf("expected sojourn time 37, got %d", st.Fixations[0].SojournTime())
	}
}

func TestSimulationTrace_FixationsLevel_DropsLosses(t *testing.T) {
	// GIVEN a trace that only captures fixations
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelFixations})

	// WHEN a loss is recorded
	st.RecordLoss(LossRecord{MutationID: 1, Position: 10, Generation: 2})

	// THEN it is discarded
	if len(st.Losses) != 0 {
		t.Errorf("expected no losses at level %q, got %d", st.Config.Level, len(st.Losses))
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace capturing everything
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelAll})

	// WHEN multiple records are added
	st.RecordLoss(LossRecord{MutationID: 1, Generation: 2})
	st.RecordLoss(LossRecord{MutationID: 2, Generation: 2})
	st.RecordFixation(FixationRecord{MutationID: 3, Generation: 5})

	// THEN order is preserved
	if len(st.Losses) != 2 {
		t.Fatalf("expected 2 losses, got %d", len(st.Losses))
	}
	if st.Losses[0].MutationID != 1 || st.Losses[1].MutationID != 2 {
		t.Error("loss order not preserved")
	}
	if len(st.Fixations) != 1 || st.Fixations[0].MutationID != 3 {
		t.Error("fixation record mismatch")
	}
}

func TestSimulationTrace_NoneLevel_NilAndSafe(t *testing.T) {
	for _, level := range []TraceLevel{"", TraceLevelNone} {
		// GIVEN tracing disabled
		st := NewSimulationTrace(TraceConfig{Level: level})

		// THEN no trace is allocated and recording is a no-op
		if st != nil {
			t.Fatalf("level %q: expected nil trace", level)
		}
		st.RecordFixation(FixationRecord{MutationID: 1})
		st.RecordLoss(LossRecord{MutationID: 2})
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"fixations", true},
		{"all", true},
		{"", true}, // empty defaults to none
		{"decisions", false},
		{"ALL", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}
