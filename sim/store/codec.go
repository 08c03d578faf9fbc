package store

import (
	"encoding/json"

	"github.com/slim-sim/slim-sim/sim"
)

func encodeRun(r RunRecord) ([]byte, error) { return json.Marshal(r) }

func decodeRun(data []byte) (RunRecord, error) {
	var r RunRecord
	err := json.Unmarshal(data, &r)
	return r, err
}

func encodeStats(stats []sim.GenerationStats) ([]byte, error) { return json.Marshal(stats) }

func decodeStats(data []byte) ([]sim.GenerationStats, error) {
	var stats []sim.GenerationStats
	err := json.Unmarshal(data, &stats)
	return stats, err
}

func encodeSubstitutions(subs []SubstitutionRecord) ([]byte, error) { return json.Marshal(subs) }

func decodeSubstitutions(data []byte) ([]SubstitutionRecord, error) {
	var subs []SubstitutionRecord
	err := json.Unmarshal(data, &subs)
	return subs, err
}
