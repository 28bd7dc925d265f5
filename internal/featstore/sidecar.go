package featstore

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadDurations reads a duration sidecar: a JSON object whose "duration"
// field holds per-row durations in seconds, aligned by index with the
// feature store.
func LoadDurations(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("featstore: read sidecar %s: %w", path, err)
	}

	var sidecar struct {
		Duration []float64 `json:"duration"`
	}

	if err := json.Unmarshal(data, &sidecar); err != nil {
		return nil, fmt.Errorf("featstore: parse sidecar %s: %w", path, err)
	}

	if len(sidecar.Duration) == 0 {
		return nil, fmt.Errorf("featstore: sidecar %s has no durations", path)
	}

	return sidecar.Duration, nil
}
