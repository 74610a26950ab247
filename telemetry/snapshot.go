package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/dust/particles"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds enough state to rebuild a cloud exactly: the sampler
// inputs reproduce the rest positions, and Live records the update state.
type Snapshot struct {
	Version     int `json:"version"`
	HashVersion int `json:"hash_version"`

	// Sampler inputs
	Source      string     `json:"source"`
	SampleSeed  int64      `json:"sample_seed"`
	Count       int        `json:"count"`
	ModelScale  float32    `json:"model_scale"`
	ModelOffset [3]float32 `json:"model_offset"`

	Frame int32   `json:"frame"`
	Time  float32 `json:"time"`

	Params ParamsJSON `json:"params"`

	// Flat live positions, Count*3
	Live []float32 `json:"live,omitempty"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ParamsJSON is the JSON-serializable form of particles.Params.
type ParamsJSON struct {
	Mode          string  `json:"mode"`
	Enabled       bool    `json:"enabled"`
	Amplitude     float32 `json:"amplitude"`
	Speed         float32 `json:"speed"`
	Frequency     float32 `json:"frequency"`
	RestFrequency float32 `json:"rest_frequency"`
}

// ParamsToJSON converts update parameters to their JSON form.
func ParamsToJSON(p particles.Params) ParamsJSON {
	return ParamsJSON{
		Mode:          p.Mode.String(),
		Enabled:       p.Enabled,
		Amplitude:     p.Amplitude,
		Speed:         p.Speed,
		Frequency:     p.Frequency,
		RestFrequency: p.RestFrequency,
	}
}

// FromJSON converts the JSON form back to update parameters.
func (pj ParamsJSON) FromJSON() (particles.Params, error) {
	mode, err := particles.ParseMode(pj.Mode)
	if err != nil {
		return particles.Params{}, err
	}
	return particles.Params{
		Mode:          mode,
		Enabled:       pj.Enabled,
		Amplitude:     pj.Amplitude,
		Speed:         pj.Speed,
		Frequency:     pj.Frequency,
		RestFrequency: pj.RestFrequency,
	}, nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Frame)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Frame, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	if snapshot.Live != nil && len(snapshot.Live) != snapshot.Count*3 {
		return nil, fmt.Errorf("snapshot has %d live values for %d particles", len(snapshot.Live), snapshot.Count)
	}

	return &snapshot, nil
}
