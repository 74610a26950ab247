package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/dust/particles"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	params := particles.DefaultParams()
	params.Mode = particles.ModeNoise

	snapshot := &Snapshot{
		Version:     SnapshotVersion,
		HashVersion: particles.HashVersion,
		Source:      "torus",
		SampleSeed:  42,
		Count:       2,
		ModelScale:  1.5,
		ModelOffset: [3]float32{0.5, 0, 0},
		Frame:       1000,
		Time:        16.5,
		Params:      ParamsToJSON(params),
		Live:        []float32{0, 1, 2, 3, 4, 5},
		Bookmark:    &Bookmark{Type: BookmarkDriftSpike, Frame: 1000},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if !strings.HasSuffix(path, "snapshot_1000_drift_spike.json") {
		t.Errorf("unexpected snapshot path %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if loaded.Source != "torus" || loaded.SampleSeed != 42 || loaded.Count != 2 || loaded.Frame != 1000 {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if len(loaded.Live) != 6 || loaded.Live[5] != 5 {
		t.Errorf("live positions mismatch: %v", loaded.Live)
	}

	got, err := loaded.Params.FromJSON()
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got != params {
		t.Errorf("params = %+v, want %+v", got, params)
	}
}

func TestLoadSnapshotRejectsMismatch(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"version.json": `{"version": 99, "count": 0}`,
		"short.json":   `{"version": 1, "count": 2, "live": [1, 2, 3]}`,
		"bad.json":     `{"version":`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadSnapshot(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if _, err := LoadSnapshot(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
