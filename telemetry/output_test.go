package telemetry

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/dust/config"
	"github.com/pthm-cable/dust/mesh"
	"github.com/pthm-cable/dust/sampler"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager, got %v %v", om, err)
	}
	// All methods are nil-safe.
	if err := om.WriteStats(DispatchStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("expected empty dir")
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := om.WriteStats(DispatchStats{WindowEndFrame: int32(i * 300), Count: 1000, Mode: "radial"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{}, 300); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkSteady, Frame: 300, Description: "ok"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "dispatch.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,count,mode") {
		t.Errorf("unexpected header %q", lines[0])
	}

	for _, name := range []string{"perf.csv", "bookmarks.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestSamplesCSVRoundTrip(t *testing.T) {
	set, err := sampler.Sample(mesh.Cube(1), 25, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteSamplesCSV(&buf, set); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "index,x,y,z,u,v,nx,ny,nz") {
		t.Errorf("unexpected header: %q", strings.SplitN(buf.String(), "\n", 2)[0])
	}

	back, err := ReadSamplesCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if back.Len() != set.Len() {
		t.Fatalf("got %d samples, want %d", back.Len(), set.Len())
	}
	for i := 0; i < set.Len(); i++ {
		if !back.Position(i).ApproxEqualThreshold(set.Position(i), 1e-6) {
			t.Errorf("sample %d: %v != %v", i, back.Position(i), set.Position(i))
		}
	}
}
