package scene

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/dust/particles"
	"github.com/pthm-cable/dust/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Scene) flushTelemetry(frame int32) {
	if !s.collector.ShouldFlush(frame) {
		return
	}

	stats := s.collector.Flush(frame, s.State(), s.params)
	perfStats := s.perfCollector.Stats()
	s.lastStats = stats

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteStats(stats); err != nil {
			slog.Error("failed to write stats", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
			s.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot writes a snapshot under the output directory.
func (s *Scene) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := s.outputManager.WriteSnapshot(s.Snapshot(bookmark))
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "frame", s.Frame())
}

// SaveSnapshot writes the current state to dir and returns the file path.
func (s *Scene) SaveSnapshot(dir string) (string, error) {
	return telemetry.SaveSnapshot(s.Snapshot(nil), dir)
}

// Snapshot captures the sampler inputs, parameters and live positions.
func (s *Scene) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	node, model := s.Model()
	snap := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		HashVersion: particles.HashVersion,
		Source:      model.Source,
		SampleSeed:  s.sampleSeed,
		Count:       s.Count(),
		ModelScale:  node.Scale,
		ModelOffset: [3]float32(node.Position),
		Frame:       s.clock.Frame(),
		Time:        s.clock.Time(),
		Params:      telemetry.ParamsToJSON(s.params),
		Bookmark:    bookmark,
	}
	if st := s.State(); st != nil {
		snap.Live = append([]float32(nil), st.Live...)
	}
	return snap
}

// Restore rebuilds the cloud described by snap and resumes from its frame.
// The scene must hold the same source mesh the snapshot was taken from.
func (s *Scene) Restore(snap *telemetry.Snapshot) error {
	if snap.HashVersion != particles.HashVersion {
		return fmt.Errorf("snapshot hash version %d, want %d", snap.HashVersion, particles.HashVersion)
	}
	node, model := s.Model()
	if snap.Source != model.Source {
		slog.Warn("snapshot source differs", "snapshot", snap.Source, "scene", model.Source)
	}
	params, err := snap.Params.FromJSON()
	if err != nil {
		return err
	}

	if snap.Live != nil && len(snap.Live) != 3*snap.Count {
		return fmt.Errorf("snapshot has %d live floats for %d particles", len(snap.Live), snap.Count)
	}

	oldScale, oldPosition, oldSeed := node.Scale, node.Position, s.sampleSeed
	node.Scale = snap.ModelScale
	node.Position = snap.ModelOffset
	s.sampleSeed = snap.SampleSeed
	if err := s.Resample(snap.Count); err != nil {
		node.Scale, node.Position, s.sampleSeed = oldScale, oldPosition, oldSeed
		model.SyncTransform(node)
		return err
	}
	if snap.Live != nil {
		copy(s.State().Live, snap.Live)
	}

	s.params = params
	s.clock = Clock{frame: snap.Frame, time: snap.Time}
	slog.Info("snapshot restored", "frame", snap.Frame, "count", snap.Count)
	return nil
}
