package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_DriftSpike(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(DispatchStats{
			WindowEndFrame: int32(i * 300),
			Count:          1000,
			DispP90:        0.01,
		})
	}

	bookmarks := bd.Check(DispatchStats{
		WindowEndFrame: 1500,
		Count:          1000,
		DispP90:        0.05, // 5x the average
	})
	if !hasBookmark(bookmarks, BookmarkDriftSpike) {
		t.Error("expected drift_spike bookmark")
	}
}

func TestBookmarkDetector_NonFiniteEdgeTriggered(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bad := DispatchStats{Count: 100, NonFinite: 3}
	if !hasBookmark(bd.Check(bad), BookmarkNonFinite) {
		t.Fatal("expected non_finite bookmark")
	}
	if hasBookmark(bd.Check(bad), BookmarkNonFinite) {
		t.Error("non_finite should not repeat while the condition persists")
	}

	bd.Check(DispatchStats{Count: 100})
	if !hasBookmark(bd.Check(bad), BookmarkNonFinite) {
		t.Error("expected non_finite to rearm after a clean window")
	}
}

func TestBookmarkDetector_Runaway(t *testing.T) {
	bd := NewBookmarkDetector(10)
	if hasBookmark(bd.Check(DispatchStats{DispMax: 100}), BookmarkRunaway) {
		t.Error("runaway check should be disabled without a limit")
	}

	bd.RunawayLimit = 1
	if !hasBookmark(bd.Check(DispatchStats{DispMax: 5, Mode: "rest"}), BookmarkRunaway) {
		t.Error("expected runaway bookmark")
	}
	if hasBookmark(bd.Check(DispatchStats{DispMax: 6}), BookmarkRunaway) {
		t.Error("runaway should fire once per excursion")
	}
}

func TestBookmarkDetector_ResampleFailed(t *testing.T) {
	bd := NewBookmarkDetector(10)
	if !hasBookmark(bd.Check(DispatchStats{ResampleFailures: 1}), BookmarkResampleFailed) {
		t.Error("expected resample_failed bookmark")
	}
}

func TestBookmarkDetector_Steady(t *testing.T) {
	bd := NewBookmarkDetector(10)

	steady := 0
	for i := 0; i < 12; i++ {
		stats := DispatchStats{
			WindowEndFrame: int32(i * 300),
			Count:          5000,
			Enabled:        true,
			Dispatches:     300,
			DispP90:        0.02 + float64(i%2)*0.001,
		}
		if hasBookmark(bd.Check(stats), BookmarkSteady) {
			steady++
		}
	}
	if steady != 1 {
		t.Errorf("expected exactly one steady bookmark, got %d", steady)
	}
}

func TestBookmarkDetector_HistoryOrder(t *testing.T) {
	bd := NewBookmarkDetector(5)
	for i := 0; i < 7; i++ {
		bd.Check(DispatchStats{WindowEndFrame: int32(i)})
	}
	history := bd.getHistory()
	if len(history) != 5 {
		t.Fatalf("expected 5 windows, got %d", len(history))
	}
	for i, h := range history {
		if h.WindowEndFrame != int32(i+2) {
			t.Errorf("history[%d] = frame %d, want %d", i, h.WindowEndFrame, i+2)
		}
	}
}
