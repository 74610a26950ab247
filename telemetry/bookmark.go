package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkNonFinite      BookmarkType = "non_finite"
	BookmarkDriftSpike     BookmarkType = "drift_spike"
	BookmarkRunaway        BookmarkType = "runaway"
	BookmarkResampleFailed BookmarkType = "resample_failed"
	BookmarkSteady         BookmarkType = "steady"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       int32        `csv:"frame"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// BookmarkDetector flags windows where the cloud misbehaves or settles.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []DispatchStats
	historySize int
	historyIdx  int
	historyFull bool

	// RunawayLimit is the displacement beyond which particles are
	// considered detached from the surface. 0 disables the check.
	RunawayLimit float64

	// State tracking
	sawNonFinite      bool
	runaway           bool
	steadyWindowCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady detection
	}
	return &BookmarkDetector{
		history:     make([]DispatchStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats DispatchStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkNonFinite(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkRunaway(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if stats.ResampleFailures > 0 {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkResampleFailed,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("%d resample(s) failed; %d particles remain", stats.ResampleFailures, stats.Count),
		})
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkDriftSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkSteady(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats DispatchStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns past windows, oldest first.
func (bd *BookmarkDetector) getHistory() []DispatchStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]DispatchStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

// checkNonFinite fires on the first window with NaN/Inf particles and
// rearms once a window is clean again.
func (bd *BookmarkDetector) checkNonFinite(stats DispatchStats) *Bookmark {
	if stats.NonFinite == 0 {
		bd.sawNonFinite = false
		return nil
	}
	if bd.sawNonFinite {
		return nil
	}
	bd.sawNonFinite = true
	return &Bookmark{
		Type:        BookmarkNonFinite,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("%d of %d particles have non-finite positions", stats.NonFinite, stats.Count),
	}
}

func (bd *BookmarkDetector) checkRunaway(stats DispatchStats) *Bookmark {
	if bd.RunawayLimit <= 0 {
		return nil
	}
	if stats.DispMax <= bd.RunawayLimit {
		bd.runaway = false
		return nil
	}
	if bd.runaway {
		return nil
	}
	bd.runaway = true
	return &Bookmark{
		Type:        BookmarkRunaway,
		Frame:       stats.WindowEndFrame,
		Description: fmt.Sprintf("Max drift %.4f exceeds limit %.4f in %s mode", stats.DispMax, bd.RunawayLimit, stats.Mode),
	}
}

func (bd *BookmarkDetector) checkDriftSpike(stats DispatchStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.DispP90
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.DispP90 > avg*3.0 {
		return &Bookmark{
			Type:        BookmarkDriftSpike,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("p90 drift %.5f is %.1fx average (%.5f)", stats.DispP90, stats.DispP90/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSteady(stats DispatchStats) *Bookmark {
	if stats.Count == 0 || !stats.Enabled || stats.Dispatches == 0 {
		bd.steadyWindowCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}
	recent := history[len(history)-4:]

	var sum float64
	for _, h := range recent {
		sum += h.DispP90
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := h.DispP90 - mean
		variance += d * d
	}
	variance /= 4

	cv2 := 0.0
	if mean > 0 {
		cv2 = variance / (mean * mean)
	}

	if cv2 < 0.04 { // CV^2 < 0.04 means CV < 0.2
		bd.steadyWindowCount++
	} else {
		bd.steadyWindowCount = 0
	}

	if bd.steadyWindowCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkSteady,
			Frame:       stats.WindowEndFrame,
			Description: fmt.Sprintf("Drift steady at p90 %.5f with %d particles over 5+ windows", stats.DispP90, stats.Count),
		}
	}
	return nil
}
