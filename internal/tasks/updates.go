package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPages Phase = iota
	FetchGenres
	FetchTopArtists
	FetchTopTracks
	FetchNewReleases
	RecordHistory
	ExportChart
)

func (p Phase) String() string {
	switch p {
	case FetchPages:
		return "fetch_pages"
	case FetchGenres:
		return "fetch_genres"
	case FetchTopArtists:
		return "fetch_top_artists"
	case FetchTopTracks:
		return "fetch_top_tracks"
	case FetchNewReleases:
		return "fetch_new_releases"
	case RecordHistory:
		return "record_history"
	case ExportChart:
		return "export_chart"
	default:
		return ""
	}
}

// sendProgress never blocks; a full channel drops the update.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func pageUpdate(phase Phase, page, collected, total int) ProgressUpdate {
	msg := fmt.Sprintf("Fetched page %d (%d items)", page, collected)
	if total > 0 {
		msg = fmt.Sprintf("Fetched page %d (%d/%d items)", page, collected, total)
	}
	return ProgressUpdate{Phase: phase, Step: collected, Total: total, Message: msg}
}

func overviewUpdate(phase Phase, step, total int, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %d items", step, total, phase, count),
	}
}

func historyUpdate(step, total, added int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordHistory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Recorded %d new plays", added),
		Data:    added,
	}
}

func exportingChartUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportChart,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportChart,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportChart,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
