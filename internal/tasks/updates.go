package tasks

import (
	"fmt"

	"github.com/desertthunder/lyra/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveSong Phase = iota
	FetchLyrics
	ExtractWords
	PersistResults
	ExportLists
)

func (p Phase) String() string {
	switch p {
	case ResolveSong:
		return "resolve_song"
	case FetchLyrics:
		return "fetch_lyrics"
	case ExtractWords:
		return "extract_words"
	case PersistResults:
		return "persist_results"
	case ExportLists:
		return "export_lists"
	default:
		return ""
	}
}

func resolveSongUpdate(query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveSong,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Searching for %q...", query),
	}
}

func fetchedLyricsUpdate(song *models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLyrics,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found: %s - %s", song.Artist, song.Title),
		Data:    song,
	}
}

func extractingUpdate(song *models.Song, opts models.VocabularyOptions) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExtractWords,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Extracting %s/%s vocabulary from %q...", opts.Language, opts.Level, song.Title),
	}
}

func persistingUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PersistResults,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving %d words...", count),
	}
}

func completedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PersistResults,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Done: %d words extracted", count),
	}
}

func exportingListUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportLists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, title),
	}
}

func exportCompletedUpdate(step, total int, title string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportLists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, title, filesCount),
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportLists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
