package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/services"
	"github.com/desertthunder/lyra/internal/shared"
)

// Extractor is the model-backed extraction stage.
// Satisfied by vocab.Extractor; abstracted for testing.
type Extractor interface {
	Extract(ctx context.Context, lyrics string, opts models.VocabularyOptions) ([]models.VocabularyEntry, error)
}

// SettingsStore reads the persisted per-user extraction settings.
type SettingsStore interface {
	Get(userID string) (*models.UserSettings, error)
}

// WordStore folds extracted entries into the per-user word aggregate.
type WordStore interface {
	Upsert(userID string, entry models.VocabularyEntry) (string, error)
}

// ListStore persists extraction snapshots.
type ListStore interface {
	Create(list *models.VocabularyList) error
}

// HistoryStore records watch events.
type HistoryStore interface {
	Create(entry *models.WatchEntry) error
}

// OptionsResolver maps stored settings to a valid extraction policy.
// Satisfied by vocab.ResolveOptions.
type OptionsResolver func(settings *models.UserSettings) models.VocabularyOptions

// ExtractResult contains all data from one pipeline run.
type ExtractResult struct {
	Song    *models.Song             // Resolved catalog record
	Options models.VocabularyOptions // Policy applied to this run
	Entries []models.VocabularyEntry // Extracted entries, deduplicated and bounded
	ListID  string                   // Persisted snapshot ID, empty for anonymous runs
}

// VocabEngine implements the extraction pipeline.
type VocabEngine struct {
	lyrics    services.LyricsService
	extractor Extractor
	resolve   OptionsResolver
	settings  SettingsStore
	words     WordStore
	lists     ListStore
	history   HistoryStore
}

// NewVocabEngine creates a VocabEngine with the provided dependencies.
// settings, words, lists, and history may be nil for non-persisting runs.
func NewVocabEngine(lyrics services.LyricsService, extractor Extractor, resolve OptionsResolver) *VocabEngine {
	return &VocabEngine{
		lyrics:    lyrics,
		extractor: extractor,
		resolve:   resolve,
	}
}

// WithStores attaches the persistence layer and returns the engine.
func (e *VocabEngine) WithStores(settings SettingsStore, words WordStore, lists ListStore, history HistoryStore) *VocabEngine {
	e.settings = settings
	e.words = words
	e.lists = lists
	e.history = history
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *VocabEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// ExtractOpts controls one pipeline run.
type ExtractOpts struct {
	UserID  string // Empty runs the pipeline anonymously with default options
	Query   string // Song search query, required
	Title   string // Snapshot title; empty derives one from the song title
	Persist bool   // Write aggregates, a snapshot, and a watch event
}

// Extract runs the full pipeline for one query on behalf of userID.
//
// An empty userID runs the pipeline anonymously with default options and no
// persistence; a non-empty one persists the results. Callers that need to
// separate those concerns use [VocabEngine.ExtractWith].
func (e *VocabEngine) Extract(ctx context.Context, userID, query string, progress chan<- ProgressUpdate) (*ExtractResult, error) {
	return e.ExtractWith(ctx, ExtractOpts{
		UserID:  userID,
		Query:   query,
		Persist: userID != "",
	}, progress)
}

// ExtractWith runs the full pipeline with explicit run options.
//
// A query with no catalog hits returns before any model call. Persistence
// requires both opts.Persist and a non-empty opts.UserID.
func (e *VocabEngine) ExtractWith(ctx context.Context, opts ExtractOpts, progress chan<- ProgressUpdate) (*ExtractResult, error) {
	if e.lyrics == nil {
		return nil, fmt.Errorf("%w: lyrics service not initialized", shared.ErrMissingConfig)
	}
	if e.extractor == nil {
		return nil, fmt.Errorf("%w: extractor not initialized", shared.ErrMissingConfig)
	}

	if opts.Query == "" {
		return nil, fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	e.sendProgress(progress, resolveSongUpdate(opts.Query))

	song, lyrics, err := e.lyrics.Lyrics(ctx, opts.Query)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchedLyricsUpdate(song))

	policy, err := e.resolveFor(opts.UserID)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, extractingUpdate(song, policy))

	entries, err := e.extractor.Extract(ctx, lyrics, policy)
	if err != nil {
		return nil, err
	}

	result := &ExtractResult{
		Song:    song,
		Options: policy,
		Entries: entries,
	}

	if !opts.Persist || opts.UserID == "" {
		e.sendProgress(progress, completedUpdate(len(entries)))
		return result, nil
	}

	e.sendProgress(progress, persistingUpdate(len(entries)))

	listID, err := e.persist(opts.UserID, opts.Title, song, entries)
	if err != nil {
		return result, err
	}
	result.ListID = listID

	e.sendProgress(progress, completedUpdate(len(entries)))
	return result, nil
}

// resolveFor loads and resolves the extraction policy for a user. Anonymous
// runs and store errors both fall back to defaults; a missing row is handled
// by the resolver itself.
func (e *VocabEngine) resolveFor(userID string) (models.VocabularyOptions, error) {
	resolve := e.resolve
	if resolve == nil {
		return models.VocabularyOptions{}, fmt.Errorf("%w: options resolver not initialized", shared.ErrMissingConfig)
	}

	if userID == "" || e.settings == nil {
		return resolve(nil), nil
	}

	settings, err := e.settings.Get(userID)
	if err != nil {
		return models.VocabularyOptions{}, fmt.Errorf("failed to load settings: %w", err)
	}

	return resolve(settings), nil
}

// persist writes the run's results: per-word aggregates, a snapshot, and a
// watch event. An empty title derives one from the song. The snapshot is the
// canonical record; a failed history write only logs through the returned
// error chain of the snapshot path.
func (e *VocabEngine) persist(userID, title string, song *models.Song, entries []models.VocabularyEntry) (string, error) {
	if e.words != nil {
		for _, entry := range entries {
			if _, err := e.words.Upsert(userID, entry); err != nil {
				return "", fmt.Errorf("failed to persist word %q: %w", entry.Word, err)
			}
		}
	}

	if title == "" {
		title = fmt.Sprintf("%s vocabulary", song.Title)
	}

	var listID string
	if e.lists != nil {
		list := &models.VocabularyList{
			UserID:     userID,
			Title:      title,
			SongTitle:  song.Title,
			SongArtist: song.Artist,
			Entries:    entries,
		}
		if err := e.lists.Create(list); err != nil {
			return "", fmt.Errorf("failed to persist list: %w", err)
		}
		listID = list.ID
	}

	if e.history != nil {
		entry := &models.WatchEntry{
			UserID: userID,
			Title:  song.Title,
			Artist: song.Artist,
		}
		if err := e.history.Create(entry); err != nil {
			return listID, fmt.Errorf("failed to record history: %w", err)
		}
	}

	return listID, nil
}
