package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/repositories"
	"github.com/desertthunder/lyra/internal/shared"
	"github.com/desertthunder/lyra/internal/vocab"
)

type fakeLyrics struct {
	song    *models.Song
	lyrics  string
	err     error
	queries []string
}

func (f *fakeLyrics) Search(ctx context.Context, query string) ([]models.Song, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Song{*f.song}, nil
}

func (f *fakeLyrics) GetSong(ctx context.Context, id int64) (*models.Song, error) {
	return f.song, f.err
}

func (f *fakeLyrics) Lyrics(ctx context.Context, query string) (*models.Song, string, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, "", f.err
	}
	return f.song, f.lyrics, nil
}

func (f *fakeLyrics) Name() string { return "fake" }

type fakeExtractor struct {
	entries  []models.VocabularyEntry
	err      error
	calls    int
	lastOpts models.VocabularyOptions
}

func (f *fakeExtractor) Extract(ctx context.Context, lyrics string, opts models.VocabularyOptions) ([]models.VocabularyEntry, error) {
	f.calls++
	f.lastOpts = opts
	return f.entries, f.err
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()

	user := &models.User{GoogleID: "g-1", Email: "a@example.com", Name: "Ada"}
	if err := repositories.NewUserRepository(db).Upsert(user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func testSong() *models.Song {
	return &models.Song{ID: 42, Title: "Moonlight Sonata", Artist: "The Nocturnes"}
}

func testEntries() []models.VocabularyEntry {
	score := 8.0
	return []models.VocabularyEntry{
		{Word: "moonlight", Score: &score, Occurrences: 3},
		{Word: "sonata", Occurrences: 1},
	}
}

func TestVocabEngineExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("full pipeline persists words, snapshot, and history", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)

		words := repositories.NewWordRepository(db)
		lists := repositories.NewListRepository(db)
		history := repositories.NewHistoryRepository(db)

		extractor := &fakeExtractor{entries: testEntries()}
		engine := NewVocabEngine(&fakeLyrics{song: testSong(), lyrics: "moonlight sonata"}, extractor, vocab.ResolveOptions).
			WithStores(repositories.NewSettingsRepository(db), words, lists, history)

		result, err := engine.Extract(ctx, user.ID, "moonlight sonata", nil)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}

		if result.ListID == "" {
			t.Error("expected a persisted snapshot ID")
		}
		if len(result.Entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(result.Entries))
		}

		stored, err := words.ListByUser(user.ID)
		if err != nil {
			t.Fatalf("word list failed: %v", err)
		}
		if len(stored) != 2 || stored[0].Word != "moonlight" || stored[0].Count != 3 {
			t.Errorf("unexpected aggregates: %+v", stored)
		}

		snapshot, err := lists.Get(result.ListID)
		if err != nil {
			t.Fatalf("snapshot get failed: %v", err)
		}
		if snapshot.SongTitle != "Moonlight Sonata" || len(snapshot.Entries) != 2 {
			t.Errorf("unexpected snapshot: %+v", snapshot)
		}

		events, err := history.ListByUser(user.ID, 0)
		if err != nil {
			t.Fatalf("history list failed: %v", err)
		}
		if len(events) != 1 || events[0].Title != "Moonlight Sonata" {
			t.Errorf("unexpected history: %+v", events)
		}
	})

	t.Run("no catalog hit stops before extraction", func(t *testing.T) {
		lyrics := &fakeLyrics{err: fmt.Errorf("%w: %q", shared.ErrSongNotFound, "xyzzy")}
		extractor := &fakeExtractor{entries: testEntries()}
		engine := NewVocabEngine(lyrics, extractor, vocab.ResolveOptions)

		_, err := engine.Extract(ctx, "", "xyzzy", nil)
		if !errors.Is(err, shared.ErrSongNotFound) {
			t.Fatalf("expected ErrSongNotFound, got %v", err)
		}
		if extractor.calls != 0 {
			t.Error("extractor should not run without a resolved song")
		}
	})

	t.Run("anonymous run skips persistence and uses defaults", func(t *testing.T) {
		extractor := &fakeExtractor{entries: testEntries()}
		engine := NewVocabEngine(&fakeLyrics{song: testSong(), lyrics: "la la"}, extractor, vocab.ResolveOptions)

		result, err := engine.Extract(ctx, "", "moonlight", nil)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if result.ListID != "" {
			t.Error("anonymous runs should not persist a snapshot")
		}
		if extractor.lastOpts != models.DefaultOptions() {
			t.Errorf("expected default options, got %+v", extractor.lastOpts)
		}
	})

	t.Run("persist false runs signed in without writing", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)

		settings := repositories.NewSettingsRepository(db)
		if err := settings.Put(&models.UserSettings{UserID: user.ID, Language: "ko", Level: "advanced", MaxWords: 50, MinLength: 3}); err != nil {
			t.Fatalf("settings put failed: %v", err)
		}

		words := repositories.NewWordRepository(db)
		lists := repositories.NewListRepository(db)
		history := repositories.NewHistoryRepository(db)

		extractor := &fakeExtractor{entries: testEntries()}
		engine := NewVocabEngine(&fakeLyrics{song: testSong(), lyrics: "la la"}, extractor, vocab.ResolveOptions).
			WithStores(settings, words, lists, history)

		result, err := engine.ExtractWith(ctx, ExtractOpts{UserID: user.ID, Query: "moonlight"}, nil)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}

		if result.ListID != "" {
			t.Error("non-persisting runs should not create a snapshot")
		}
		if extractor.lastOpts.Language != models.LanguageKorean {
			t.Errorf("stored settings should still apply, got %+v", extractor.lastOpts)
		}

		if stored, err := words.ListByUser(user.ID); err != nil || len(stored) != 0 {
			t.Errorf("expected no word writes, got %v (%v)", stored, err)
		}
		if snapshots, err := lists.ListByUser(user.ID); err != nil || len(snapshots) != 0 {
			t.Errorf("expected no snapshots, got %v (%v)", snapshots, err)
		}
		if events, err := history.ListByUser(user.ID, 0); err != nil || len(events) != 0 {
			t.Errorf("expected no history, got %v (%v)", events, err)
		}
	})

	t.Run("custom title names the snapshot", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)

		lists := repositories.NewListRepository(db)
		extractor := &fakeExtractor{entries: testEntries()}
		engine := NewVocabEngine(&fakeLyrics{song: testSong(), lyrics: "la la"}, extractor, vocab.ResolveOptions).
			WithStores(repositories.NewSettingsRepository(db), repositories.NewWordRepository(db), lists, repositories.NewHistoryRepository(db))

		result, err := engine.ExtractWith(ctx, ExtractOpts{UserID: user.ID, Query: "moonlight", Title: "Night words", Persist: true}, nil)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}

		snapshot, err := lists.Get(result.ListID)
		if err != nil {
			t.Fatalf("snapshot get failed: %v", err)
		}
		if snapshot.Title != "Night words" {
			t.Errorf("expected custom title, got %q", snapshot.Title)
		}
	})

	t.Run("stored settings shape the extraction policy", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db)

		settings := repositories.NewSettingsRepository(db)
		if err := settings.Put(&models.UserSettings{UserID: user.ID, Language: "ko", Level: "advanced", MaxWords: 50, MinLength: 3}); err != nil {
			t.Fatalf("settings put failed: %v", err)
		}

		extractor := &fakeExtractor{entries: testEntries()}
		engine := NewVocabEngine(&fakeLyrics{song: testSong(), lyrics: "la la"}, extractor, vocab.ResolveOptions).
			WithStores(settings, repositories.NewWordRepository(db), repositories.NewListRepository(db), repositories.NewHistoryRepository(db))

		result, err := engine.Extract(ctx, user.ID, "moonlight", nil)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}

		if extractor.lastOpts.Language != models.LanguageKorean || extractor.lastOpts.MaxWords != 50 {
			t.Errorf("expected resolved settings, got %+v", extractor.lastOpts)
		}
		if result.Options != extractor.lastOpts {
			t.Error("result should carry the applied policy")
		}
	})

	t.Run("extraction errors propagate", func(t *testing.T) {
		extractor := &fakeExtractor{err: shared.ErrModelNotConfigured}
		engine := NewVocabEngine(&fakeLyrics{song: testSong(), lyrics: "la la"}, extractor, vocab.ResolveOptions)

		_, err := engine.Extract(ctx, "", "moonlight", nil)
		if !errors.Is(err, shared.ErrModelNotConfigured) {
			t.Fatalf("expected ErrModelNotConfigured, got %v", err)
		}
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		engine := NewVocabEngine(&fakeLyrics{song: testSong()}, &fakeExtractor{}, vocab.ResolveOptions)

		_, err := engine.Extract(ctx, "", "", nil)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("progress updates flow through a buffered channel", func(t *testing.T) {
		extractor := &fakeExtractor{entries: testEntries()}
		engine := NewVocabEngine(&fakeLyrics{song: testSong(), lyrics: "la la"}, extractor, vocab.ResolveOptions)

		progress := make(chan ProgressUpdate, 16)
		if _, err := engine.Extract(ctx, "", "moonlight", progress); err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		close(progress)

		phases := make(map[Phase]bool)
		for update := range progress {
			phases[update.Phase] = true
			if update.Message == "" {
				t.Error("updates should carry a message")
			}
		}
		for _, phase := range []Phase{ResolveSong, FetchLyrics, ExtractWords} {
			if !phases[phase] {
				t.Errorf("missing phase %s", phase)
			}
		}
	})
}

func TestVocabEngineBulkExport(t *testing.T) {
	ctx := context.Background()
	engine := NewVocabEngine(&fakeLyrics{song: testSong()}, &fakeExtractor{}, vocab.ResolveOptions)

	lists := []*models.VocabularyList{
		{ID: "list-1", Title: "First", Entries: testEntries()},
		{ID: "list-2", Title: "Second", Entries: testEntries()},
	}

	t.Run("writes every list and a manifest", func(t *testing.T) {
		dir := t.TempDir()

		result, err := engine.BulkExport(ctx, nil, lists, BulkExportOpts{Format: "json", OutputDir: dir})
		if err != nil {
			t.Fatalf("bulk export failed: %v", err)
		}

		if result.SuccessfulExports != 2 || result.FailedExports != 0 {
			t.Errorf("unexpected summary: %+v", result)
		}

		for _, name := range []string{"list-1.json", "list-2.json", "export_manifest.json"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("expected %s to exist: %v", name, err)
			}
		}
	})

	t.Run("csv format produces csv files", func(t *testing.T) {
		dir := t.TempDir()

		result, err := engine.BulkExport(ctx, nil, lists[:1], BulkExportOpts{Format: "csv", OutputDir: dir})
		if err != nil {
			t.Fatalf("bulk export failed: %v", err)
		}
		if result.SuccessfulExports != 1 {
			t.Fatalf("unexpected summary: %+v", result)
		}
		if _, err := os.Stat(filepath.Join(dir, "list-1.csv")); err != nil {
			t.Errorf("expected csv file: %v", err)
		}
	})
}
