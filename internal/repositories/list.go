package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/shared"
)

// ListRepository persists vocabulary list snapshots.
//
// Lists are append-only: a snapshot is written once per extraction run and
// never updated. The entry array is stored as a JSON document.
type ListRepository struct {
	db *sql.DB
}

// NewListRepository creates a new [ListRepository] with the given database connection
func NewListRepository(db *sql.DB) *ListRepository {
	return &ListRepository{db: db}
}

// Create inserts a new snapshot with generated ID and sequence.
func (r *ListRepository) Create(list *models.VocabularyList) error {
	sequence, err := NextSequence(r.db, listsTable)
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	entries := list.Entries
	if entries == nil {
		entries = []models.VocabularyEntry{}
	}
	doc, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}

	list.ID = shared.GenerateID()
	list.Sequence = sequence
	list.CreatedAt = time.Now()

	query := `
		INSERT INTO vocabulary_lists (id, sequence, user_id, title, song_title, song_artist, entries, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, list.ID, list.Sequence, list.UserID, list.Title, list.SongTitle, list.SongArtist, string(doc), list.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vocabulary list: %w", err)
	}

	return nil
}

// Get retrieves a snapshot by ID with its full entry array.
func (r *ListRepository) Get(id string) (*models.VocabularyList, error) {
	query := `
		SELECT id, sequence, user_id, title, song_title, song_artist, entries, created_at
		FROM vocabulary_lists
		WHERE id = ?
	`

	return scanList(r.db.QueryRow(query, id))
}

// ListByUser retrieves a user's snapshots, most recent first.
func (r *ListRepository) ListByUser(userID string) ([]*models.VocabularyList, error) {
	query := `
		SELECT id, sequence, user_id, title, song_title, song_artist, entries, created_at
		FROM vocabulary_lists
		WHERE user_id = ?
		ORDER BY sequence DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vocabulary lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.VocabularyList
	for rows.Next() {
		var list models.VocabularyList
		var doc string

		err := rows.Scan(&list.ID, &list.Sequence, &list.UserID, &list.Title, &list.SongTitle, &list.SongArtist, &doc, &list.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vocabulary list: %w", err)
		}

		if err := json.Unmarshal([]byte(doc), &list.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode entries for list %s: %w", list.ID, err)
		}

		lists = append(lists, &list)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lists, nil
}

// scanList scans a single row into a [models.VocabularyList]
func scanList(row *sql.Row) (*models.VocabularyList, error) {
	var list models.VocabularyList
	var doc string

	err := row.Scan(&list.ID, &list.Sequence, &list.UserID, &list.Title, &list.SongTitle, &list.SongArtist, &doc, &list.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: vocabulary list", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan vocabulary list: %w", err)
	}

	if err := json.Unmarshal([]byte(doc), &list.Entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries for list %s: %w", list.ID, err)
	}

	return &list, nil
}
