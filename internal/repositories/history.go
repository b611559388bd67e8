package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/shared"
)

// HistoryRepository persists music watch events.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new [HistoryRepository] with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts a new watch event with generated ID and sequence. A zero
// WatchedAt defaults to the insertion time.
func (r *HistoryRepository) Create(entry *models.WatchEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, historyTable)
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	entry.ID = shared.GenerateID()
	entry.Sequence = sequence
	entry.CreatedAt = now
	if entry.WatchedAt.IsZero() {
		entry.WatchedAt = now
	}

	query := `
		INSERT INTO watch_history (id, sequence, user_id, video_id, title, artist, watched_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, entry.ID, entry.Sequence, entry.UserID, entry.VideoID, entry.Title, entry.Artist, entry.WatchedAt, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert watch entry: %w", err)
	}

	return nil
}

// ListByUser retrieves a user's watch events, most recently watched first,
// capped at limit when it is positive.
func (r *HistoryRepository) ListByUser(userID string, limit int) ([]*models.WatchEntry, error) {
	query := `
		SELECT id, sequence, user_id, video_id, title, artist, watched_at, created_at
		FROM watch_history
		WHERE user_id = ?
		ORDER BY watched_at DESC, sequence DESC
	`

	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch history: %w", err)
	}
	defer rows.Close()

	var entries []*models.WatchEntry
	for rows.Next() {
		var entry models.WatchEntry

		err := rows.Scan(&entry.ID, &entry.Sequence, &entry.UserID, &entry.VideoID, &entry.Title, &entry.Artist, &entry.WatchedAt, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watch entry: %w", err)
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}
