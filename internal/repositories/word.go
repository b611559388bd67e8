package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/shared"
)

// WordRepository persists the cumulative per-user word aggregate.
//
// Rows are keyed by (user_id, word_key) where word_key is the case-folded
// word, so "Shine" and "shine" land on the same row. The stored word column
// keeps the casing of the first insert.
type WordRepository struct {
	db *sql.DB
}

// NewWordRepository creates a new [WordRepository] with the given database connection
func NewWordRepository(db *sql.DB) *WordRepository {
	return &WordRepository{db: db}
}

// Upsert folds one extracted entry into the user's aggregate.
//
// A new word inserts with count = occurrences; an existing row increments its
// count by occurrences and keeps its original casing. A non-null incoming
// meaning replaces the stored one; a null incoming meaning leaves it alone.
// Synonyms accumulate as a set on a best-effort basis: a failed synonym write
// does not fail the upsert. Returns the affected row's ID.
func (r *WordRepository) Upsert(userID string, entry models.VocabularyEntry) (string, error) {
	key := entry.Key()
	if key == "" {
		return "", fmt.Errorf("%w: empty word", shared.ErrInvalidInput)
	}

	occurrences := entry.Occurrences
	if occurrences < 1 {
		occurrences = 1
	}

	sequence, err := NextSequence(r.db, wordsTable)
	if err != nil {
		return "", fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()

	// The generated ID and sequence only take effect on insert; on conflict
	// the existing row keeps its identity and the burned sequence is wasted,
	// which is harmless since sequences only provide ordering.
	query := `
		INSERT INTO words (id, sequence, user_id, word, word_key, meaning, count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, word_key) DO UPDATE SET
			count = words.count + excluded.count,
			meaning = COALESCE(excluded.meaning, words.meaning),
			updated_at = excluded.updated_at
		RETURNING id
	`

	var meaning any
	if entry.Meaning != nil {
		meaning = *entry.Meaning
	}

	var id string
	err = r.db.QueryRow(query,
		shared.GenerateID(),
		sequence,
		userID,
		strings.TrimSpace(entry.Word),
		key,
		meaning,
		occurrences,
		now,
		now,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert word: %w", err)
	}

	for _, synonym := range entry.Synonyms {
		synonym = strings.TrimSpace(synonym)
		if synonym == "" {
			continue
		}
		// Best effort; the word row is already committed.
		_, _ = r.db.Exec("INSERT OR IGNORE INTO synonyms (word_id, synonym) VALUES (?, ?)", id, synonym)
	}

	return id, nil
}

// Get retrieves a word row by ID, including its synonym set.
func (r *WordRepository) Get(id string) (*models.Word, error) {
	query := `
		SELECT id, sequence, user_id, word, meaning, count, created_at, updated_at
		FROM words
		WHERE id = ?
	`

	var word models.Word
	var meaning sql.NullString

	err := r.db.QueryRow(query, id).Scan(
		&word.ID, &word.Sequence, &word.UserID, &word.Word,
		&meaning, &word.Count, &word.CreatedAt, &word.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: word %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan word: %w", err)
	}

	if meaning.Valid {
		word.Meaning = &meaning.String
	}

	synonyms, err := r.synonymsFor(word.ID)
	if err != nil {
		return nil, err
	}
	word.Synonyms = synonyms

	return &word, nil
}

// ListByUser retrieves a user's word aggregate ordered by count descending,
// ties broken by insertion order.
func (r *WordRepository) ListByUser(userID string) ([]*models.Word, error) {
	query := `
		SELECT id, sequence, user_id, word, meaning, count, created_at, updated_at
		FROM words
		WHERE user_id = ?
		ORDER BY count DESC, sequence ASC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	var words []*models.Word
	for rows.Next() {
		var word models.Word
		var meaning sql.NullString

		err := rows.Scan(
			&word.ID, &word.Sequence, &word.UserID, &word.Word,
			&meaning, &word.Count, &word.CreatedAt, &word.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}

		if meaning.Valid {
			word.Meaning = &meaning.String
		}

		words = append(words, &word)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, word := range words {
		synonyms, err := r.synonymsFor(word.ID)
		if err != nil {
			return nil, err
		}
		word.Synonyms = synonyms
	}

	return words, nil
}

// synonymsFor returns the stored synonym set for a word row.
func (r *WordRepository) synonymsFor(wordID string) ([]string, error) {
	rows, err := r.db.Query("SELECT synonym FROM synonyms WHERE word_id = ? ORDER BY synonym ASC", wordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query synonyms: %w", err)
	}
	defer rows.Close()

	var synonyms []string
	for rows.Next() {
		var synonym string
		if err := rows.Scan(&synonym); err != nil {
			return nil, fmt.Errorf("failed to scan synonym: %w", err)
		}
		synonyms = append(synonyms, synonym)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return synonyms, nil
}
