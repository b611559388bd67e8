package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/shared"
)

// UserRepository persists [models.User] rows keyed by their Google account ID.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts a user on first login and refreshes profile fields on every
// subsequent login with the same Google ID. The internal ID and sequence are
// assigned once and never change.
func (r *UserRepository) Upsert(user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	existing, err := r.GetByGoogleID(user.GoogleID)
	if err == nil {
		user.ID = existing.ID
		user.Sequence = existing.Sequence
		user.CreatedAt = existing.CreatedAt
		return r.update(user)
	}
	if !isNotFound(err) {
		return err
	}

	sequence, err := NextSequence(r.db, usersTable)
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	user.ID = shared.GenerateID()
	user.Sequence = sequence
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, sequence, google_id, email, name, picture_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, user.ID, user.Sequence, user.GoogleID, user.Email, user.Name, user.PictureURL, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// update refreshes the mutable profile fields of an existing user.
func (r *UserRepository) update(user *models.User) error {
	now := time.Now()
	user.UpdatedAt = now

	query := `
		UPDATE users
		SET email = ?, name = ?, picture_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, user.Email, user.Name, user.PictureURL, now, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: user %s", shared.ErrNotFound, user.ID)
	}

	return nil
}

// Get retrieves a user by internal ID, excluding soft-deleted users
func (r *UserRepository) Get(id string) (*models.User, error) {
	query := `
		SELECT id, sequence, google_id, email, name, picture_url, created_at, updated_at, deleted_at
		FROM users
		WHERE id = ? AND deleted_at IS NULL
	`

	return scanUser(r.db.QueryRow(query, id))
}

// GetByGoogleID retrieves a user by Google account ID, excluding soft-deleted users
func (r *UserRepository) GetByGoogleID(googleID string) (*models.User, error) {
	query := `
		SELECT id, sequence, google_id, email, name, picture_url, created_at, updated_at, deleted_at
		FROM users
		WHERE google_id = ? AND deleted_at IS NULL
	`

	return scanUser(r.db.QueryRow(query, googleID))
}

// Delete soft-deletes a user by ID
func (r *UserRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE users
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all users, excluding soft-deleted users
func (r *UserRepository) List() ([]*models.User, error) {
	query := `
		SELECT id, sequence, google_id, email, name, picture_url, created_at, updated_at, deleted_at
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY sequence ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

// scanUser scans a single row into a [models.User]
func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var deletedAt sql.NullTime

	err := row.Scan(&user.ID, &user.Sequence, &user.GoogleID, &user.Email, &user.Name, &user.PictureURL, &user.CreatedAt, &user.UpdatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}

	return &user, nil
}

// scanUserRow scans a row from [sql.Rows] into a [models.User]
func scanUserRow(rows *sql.Rows) (*models.User, error) {
	var user models.User
	var deletedAt sql.NullTime

	err := rows.Scan(&user.ID, &user.Sequence, &user.GoogleID, &user.Email, &user.Name, &user.PictureURL, &user.CreatedAt, &user.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}

	return &user, nil
}
