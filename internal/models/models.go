// package models defines the data model for the lyra vocabulary service
package models

import (
	"fmt"
	"strings"
	"time"
)

// Language enumerates the supported learning languages.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageKorean  Language = "ko"
)

// Level enumerates the supported proficiency levels.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// VocabularyOptions is the extraction policy applied to one pipeline run.
type VocabularyOptions struct {
	Language  Language `json:"language"`
	Level     Level    `json:"level"`
	MaxWords  int      `json:"maxWords"`
	MinLength int      `json:"minLength"`
}

// Bounds for the numeric option fields.
const (
	MaxWordsFloor  = 1
	MaxWordsCeil   = 200
	MinLengthFloor = 1
	MinLengthCeil  = 20
)

// DefaultOptions returns the fixed default extraction policy.
func DefaultOptions() VocabularyOptions {
	return VocabularyOptions{
		Language:  LanguageEnglish,
		Level:     LevelIntermediate,
		MaxWords:  30,
		MinLength: 2,
	}
}

// Validate checks that every option field holds an allowed value.
func (o VocabularyOptions) Validate() error {
	switch o.Language {
	case LanguageEnglish, LanguageKorean:
	default:
		return fmt.Errorf("invalid language %q", o.Language)
	}

	switch o.Level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
	default:
		return fmt.Errorf("invalid level %q", o.Level)
	}

	if o.MaxWords < MaxWordsFloor || o.MaxWords > MaxWordsCeil {
		return fmt.Errorf("maxWords %d out of range [%d,%d]", o.MaxWords, MaxWordsFloor, MaxWordsCeil)
	}

	if o.MinLength < MinLengthFloor || o.MinLength > MinLengthCeil {
		return fmt.Errorf("minLength %d out of range [%d,%d]", o.MinLength, MinLengthFloor, MinLengthCeil)
	}

	return nil
}

// VocabularyEntry is one extracted word candidate.
//
// Within one extraction result words are unique under case-insensitive
// comparison; the first occurrence's casing and fields win and later
// duplicates only contribute to Occurrences.
type VocabularyEntry struct {
	Word        string   `json:"word"`
	Score       *float64 `json:"score,omitempty"`
	Meaning     *string  `json:"meaning,omitempty"`
	Example     *string  `json:"example,omitempty"`
	Synonyms    []string `json:"synonyms,omitempty"`
	Occurrences int      `json:"occurrences"`
}

// Key returns the case-folded form of the entry's word, used for deduplication
// and as the persistence key.
func (e VocabularyEntry) Key() string {
	return strings.ToLower(strings.TrimSpace(e.Word))
}

// Song is the metadata of a resolved lyrics source record.
type Song struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	PageURL      string `json:"pageUrl,omitempty"`
}

// User is an account created through OAuth login.
type User struct {
	ID         string     `json:"id"`
	Sequence   int        `json:"-"`
	GoogleID   string     `json:"-"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	PictureURL string     `json:"pictureUrl,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	DeletedAt  *time.Time `json:"-"`
}

// Validate checks required user fields.
func (u *User) Validate() error {
	if u.GoogleID == "" {
		return fmt.Errorf("google id is required")
	}
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	return nil
}

// UserSettings is the persisted per-user extraction policy.
//
// Stored values may drift from the allowed enums (older rows, manual edits);
// resolution coerces them back field-by-field rather than failing.
type UserSettings struct {
	UserID    string    `json:"-"`
	Language  string    `json:"language"`
	Level     string    `json:"level"`
	MaxWords  int       `json:"maxWords"`
	MinLength int       `json:"minLength"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Word is the cumulative per-user word aggregate.
type Word struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"-"`
	UserID    string    `json:"-"`
	Word      string    `json:"word"`
	Meaning   *string   `json:"meaning,omitempty"`
	Count     int       `json:"count"`
	Synonyms  []string  `json:"synonyms,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VocabularyList is an immutable snapshot of one extraction result.
type VocabularyList struct {
	ID         string            `json:"id"`
	Sequence   int               `json:"-"`
	UserID     string            `json:"-"`
	Title      string            `json:"title"`
	SongTitle  string            `json:"songTitle"`
	SongArtist string            `json:"songArtist"`
	Entries    []VocabularyEntry `json:"entries"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// WatchEntry is one music-watch history record.
type WatchEntry struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"-"`
	UserID    string    `json:"-"`
	VideoID   string    `json:"videoId,omitempty"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist,omitempty"`
	WatchedAt time.Time `json:"watchedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks required watch entry fields.
func (w *WatchEntry) Validate() error {
	if w.Title == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}
