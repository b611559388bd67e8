// package services defines interfaces for interacting with external HTTP APIs
//
// Genius (lyrics catalog + pages), OpenAI (extraction model)
package services

import (
	"context"
	"encoding/json"

	"github.com/desertthunder/lyra/internal/models"
)

// LyricsService resolves free-text song queries against an external lyrics catalog.
type LyricsService interface {
	// Search returns the catalog hits for a query, best match first.
	Search(ctx context.Context, query string) ([]models.Song, error)

	// GetSong retrieves full song metadata by catalog ID.
	GetSong(ctx context.Context, id int64) (*models.Song, error)

	// Lyrics resolves a query to its first search hit and returns the song
	// together with the extracted plain-text lyrics.
	//
	// Returns shared.ErrSongNotFound when the search yields no candidates and
	// shared.ErrLyricsFetch when the first candidate's lyrics cannot be
	// retrieved or extracted.
	Lyrics(ctx context.Context, query string) (*models.Song, string, error)

	// Name returns the name of the service (e.g., "Genius")
	Name() string
}

// ModelService is the extraction model, treated as an untrusted
// text-in/text-out function.
type ModelService interface {
	// Configured reports whether the client holds a usable credential.
	Configured() bool

	// StreamCompletion sends a prompt and drains the streamed response into a
	// single string. onDelta, when non-nil, receives each chunk as it arrives.
	StreamCompletion(ctx context.Context, prompt string, onDelta func(delta string)) (string, error)

	// CompleteJSON sends a prompt with a JSON schema constraint and returns
	// the raw conforming document.
	CompleteJSON(ctx context.Context, prompt string, schemaName string, schema map[string]any) (json.RawMessage, error)

	// Name returns the name of the service (e.g., "OpenAI")
	Name() string
}
