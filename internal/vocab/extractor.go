package vocab

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/services"
	"github.com/desertthunder/lyra/internal/shared"
)

// Extractor sequences the three extraction stages against a model client.
type Extractor struct {
	model  services.ModelService
	logger *log.Logger
}

// NewExtractor creates an Extractor using the given model client.
func NewExtractor(model services.ModelService, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Extractor{model: model, logger: logger}
}

// Extract runs the pipeline stages strictly in sequence, each attempted only
// if the prior one failed:
//
//  1. streaming free-text completion, parsed by [Parse]
//  2. structured-output completion against an explicit schema
//  3. [Fallback], which cannot fail
//
// The only terminal error is a missing model credential, checked before any
// attempt. No stage is retried more than once and no internal timeout or
// backoff applies beyond the model client's own transport.
func (e *Extractor) Extract(ctx context.Context, lyrics string, opts models.VocabularyOptions) ([]models.VocabularyEntry, error) {
	if e.model == nil || !e.model.Configured() {
		return nil, shared.ErrModelNotConfigured
	}

	prompt := BuildPrompt(lyrics, opts)

	raw, err := e.model.StreamCompletion(ctx, prompt, nil)
	if err == nil {
		entries, perr := Parse(raw, opts.MaxWords, opts.MinLength)
		if perr == nil {
			return entries, nil
		}
		err = perr
	}

	e.logger.Warn("free-text extraction failed, retrying with structured output", "err", err)

	entries, serr := e.extractStructured(ctx, prompt, opts)
	if serr == nil {
		return entries, nil
	}

	e.logger.Warn("structured extraction failed, using local fallback", "err", serr)

	return Fallback(lyrics, opts.MaxWords, opts.MinLength), nil
}

// entriesSchema is the schema sent on the structured-output retry.
func entriesSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"entries": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"word":     map[string]any{"type": "string"},
						"score":    map[string]any{"type": "number"},
						"meaning":  map[string]any{"type": "string"},
						"example":  map[string]any{"type": "string"},
						"synonyms": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
					"required": []string{"word"},
				},
			},
		},
		"required": []string{"entries"},
	}
}

// extractStructured asks the model for schema-conforming output directly.
//
// Known limitation: occurrences is fixed at 1 for every entry on this path.
// The schema has no way to ask the model for per-word repetition counts, so
// this path is not count-equivalent to stage 1.
func (e *Extractor) extractStructured(ctx context.Context, prompt string, opts models.VocabularyOptions) ([]models.VocabularyEntry, error) {
	raw, err := e.model.CompleteJSON(ctx, prompt, "vocabulary_entries", entriesSchema())
	if err != nil {
		return nil, err
	}

	var doc struct {
		Entries []struct {
			Word     string   `json:"word"`
			Score    *float64 `json:"score"`
			Meaning  *string  `json:"meaning"`
			Example  *string  `json:"example"`
			Synonyms []string `json:"synonyms"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidModelOutput, err)
	}

	entries := []models.VocabularyEntry{}
	for _, item := range doc.Entries {
		word := strings.TrimSpace(item.Word)
		if utf8.RuneCountInString(word) < opts.MinLength {
			continue
		}

		entry := models.VocabularyEntry{
			Word:        word,
			Score:       item.Score,
			Meaning:     item.Meaning,
			Example:     item.Example,
			Occurrences: 1,
		}

		var synonyms []string
		seen := make(map[string]bool, len(item.Synonyms))
		for _, s := range item.Synonyms {
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			synonyms = append(synonyms, s)
		}
		entry.Synonyms = synonyms

		entries = append(entries, entry)
		if len(entries) == opts.MaxWords {
			break
		}
	}

	return entries, nil
}
