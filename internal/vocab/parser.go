package vocab

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/shared"
)

// Parse recovers a structured entry list from unconstrained model output.
//
// The candidate JSON payload is the first bracket-balanced array found in raw
// (or the whole trimmed text when no bracket exists). A syntactically invalid
// candidate is shared.ErrInvalidModelOutput; the orchestrator decides what
// happens next. A valid payload that is not an array yields an empty list and
// no error.
//
// Entries are filtered to objects carrying a string word, normalized,
// length-filtered, counted, deduplicated case-insensitively (first occurrence
// wins) and truncated to maxWords preserving order.
func Parse(raw string, maxWords, minLength int) ([]models.VocabularyEntry, error) {
	candidate := jsonArrayCandidate(raw)

	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidModelOutput, err)
	}

	arr, ok := value.([]any)
	if !ok {
		return []models.VocabularyEntry{}, nil
	}

	// Filter and normalize before any counting.
	var filtered []models.VocabularyEntry
	for _, elem := range arr {
		obj, ok := elem.(map[string]any)
		if !ok {
			continue
		}

		word, ok := obj["word"].(string)
		if !ok {
			continue
		}

		word = strings.TrimSpace(word)
		if utf8.RuneCountInString(word) < minLength {
			continue
		}

		entry := models.VocabularyEntry{Word: word}

		if score, ok := obj["score"].(float64); ok {
			entry.Score = &score
		}
		if meaning, ok := obj["meaning"].(string); ok {
			entry.Meaning = &meaning
		}
		if example, ok := obj["example"].(string); ok {
			entry.Example = &example
		}
		if synonyms := normalizeSynonyms(obj["synonyms"]); len(synonyms) > 0 {
			entry.Synonyms = synonyms
		}

		filtered = append(filtered, entry)
	}

	// Occurrence counts are computed over the filtered list before dedup.
	counts := make(map[string]int, len(filtered))
	for _, entry := range filtered {
		counts[entry.Key()]++
	}

	seen := make(map[string]bool, len(filtered))
	var entries []models.VocabularyEntry
	for _, entry := range filtered {
		key := entry.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		entry.Occurrences = counts[key]
		entries = append(entries, entry)

		if len(entries) == maxWords {
			break
		}
	}

	if entries == nil {
		entries = []models.VocabularyEntry{}
	}

	return entries, nil
}

// jsonArrayCandidate locates the first bracket-balanced array in raw. Without
// an opening bracket the whole trimmed text is the candidate; an unbalanced
// tail is returned as-is so the JSON decoder reports the failure.
func jsonArrayCandidate(raw string) string {
	start := strings.Index(raw, "[")
	if start < 0 {
		return strings.TrimSpace(raw)
	}

	depth := 0
	for i := start; i < len(raw); i++ {
		switch raw[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}

	return raw[start:]
}

// normalizeSynonyms coerces a raw synonyms value into a deduplicated list of
// trimmed non-empty strings, or nil when nothing survives.
func normalizeSynonyms(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}

	seen := make(map[string]bool, len(items))
	var synonyms []string
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}

		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}

		seen[s] = true
		synonyms = append(synonyms, s)
	}

	return synonyms
}
