package vocab

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/lyra/internal/models"
)

// Placeholder values marking fallback entries as degraded-quality output.
const (
	fallbackScore   = 5.0
	fallbackMeaning = "meaning unavailable (offline extraction)"
	fallbackExample = "example unavailable (offline extraction)"
)

var nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// stopWords is a fixed function-word set: articles, auxiliary verbs, pronouns,
// prepositions, conjunctions. Language-agnostic best effort, tuned for English.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "but": true, "or": true, "nor": true, "so": true, "yet": true,
	"i": true, "me": true, "my": true, "mine": true, "we": true, "us": true, "our": true,
	"you": true, "your": true, "yours": true, "he": true, "him": true, "his": true,
	"she": true, "her": true, "hers": true, "it": true, "its": true, "they": true,
	"them": true, "their": true, "theirs": true, "this": true, "that": true,
	"these": true, "those": true, "who": true, "whom": true, "what": true, "which": true,
	"am": true, "is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "do": true, "does": true, "did": true, "have": true,
	"has": true, "had": true, "will": true, "would": true, "shall": true, "should": true,
	"can": true, "could": true, "may": true, "might": true, "must": true,
	"in": true, "on": true, "at": true, "to": true, "of": true, "for": true,
	"from": true, "with": true, "by": true, "about": true, "into": true, "over": true,
	"under": true, "up": true, "down": true, "out": true, "off": true, "as": true,
	"if": true, "then": true, "than": true, "when": true, "while": true, "because": true,
	"not": true, "no": true, "oh": true, "ooh": true, "yeah": true, "la": true, "na": true,
}

// Fallback is the deterministic local extractor used when both model paths
// fail. It never fails: any non-empty input yields placeholder-quality
// entries, each with occurrences fixed at 1.
func Fallback(lyrics string, maxWords, minLength int) []models.VocabularyEntry {
	text := strings.ToLower(lyrics)
	text = nonWordRegex.ReplaceAllString(text, " ")

	seen := make(map[string]bool)
	entries := []models.VocabularyEntry{}

	for _, token := range strings.Fields(text) {
		if utf8.RuneCountInString(token) < minLength {
			continue
		}
		if stopWords[token] || seen[token] {
			continue
		}
		seen[token] = true

		score := fallbackScore
		meaning := fallbackMeaning
		example := fallbackExample
		entries = append(entries, models.VocabularyEntry{
			Word:        token,
			Score:       &score,
			Meaning:     &meaning,
			Example:     &example,
			Occurrences: 1,
		})

		if len(entries) == maxWords {
			break
		}
	}

	return entries
}
