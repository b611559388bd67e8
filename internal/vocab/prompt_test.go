package vocab

import (
	"strings"
	"testing"

	"github.com/desertthunder/lyra/internal/models"
)

func TestBuildPrompt(t *testing.T) {
	lyrics := "walking down the boulevard"
	opts := models.DefaultOptions()

	t.Run("is deterministic", func(t *testing.T) {
		if BuildPrompt(lyrics, opts) != BuildPrompt(lyrics, opts) {
			t.Error("identical inputs should produce identical prompts")
		}
	})

	t.Run("embeds numeric limits", func(t *testing.T) {
		opts := opts
		opts.MaxWords = 17
		opts.MinLength = 4

		prompt := BuildPrompt(lyrics, opts)
		if !strings.Contains(prompt, "at most 17 words") {
			t.Error("expected max word count in prompt")
		}
		if !strings.Contains(prompt, "shorter than 4 characters") {
			t.Error("expected min length in prompt")
		}
	})

	t.Run("places lyrics after the delimiter", func(t *testing.T) {
		prompt := BuildPrompt(lyrics, opts)

		idx := strings.Index(prompt, lyricsDelimiter)
		if idx < 0 {
			t.Fatal("expected delimiter in prompt")
		}
		if !strings.Contains(prompt[idx:], lyrics) {
			t.Error("expected lyrics verbatim after the delimiter")
		}
		if strings.Contains(prompt[:idx], lyrics) {
			t.Error("lyrics should not appear before the delimiter")
		}
	})

	t.Run("varies with level", func(t *testing.T) {
		beginner := opts
		beginner.Level = models.LevelBeginner
		advanced := opts
		advanced.Level = models.LevelAdvanced

		if BuildPrompt(lyrics, beginner) == BuildPrompt(lyrics, advanced) {
			t.Error("expected level to change the prompt")
		}
	})

	t.Run("annotation language is the counterpart of the learning language", func(t *testing.T) {
		en := opts
		en.Language = models.LanguageEnglish
		ko := opts
		ko.Language = models.LanguageKorean

		if !strings.Contains(BuildPrompt(lyrics, en), "meaning in Korean") {
			t.Error("English learning should gloss in Korean")
		}
		if !strings.Contains(BuildPrompt(lyrics, ko), "meaning in English") {
			t.Error("Korean learning should gloss in English")
		}
	})

	t.Run("demands a bare JSON array", func(t *testing.T) {
		prompt := BuildPrompt(lyrics, opts)
		if !strings.Contains(prompt, "single JSON array") {
			t.Error("expected the output format instruction")
		}
		for _, field := range []string{"word", "score", "meaning", "example", "synonyms"} {
			if !strings.Contains(prompt, field) {
				t.Errorf("expected field %q to be named", field)
			}
		}
	})
}
