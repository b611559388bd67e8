package vocab

import (
	"github.com/desertthunder/lyra/internal/models"
)

// ResolveOptions maps persisted user settings to a valid extraction policy.
//
// A nil settings row yields the full default set. Otherwise each field is
// coerced independently: unknown language or level values fall back to the
// default for that field, as do out-of-range numeric values. Never fails.
func ResolveOptions(settings *models.UserSettings) models.VocabularyOptions {
	opts := models.DefaultOptions()
	if settings == nil {
		return opts
	}

	switch models.Language(settings.Language) {
	case models.LanguageEnglish, models.LanguageKorean:
		opts.Language = models.Language(settings.Language)
	}

	switch models.Level(settings.Level) {
	case models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced:
		opts.Level = models.Level(settings.Level)
	}

	if settings.MaxWords >= models.MaxWordsFloor && settings.MaxWords <= models.MaxWordsCeil {
		opts.MaxWords = settings.MaxWords
	}

	if settings.MinLength >= models.MinLengthFloor && settings.MinLength <= models.MinLengthCeil {
		opts.MinLength = settings.MinLength
	}

	return opts
}
