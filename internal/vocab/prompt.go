package vocab

import (
	"fmt"
	"strings"

	"github.com/desertthunder/lyra/internal/models"
)

// lyricsDelimiter separates the instruction block from the verbatim lyrics.
const lyricsDelimiter = "----- LYRICS -----"

// levelInstructions are the three fixed per-level selection rules.
var levelInstructions = map[models.Level]string{
	models.LevelBeginner:     "Select common, high-frequency words that a beginner should learn first. Skip rare, archaic, or highly idiomatic vocabulary.",
	models.LevelIntermediate: "Select moderately difficult words that an intermediate learner may not know yet. Skip trivial everyday words and very rare ones.",
	models.LevelAdvanced:     "Select rare, idiomatic, or nuanced vocabulary that an advanced learner would want to study. Skip anything an intermediate learner already knows.",
}

// languageInstructions describe tokenization conventions per learning language.
var languageInstructions = map[models.Language]string{
	models.LanguageEnglish: "Tokenize the lyrics using English conventions: fold case, so capitalized and lowercase forms of a word count as the same word.",
	models.LanguageKorean:  "Tokenize the lyrics using Korean conventions: strip punctuation attached to Hangul syllable blocks and use the bare headword without particles.",
}

// annotationLanguage returns the language glosses are written in. Meanings are
// always in the learner's native language, the counterpart of the learning
// language.
func annotationLanguage(lang models.Language) string {
	if lang == models.LanguageKorean {
		return "English"
	}
	return "Korean"
}

// BuildPrompt renders the deterministic instruction set for the extraction
// model. The returned string is the entire contract with the model, which is
// treated as an untrusted text-in/text-out function.
func BuildPrompt(lyrics string, opts models.VocabularyOptions) string {
	var b strings.Builder

	b.WriteString("You are a vocabulary extraction assistant for language learners studying song lyrics.\n\n")

	b.WriteString(languageInstructions[opts.Language])
	b.WriteString("\n")
	b.WriteString(levelInstructions[opts.Level])
	b.WriteString("\n")
	b.WriteString("Exclude common function words such as articles, auxiliary verbs, pronouns, prepositions, and conjunctions.\n")

	fmt.Fprintf(&b, "Select at most %d words. Ignore any word shorter than %d characters.\n", opts.MaxWords, opts.MinLength)

	fmt.Fprintf(&b, "For each selected word, assign an importance score from 1 to 10, write a short meaning in %s, and give one short example phrase using the word.\n", annotationLanguage(opts.Language))
	b.WriteString("Also list 1 to 5 synonyms per word, in the same language as the word itself.\n\n")

	b.WriteString("Respond with a single JSON array and nothing else: no prose, no markdown fences. ")
	b.WriteString("Each element must be an object with exactly these fields: word, score, meaning, example, synonyms.\n\n")

	b.WriteString(lyricsDelimiter)
	b.WriteString("\n")
	b.WriteString(lyrics)

	return b.String()
}
