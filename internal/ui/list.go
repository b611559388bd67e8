package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/lyra/internal/models"
)

var (
	_ list.Item = vocabListItem{}
	_ list.Item = entryItem{}
)

// vocabListItem wraps [models.VocabularyList] to implement [list.Item].
type vocabListItem struct {
	list *models.VocabularyList
}

func (i vocabListItem) FilterValue() string { return i.list.Title }
func (i vocabListItem) Title() string       { return i.list.Title }
func (i vocabListItem) Description() string {
	desc := fmt.Sprintf("%d words", len(i.list.Entries))
	if i.list.SongArtist != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.list.SongArtist)
	}
	return desc
}

// entryItem wraps [models.VocabularyEntry] to implement [list.Item].
type entryItem struct {
	entry models.VocabularyEntry
}

func (i entryItem) FilterValue() string { return i.entry.Word }

func (i entryItem) Title() string {
	title := i.entry.Word
	if i.entry.Score != nil {
		title = fmt.Sprintf("%s (%.0f)", title, *i.entry.Score)
	}
	if i.entry.Occurrences > 1 {
		title = fmt.Sprintf("%s ×%d", title, i.entry.Occurrences)
	}
	return title
}

func (i entryItem) Description() string {
	var parts []string
	if i.entry.Meaning != nil && *i.entry.Meaning != "" {
		parts = append(parts, *i.entry.Meaning)
	}
	if len(i.entry.Synonyms) > 0 {
		parts = append(parts, strings.Join(i.entry.Synonyms, ", "))
	}
	return strings.Join(parts, " • ")
}
