// package formatter provides functions to export vocabulary lists to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/lyra/internal/models"
)

// ExportToCSV converts a VocabularyList to CSV format with columns: Word, Score, Meaning, Example, Synonyms, Occurrences
func ExportToCSV(list *models.VocabularyList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Word", "Score", "Meaning", "Example", "Synonyms", "Occurrences"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range list.Entries {
		record := []string{
			entry.Word,
			scoreString(entry.Score),
			stringOrEmpty(entry.Meaning),
			stringOrEmpty(entry.Example),
			strings.Join(entry.Synonyms, "; "),
			strconv.Itoa(entry.Occurrences),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a VocabularyList to a Markdown study sheet
func ExportToMarkdown(list *models.VocabularyList) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", list.Title))

	if list.SongTitle != "" {
		buf.WriteString(fmt.Sprintf("**Song**: %s", list.SongTitle))
		if list.SongArtist != "" {
			buf.WriteString(fmt.Sprintf(" by %s", list.SongArtist))
		}
		buf.WriteString("\n\n")
	}

	buf.WriteString(fmt.Sprintf("**Words**: %d\n\n", len(list.Entries)))

	buf.WriteString("## Vocabulary\n\n")
	for i, entry := range list.Entries {
		buf.WriteString(fmt.Sprintf("%d. **%s**", i+1, entry.Word))
		if entry.Score != nil {
			buf.WriteString(fmt.Sprintf(" (score %s)", scoreString(entry.Score)))
		}
		buf.WriteString("\n")

		if entry.Meaning != nil && *entry.Meaning != "" {
			buf.WriteString(fmt.Sprintf("   - Meaning: %s\n", *entry.Meaning))
		}
		if entry.Example != nil && *entry.Example != "" {
			buf.WriteString(fmt.Sprintf("   - Example: %s\n", *entry.Example))
		}
		if len(entry.Synonyms) > 0 {
			buf.WriteString(fmt.Sprintf("   - Synonyms: %s\n", strings.Join(entry.Synonyms, ", ")))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a VocabularyList to plain text format
func ExportToText(list *models.VocabularyList) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("List: %s\n", list.Title))
	if list.SongTitle != "" {
		buf.WriteString(fmt.Sprintf("Song: %s - %s\n", list.SongArtist, list.SongTitle))
	}
	buf.WriteString(fmt.Sprintf("Words: %d\n\n", len(list.Entries)))

	for i, entry := range list.Entries {
		buf.WriteString(fmt.Sprintf("%d. %s", i+1, entry.Word))
		if entry.Meaning != nil && *entry.Meaning != "" {
			buf.WriteString(fmt.Sprintf(" - %s", *entry.Meaning))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// WriteListJSON writes a list as an indented JSON document and returns the path.
func WriteListJSON(list *models.VocabularyList, path string) (string, error) {
	if path == "" {
		path = list.ID + ".json"
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

// WriteListCSV writes a list in CSV format and returns the path.
func WriteListCSV(list *models.VocabularyList, path string) (string, error) {
	if path == "" {
		path = list.ID + ".csv"
	}

	data, err := ExportToCSV(list)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return path, nil
}

// WriteListMarkdown writes a list as a Markdown study sheet and returns the path.
func WriteListMarkdown(list *models.VocabularyList, path string) (string, error) {
	if path == "" {
		path = list.ID + ".md"
	}

	data, err := ExportToMarkdown(list)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return path, nil
}

// WriteListText writes a list in plain text format and returns the path.
func WriteListText(list *models.VocabularyList, path string) (string, error) {
	if path == "" {
		path = list.ID + ".txt"
	}

	data, err := ExportToText(list)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteExportManifest writes a JSON summary of a bulk export run.
func WriteExportManifest(manifest any, path string) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// scoreString renders a score pointer without trailing zeros.
func scoreString(score *float64) string {
	if score == nil {
		return ""
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}

// stringOrEmpty dereferences an optional string field.
func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
