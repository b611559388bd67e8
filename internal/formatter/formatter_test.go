package formatter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/lyra/internal/models"
)

func sampleList() *models.VocabularyList {
	score := 8.5
	meaning := "light from the moon"
	example := "the moonlight spilled across the water"
	return &models.VocabularyList{
		ID:         "list-1",
		UserID:     "user-1",
		Title:      "Moonlight Sonata vocabulary",
		SongTitle:  "Moonlight Sonata",
		SongArtist: "The Nocturnes",
		Entries: []models.VocabularyEntry{
			{Word: "moonlight", Score: &score, Meaning: &meaning, Example: &example, Synonyms: []string{"moonbeam", "moonglow"}, Occurrences: 3},
			{Word: "sonata", Occurrences: 1},
		},
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(sampleList())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "Word" || records[0][5] != "Occurrences" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][0] != "moonlight" || records[1][1] != "8.5" || records[1][5] != "3" {
		t.Errorf("unexpected first row: %v", records[1])
	}
	if records[1][4] != "moonbeam; moonglow" {
		t.Errorf("unexpected synonym cell: %q", records[1][4])
	}
	if records[2][1] != "" || records[2][2] != "" {
		t.Errorf("missing optional fields should be empty cells: %v", records[2])
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(sampleList())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	text := string(data)
	for _, want := range []string{
		"# Moonlight Sonata vocabulary",
		"**Song**: Moonlight Sonata by The Nocturnes",
		"1. **moonlight** (score 8.5)",
		"- Meaning: light from the moon",
		"- Synonyms: moonbeam, moonglow",
		"2. **sonata**",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in markdown output", want)
		}
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(sampleList())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	text := string(data)
	if !strings.Contains(text, "1. moonlight - light from the moon") {
		t.Errorf("expected annotated line, got:\n%s", text)
	}
	if !strings.Contains(text, "2. sonata\n") {
		t.Errorf("expected bare line for entry without meaning, got:\n%s", text)
	}
}

func TestWriteListJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	written, err := WriteListJSON(sampleList(), path)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if written != path {
		t.Errorf("expected %q, got %q", path, written)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var decoded models.VocabularyList
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Title != "Moonlight Sonata vocabulary" || len(decoded.Entries) != 2 {
		t.Errorf("round trip lost data: %+v", decoded)
	}
}

func TestWriteExportManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	manifest := map[string]any{"totalLists": 2, "outputDirectory": dir}
	if err := WriteExportManifest(manifest, path); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(data), "totalLists") {
		t.Errorf("manifest missing fields:\n%s", data)
	}
}
