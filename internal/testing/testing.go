// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/lyra/internal/models"
)

// MockLyricsService is a configurable test double for [services.LyricsService]
type MockLyricsService struct {
	Songs      []models.Song
	LyricsText string
	Err        error
}

func (m *MockLyricsService) Search(ctx context.Context, query string) ([]models.Song, error) {
	return m.Songs, m.Err
}

func (m *MockLyricsService) GetSong(ctx context.Context, id int64) (*models.Song, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Songs {
		if m.Songs[i].ID == id {
			return &m.Songs[i], nil
		}
	}
	return nil, nil
}

func (m *MockLyricsService) Lyrics(ctx context.Context, query string) (*models.Song, string, error) {
	if m.Err != nil {
		return nil, "", m.Err
	}
	if len(m.Songs) == 0 {
		return nil, "", nil
	}
	return &m.Songs[0], m.LyricsText, nil
}

func (m *MockLyricsService) Name() string { return "mock" }

// MockModelService is a configurable test double for [services.ModelService]
type MockModelService struct {
	IsConfigured bool
	StreamOut    string
	JSONOut      json.RawMessage
	Err          error
}

func (m *MockModelService) Configured() bool { return m.IsConfigured }

func (m *MockModelService) StreamCompletion(ctx context.Context, prompt string, onDelta func(delta string)) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if onDelta != nil {
		onDelta(m.StreamOut)
	}
	return m.StreamOut, nil
}

func (m *MockModelService) CompleteJSON(ctx context.Context, prompt string, schemaName string, schema map[string]any) (json.RawMessage, error) {
	return m.JSONOut, m.Err
}

func (m *MockModelService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
