package main

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/lyra/internal/shared"
	tu "github.com/desertthunder/lyra/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			lyrics := &tu.MockLyricsService{}
			model := &tu.MockModelService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Lyrics:     lyrics,
				Model:      model,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.lyrics != lyrics {
				t.Error("expected lyrics service to be set")
			}
			if runner.model != model {
				t.Error("expected model service to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with nil services builds from config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.lyrics == nil {
				t.Error("expected lyrics service to be constructed")
			}
			if runner.model == nil {
				t.Error("expected model service to be constructed")
			}
			if runner.lyrics.Name() != "Genius" {
				t.Errorf("expected Genius lyrics service, got %s", runner.lyrics.Name())
			}
			if runner.model.Name() != "OpenAI" {
				t.Errorf("expected OpenAI model service, got %s", runner.model.Name())
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("tokenIssuer", func(t *testing.T) {
		t.Run("requires a configured secret", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Auth.JWTSecret = ""
			runner := NewRunner(RunnerOpts{Config: config})

			_, err := runner.tokenIssuer()
			if !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("builds issuer from config", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Auth.JWTSecret = "test-secret"
			config.Auth.TokenTTLMins = 60
			runner := NewRunner(RunnerOpts{Config: config})

			issuer, err := runner.tokenIssuer()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if issuer == nil {
				t.Fatal("expected issuer to be built")
			}
		})
	})

	t.Run("googleOAuthConfig", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Google.ClientID = "client-id"
		config.Credentials.Google.ClientSecret = "client-secret"
		config.Credentials.Google.RedirectURI = "http://localhost:9090/callback"
		runner := NewRunner(RunnerOpts{Config: config})

		t.Run("uses the configured redirect by default", func(t *testing.T) {
			oauthConfig := runner.googleOAuthConfig("")

			if oauthConfig.ClientID != "client-id" {
				t.Errorf("expected client id from config, got %s", oauthConfig.ClientID)
			}
			if oauthConfig.RedirectURL != "http://localhost:9090/callback" {
				t.Errorf("expected configured redirect, got %s", oauthConfig.RedirectURL)
			}
		})

		t.Run("explicit redirect overrides config", func(t *testing.T) {
			oauthConfig := runner.googleOAuthConfig("http://localhost:7777/callback")

			if oauthConfig.RedirectURL != "http://localhost:7777/callback" {
				t.Errorf("expected override redirect, got %s", oauthConfig.RedirectURL)
			}
		})
	})

	t.Run("session", func(t *testing.T) {
		t.Run("save then load round-trips", func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			runner := NewRunner(RunnerOpts{})

			saved := session{UserID: "user-1", Email: "test@example.com", Token: "bearer-token"}
			if err := runner.saveSession(saved); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			loaded, err := runner.loadSession()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if loaded == nil {
				t.Fatal("expected session to be loaded")
			}
			if *loaded != saved {
				t.Errorf("expected %+v, got %+v", saved, *loaded)
			}
		})

		t.Run("load without a session file is nil", func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			runner := NewRunner(RunnerOpts{})

			loaded, err := runner.loadSession()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if loaded != nil {
				t.Errorf("expected nil session, got %+v", loaded)
			}
		})

		t.Run("clear removes the session file", func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			runner := NewRunner(RunnerOpts{})

			if err := runner.saveSession(session{UserID: "user-1"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if err := runner.clearSession(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			loaded, err := runner.loadSession()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if loaded != nil {
				t.Error("expected session to be removed")
			}
		})

		t.Run("clear is idempotent", func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			runner := NewRunner(RunnerOpts{})

			if err := runner.clearSession(); err != nil {
				t.Errorf("expected no error clearing missing session, got %v", err)
			}
		})
	})
}
