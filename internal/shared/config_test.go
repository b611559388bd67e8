package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("loads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")

		content := `
[credentials.genius]
access_token = "genius-token"
base_url = "https://api.genius.test"

[credentials.openai]
api_key = "sk-test"
model = "gpt-4o-mini"

[database]
path = "test.db"
max_open_conns = 5

[server]
host = "0.0.0.0"
port = 3000

[auth]
jwt_secret = "secret"
token_ttl_minutes = 60

[vocabulary]
language = "ko"
level = "beginner"
max_words = 50
min_length = 3
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Genius.AccessToken != "genius-token" {
			t.Errorf("expected genius token, got %q", config.Credentials.Genius.AccessToken)
		}
		if config.Credentials.OpenAI.APIKey != "sk-test" {
			t.Errorf("expected openai key, got %q", config.Credentials.OpenAI.APIKey)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected port 3000, got %d", config.Server.Port)
		}
		if config.Auth.TokenTTLMins != 60 {
			t.Errorf("expected TTL 60, got %d", config.Auth.TokenTTLMins)
		}
		if config.Vocabulary.Language != "ko" || config.Vocabulary.Level != "beginner" {
			t.Errorf("unexpected vocabulary defaults: %+v", config.Vocabulary)
		}
	})

	t.Run("fails on missing file", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("fails on malformed file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bad.toml")
		if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for malformed config")
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Database.Path == "" {
		t.Error("expected default database path")
	}
	if config.Server.Port == 0 {
		t.Error("expected default server port")
	}
	if config.Vocabulary.MaxWords != 30 {
		t.Errorf("expected default max_words 30, got %d", config.Vocabulary.MaxWords)
	}
	if config.Vocabulary.MinLength != 2 {
		t.Errorf("expected default min_length 2, got %d", config.Vocabulary.MinLength)
	}
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("creates file from embedded example", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("failed to create config: %v", err)
		}

		if _, err := LoadConfig(path); err != nil {
			t.Errorf("created config should be loadable: %v", err)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("failed to create config: %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when config already exists")
		}
	})
}
