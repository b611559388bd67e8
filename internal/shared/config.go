package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Auth        AuthConfig        `toml:"auth"`
	Vocabulary  VocabularyConfig  `toml:"vocabulary"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Genius GeniusConfig `toml:"genius"`
	OpenAI OpenAIConfig `toml:"openai"`
	Google GoogleConfig `toml:"google"`
}

// GeniusConfig contains lyrics catalog API credentials.
type GeniusConfig struct {
	AccessToken string `toml:"access_token"`
	BaseURL     string `toml:"base_url"`
	HeadersPath string `toml:"headers_path"`
}

// OpenAIConfig contains extraction model API credentials.
type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// GoogleConfig contains Google OAuth2 client credentials for user login.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// AuthConfig contains JWT issuance settings.
type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	TokenTTLMins int    `toml:"token_ttl_minutes"`
}

// VocabularyConfig contains default extraction policy values, used when a user
// has no persisted settings row.
type VocabularyConfig struct {
	Language  string `toml:"language"`
	Level     string `toml:"level"`
	MaxWords  int    `toml:"max_words"`
	MinLength int    `toml:"min_length"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
