package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyra/internal/repositories"
	"github.com/desertthunder/lyra/internal/server"
	"github.com/desertthunder/lyra/internal/services"
	"github.com/desertthunder/lyra/internal/shared"
	"github.com/desertthunder/lyra/internal/tasks"
	"github.com/desertthunder/lyra/internal/vocab"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// googleEndpoint is Google's OAuth2 authorization and token endpoint pair.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	lyrics     services.LyricsService
	model      services.ModelService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Lyrics     services.LyricsService
	Model      services.ModelService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Lyrics == nil {
		creds := opts.Config.Credentials.Genius
		genius := services.NewGeniusService(creds.AccessToken, creds.BaseURL)
		if creds.HeadersPath != "" {
			if headers, err := shared.ParseCurlFile(creds.HeadersPath); err == nil {
				genius.SetPageHeaders(headers)
			} else {
				opts.Logger.Warn("failed to parse page headers file", "path", creds.HeadersPath, "error", err)
			}
		}
		opts.Lyrics = genius
	}
	if opts.Model == nil {
		creds := opts.Config.Credentials.OpenAI
		opts.Model = services.NewOpenAIService(creds.APIKey, creds.BaseURL, creds.Model)
	}

	return &Runner{
		config:     opts.Config,
		lyrics:     opts.Lyrics,
		model:      opts.Model,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, serveCommand, extractCommand, listsCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openDatabase opens the configured SQLite database with pooling applied.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
}

// buildEngine assembles the extraction pipeline. A nil db produces an engine
// without persistence, used for anonymous runs.
func (r *Runner) buildEngine(db *sql.DB) *tasks.VocabEngine {
	extractor := vocab.NewExtractor(r.model, r.logger)
	engine := tasks.NewVocabEngine(r.lyrics, extractor, vocab.ResolveOptions)

	if db != nil {
		engine.WithStores(
			repositories.NewSettingsRepository(db),
			repositories.NewWordRepository(db),
			repositories.NewListRepository(db),
			repositories.NewHistoryRepository(db),
		)
	}

	return engine
}

// tokenIssuer builds the bearer token issuer from the auth configuration.
func (r *Runner) tokenIssuer() (*server.TokenIssuer, error) {
	if r.config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("%w: auth.jwt_secret", shared.ErrMissingConfig)
	}

	ttl := time.Duration(r.config.Auth.TokenTTLMins) * time.Minute
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return server.NewTokenIssuer(r.config.Auth.JWTSecret, ttl), nil
}

// googleOAuthConfig builds the OAuth2 config for Google sign-in.
func (r *Runner) googleOAuthConfig(redirectURI string) *oauth2.Config {
	creds := r.config.Credentials.Google
	if redirectURI == "" {
		redirectURI = creds.RedirectURI
	}

	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     googleEndpoint,
	}
}

// session is the locally stored sign-in state for CLI commands.
type session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func sessionPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".lyra", "session.json"), nil
}

// saveSession writes the sign-in state to ~/.lyra/session.json.
func (r *Runner) saveSession(s session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// loadSession reads the stored sign-in state. Returns nil without error when
// no session file exists.
func (r *Runner) loadSession() (*session, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	return &s, nil
}

// clearSession removes the stored sign-in state.
func (r *Runner) clearSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
