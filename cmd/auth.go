package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/repositories"
	"github.com/desertthunder/lyra/internal/server"
	"github.com/desertthunder/lyra/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// loginTimeout bounds how long the callback server waits for the browser.
const loginTimeout = 3 * time.Minute

// AuthLogin signs the user in with Google.
//
// Starts a temporary localhost server on the configured redirect URI, opens
// the browser for consent, exchanges the authorization code, upserts the
// account, and stores a bearer token in ~/.lyra/session.json.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Google
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: google client credentials not configured", shared.ErrMissingCredentials)
	}

	issuer, err := r.tokenIssuer()
	if err != nil {
		return err
	}

	redirect := creds.RedirectURI
	if redirect == "" {
		redirect = "http://localhost:9090/callback"
	}
	redirectURL, err := url.Parse(redirect)
	if err != nil {
		return fmt.Errorf("%w: invalid redirect URI %q: %v", shared.ErrInvalidConfig, redirect, err)
	}

	oauthConfig := r.googleOAuthConfig(redirect)
	state := shared.GenerateID()
	handler := server.NewOAuthHandler(oauthConfig, state)

	router := server.NewBasicRouter()
	router.Handler(handler)

	srv := &http.Server{Addr: redirectURL.Host, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("callback server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	r.writePlain("Opening browser for Google sign-in...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlain("Open this URL to continue:\n%s\n", authURL)
	}

	var token *oauth2.Token
	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
		}
		token = result.Token
	case <-time.After(loginTimeout):
		return fmt.Errorf("%w: timed out waiting for browser callback", shared.ErrAuthFailed)
	case <-ctx.Done():
		return ctx.Err()
	}

	profile, err := fetchGoogleProfile(ctx, oauthConfig, token)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	user := &models.User{
		GoogleID:   profile.ID,
		Email:      profile.Email,
		Name:       profile.Name,
		PictureURL: profile.Picture,
	}
	if err := repositories.NewUserRepository(db).Upsert(user); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}

	bearer, err := issuer.Issue(user)
	if err != nil {
		return err
	}

	if err := r.saveSession(session{UserID: user.ID, Email: user.Email, Token: bearer}); err != nil {
		return err
	}

	r.logger.Info("authentication successful", "user", user.ID)
	return r.writePlain("✓ Signed in as %s\n", user.Email)
}

// AuthStatus reports the stored sign-in state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	s, err := r.loadSession()
	if err != nil {
		return err
	}
	if s == nil {
		r.writePlain("✗ Not signed in\n")
		return r.writePlain("Run 'lyra auth login' to sign in\n")
	}

	issuer, err := r.tokenIssuer()
	if err != nil {
		return err
	}

	userID, err := issuer.Verify(s.Token)
	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			r.writePlain("✗ Session expired for %s\n", s.Email)
			return r.writePlain("Run 'lyra auth login' to sign in again\n")
		}
		return err
	}

	r.writePlain("✓ Signed in as %s\n", s.Email)
	return r.writePlain("User ID: %s\n", userID)
}

// AuthLogout removes the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.clearSession(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// googleProfile is the subset of the Google userinfo document the CLI stores.
type googleProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// fetchGoogleProfile retrieves the authenticated user's Google profile.
func fetchGoogleProfile(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (*googleProfile, error) {
	client := config.Client(ctx, token)

	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, body)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("userinfo missing account id")
	}

	return &profile, nil
}
