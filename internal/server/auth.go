package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/shared"
)

// googleUserinfoURL is where the authenticated profile is fetched after the
// code exchange. Overridable for tests.
const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Claims is the payload of the service's own bearer tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer. ttl bounds every issued token.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token whose subject is the user's internal ID.
func (t *TokenIssuer) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Email: user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a bearer token and returns the subject user ID.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
		}
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", shared.ErrInvalidToken)
	}

	return claims.Subject, nil
}

// UserUpserter persists OAuth profiles. Satisfied by repositories.UserRepository.
type UserUpserter interface {
	Upsert(user *models.User) error
}

// googleProfile is the subset of the Google userinfo document the service stores.
type googleProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// LoginHandler implements the API login flow: exchange a Google authorization
// code, fetch the profile, upsert the user, and issue a bearer token.
type LoginHandler struct {
	config      *oauth2.Config
	users       UserUpserter
	issuer      *TokenIssuer
	userinfoURL string
}

// NewLoginHandler creates a LoginHandler with the given OAuth config,
// user store, and token issuer.
func NewLoginHandler(config *oauth2.Config, users UserUpserter, issuer *TokenIssuer) *LoginHandler {
	return &LoginHandler{
		config:      config,
		users:       users,
		issuer:      issuer,
		userinfoURL: googleUserinfoURL,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *LoginHandler) Routes() []string {
	return []string{
		"POST /api/auth/login",
		"GET /api/auth/url",
	}
}

// ServeHTTP dispatches between the consent URL and login endpoints.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.consentURL(w, r)
		return
	}
	h.login(w, r)
}

// consentURL returns the Google consent page URL the client should open.
// The caller echoes the state parameter back through the login request's
// redirect; the server itself holds no per-request state.
func (h *LoginHandler) consentURL(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		state = shared.GenerateID()
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url":   h.config.AuthCodeURL(state, oauth2.AccessTypeOffline),
		"state": state,
	})
}

// login handles the code exchange request.
func (h *LoginHandler) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Code == "" {
		writeError(w, http.StatusBadRequest, "authorization code is required")
		return
	}

	token, err := h.config.Exchange(r.Context(), body.Code)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "code exchange failed")
		return
	}

	profile, err := h.fetchProfile(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to fetch profile")
		return
	}

	user := &models.User{
		GoogleID:   profile.ID,
		Email:      profile.Email,
		Name:       profile.Name,
		PictureURL: profile.Picture,
	}
	if err := h.users.Upsert(user); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist user")
		return
	}

	bearer, err := h.issuer.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": bearer,
		"user":  user,
	})
}

// fetchProfile retrieves the authenticated user's Google profile.
func (h *LoginHandler) fetchProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	client := h.config.Client(ctx, token)

	resp, err := client.Get(h.userinfoURL)
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
