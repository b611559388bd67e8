package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/shared"
	"github.com/desertthunder/lyra/internal/tasks"
)

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps pipeline and persistence errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrSongNotFound), errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrModelNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, shared.ErrLyricsFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PipelineRunner runs the extraction pipeline. Satisfied by tasks.VocabEngine.
type PipelineRunner interface {
	ExtractWith(ctx context.Context, opts tasks.ExtractOpts, progress chan<- tasks.ProgressUpdate) (*tasks.ExtractResult, error)
}

// ListReader reads persisted vocabulary list snapshots.
type ListReader interface {
	Get(id string) (*models.VocabularyList, error)
	ListByUser(userID string) ([]*models.VocabularyList, error)
}

// WordLister reads the per-user word aggregate.
type WordLister interface {
	ListByUser(userID string) ([]*models.Word, error)
}

// SettingsStore reads and writes per-user extraction settings.
type SettingsStore interface {
	Get(userID string) (*models.UserSettings, error)
	Put(settings *models.UserSettings) error
}

// HistoryStore reads and writes watch events.
type HistoryStore interface {
	Create(entry *models.WatchEntry) error
	ListByUser(userID string, limit int) ([]*models.WatchEntry, error)
}

// VocabHandler serves extraction runs and their persisted results.
type VocabHandler struct {
	engine PipelineRunner
	lists  ListReader
	words  WordLister
}

// NewVocabHandler creates a VocabHandler.
func NewVocabHandler(engine PipelineRunner, lists ListReader, words WordLister) *VocabHandler {
	return &VocabHandler{engine: engine, lists: lists, words: words}
}

// Routes returns the HTTP routes this handler serves.
func (h *VocabHandler) Routes() []string {
	return []string{
		"POST /api/vocabulary",
		"GET /api/vocabulary/lists",
		"GET /api/vocabulary/lists/{id}",
		"GET /api/vocabulary/words",
	}
}

// ServeHTTP dispatches to the matching operation.
func (h *VocabHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/vocabulary":
		h.extract(w, r)
	case r.URL.Path == "/api/vocabulary/lists":
		h.listSnapshots(w, r)
	case r.URL.Path == "/api/vocabulary/words":
		h.listWords(w, r)
	default:
		h.getSnapshot(w, r)
	}
}

// extract runs the pipeline for the authenticated user. Persistence is on by
// default; persist: false runs the pipeline without writing anything.
func (h *VocabHandler) extract(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query   string `json:"query"`
		Title   string `json:"title"`
		Persist *bool  `json:"persist"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	persist := body.Persist == nil || *body.Persist
	result, err := h.engine.ExtractWith(r.Context(), tasks.ExtractOpts{
		UserID:  UserIDFrom(r.Context()),
		Query:   body.Query,
		Title:   body.Title,
		Persist: persist,
	}, nil)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// listSnapshots returns the user's snapshots, most recent first.
func (h *VocabHandler) listSnapshots(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListByUser(UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if lists == nil {
		lists = []*models.VocabularyList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

// getSnapshot returns one snapshot. Snapshots belonging to other users are
// indistinguishable from missing ones.
func (h *VocabHandler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	list, err := h.lists.Get(id)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if list.UserID != UserIDFrom(r.Context()) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// listWords returns the user's cumulative word aggregate.
func (h *VocabHandler) listWords(w http.ResponseWriter, r *http.Request) {
	words, err := h.words.ListByUser(UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if words == nil {
		words = []*models.Word{}
	}
	writeJSON(w, http.StatusOK, words)
}

// SettingsHandler serves the per-user extraction settings.
type SettingsHandler struct {
	settings SettingsStore
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(settings SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Routes returns the HTTP routes this handler serves.
func (h *SettingsHandler) Routes() []string {
	return []string{
		"GET /api/settings",
		"PUT /api/settings",
	}
}

// ServeHTTP dispatches on method.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// get returns the stored settings, or the defaults when no row exists.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	if settings == nil {
		defaults := models.DefaultOptions()
		settings = &models.UserSettings{
			Language:  string(defaults.Language),
			Level:     string(defaults.Level),
			MaxWords:  defaults.MaxWords,
			MinLength: defaults.MinLength,
		}
	}

	writeJSON(w, http.StatusOK, settings)
}

// put validates and stores the full settings document.
func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request) {
	var body models.UserSettings
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings document")
		return
	}

	opts := models.VocabularyOptions{
		Language:  models.Language(body.Language),
		Level:     models.Level(body.Level),
		MaxWords:  body.MaxWords,
		MinLength: body.MinLength,
	}
	if err := opts.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body.UserID = UserIDFrom(r.Context())
	if err := h.settings.Put(&body); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, body)
}

// HistoryHandler serves the watch history log.
type HistoryHandler struct {
	history HistoryStore
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(history HistoryStore) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// Routes returns the HTTP routes this handler serves.
func (h *HistoryHandler) Routes() []string {
	return []string{
		"GET /api/history",
		"POST /api/history",
	}
}

// ServeHTTP dispatches on method.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.record(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// list returns the user's watch events, most recent first.
func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.ListByUser(UserIDFrom(r.Context()), 0)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if entries == nil {
		entries = []*models.WatchEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// record stores a new watch event.
func (h *HistoryHandler) record(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VideoID   string    `json:"videoId"`
		Title     string    `json:"title"`
		Artist    string    `json:"artist"`
		WatchedAt time.Time `json:"watchedAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid history document")
		return
	}

	entry := &models.WatchEntry{
		UserID:    UserIDFrom(r.Context()),
		VideoID:   body.VideoID,
		Title:     body.Title,
		Artist:    body.Artist,
		WatchedAt: body.WatchedAt,
	}
	if err := h.history.Create(entry); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// HealthHandler reports service liveness.
type HealthHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (h HealthHandler) Routes() []string {
	return []string{"GET /health"}
}

// ServeHTTP writes the liveness document.
func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
