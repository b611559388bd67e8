package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/desertthunder/lyra/internal/models"
	"github.com/desertthunder/lyra/internal/repositories"
	"github.com/desertthunder/lyra/internal/shared"
	"github.com/desertthunder/lyra/internal/tasks"
)

type fakeEngine struct {
	result *tasks.ExtractResult
	err    error
	opts   tasks.ExtractOpts
}

func (f *fakeEngine) ExtractWith(ctx context.Context, opts tasks.ExtractOpts, progress chan<- tasks.ProgressUpdate) (*tasks.ExtractResult, error) {
	f.opts = opts
	return f.result, f.err
}

// testAPI wires the full router the way the serve command does: logging off,
// auth on every /api route, real repositories over an in-memory database.
type testAPI struct {
	server *httptest.Server
	issuer *TokenIssuer
	db     *sql.DB
	engine *fakeEngine
	user   *models.User
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	user := &models.User{GoogleID: "g-1", Email: "a@example.com", Name: "Ada"}
	if err := repositories.NewUserRepository(db).Upsert(user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	issuer := NewTokenIssuer("secret", time.Hour)
	engine := &fakeEngine{result: &tasks.ExtractResult{
		Song:    &models.Song{ID: 42, Title: "Moonlight Sonata", Artist: "The Nocturnes"},
		Entries: []models.VocabularyEntry{{Word: "moonlight", Occurrences: 2}},
	}}

	api := NewBasicRouter()
	api.Use(AuthMiddleware(issuer))
	api.Handler(NewVocabHandler(engine, repositories.NewListRepository(db), repositories.NewWordRepository(db)))
	api.Handler(NewSettingsHandler(repositories.NewSettingsRepository(db)))
	api.Handler(NewHistoryHandler(repositories.NewHistoryRepository(db)))

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	return &testAPI{server: srv, issuer: issuer, db: db, engine: engine, user: user}
}

// request performs an authenticated request against the test API.
func (a *testAPI) request(t *testing.T, method, path, body string) *http.Response {
	t.Helper()

	token, err := a.issuer.Issue(a.user)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req, err := http.NewRequest(method, a.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var value T
	if err := json.NewDecoder(resp.Body).Decode(&value); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return value
}

func TestVocabHandler(t *testing.T) {
	t.Run("extraction runs for the authenticated user", func(t *testing.T) {
		api := newTestAPI(t)

		resp := api.request(t, http.MethodPost, "/api/vocabulary", `{"query":"moonlight sonata"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		result := decode[tasks.ExtractResult](t, resp)
		if result.Song == nil || result.Song.Title != "Moonlight Sonata" {
			t.Errorf("unexpected result %+v", result)
		}
		if api.engine.opts.UserID != api.user.ID {
			t.Errorf("engine should run as the token subject, got %q", api.engine.opts.UserID)
		}
		if api.engine.opts.Query != "moonlight sonata" {
			t.Errorf("unexpected query %q", api.engine.opts.Query)
		}
		if !api.engine.opts.Persist {
			t.Error("persistence should default on")
		}
	})

	t.Run("persist false runs without writing", func(t *testing.T) {
		api := newTestAPI(t)

		resp := api.request(t, http.MethodPost, "/api/vocabulary", `{"query":"moonlight sonata","persist":false}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if api.engine.opts.Persist {
			t.Error("persist false should be passed through")
		}
	})

	t.Run("custom title is passed through", func(t *testing.T) {
		api := newTestAPI(t)

		resp := api.request(t, http.MethodPost, "/api/vocabulary", `{"query":"moonlight sonata","title":"Night words"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if api.engine.opts.Title != "Night words" {
			t.Errorf("expected custom title, got %q", api.engine.opts.Title)
		}
		if !api.engine.opts.Persist {
			t.Error("title alone should not disable persistence")
		}
	})

	t.Run("missing query is 400", func(t *testing.T) {
		api := newTestAPI(t)

		resp := api.request(t, http.MethodPost, "/api/vocabulary", `{}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("unknown song is 404", func(t *testing.T) {
		api := newTestAPI(t)
		api.engine.result = nil
		api.engine.err = fmt.Errorf("%w: %q", shared.ErrSongNotFound, "xyzzy")

		resp := api.request(t, http.MethodPost, "/api/vocabulary", `{"query":"xyzzy"}`)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("unconfigured model is 503", func(t *testing.T) {
		api := newTestAPI(t)
		api.engine.result = nil
		api.engine.err = shared.ErrModelNotConfigured

		resp := api.request(t, http.MethodPost, "/api/vocabulary", `{"query":"moonlight"}`)
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", resp.StatusCode)
		}
	})

	t.Run("snapshots list and fetch by id", func(t *testing.T) {
		api := newTestAPI(t)

		lists := repositories.NewListRepository(api.db)
		list := &models.VocabularyList{UserID: api.user.ID, Title: "First", Entries: []models.VocabularyEntry{{Word: "moonlight", Occurrences: 1}}}
		if err := lists.Create(list); err != nil {
			t.Fatalf("failed to seed list: %v", err)
		}

		resp := api.request(t, http.MethodGet, "/api/vocabulary/lists", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		all := decode[[]models.VocabularyList](t, resp)
		if len(all) != 1 || all[0].Title != "First" {
			t.Errorf("unexpected lists %+v", all)
		}

		resp = api.request(t, http.MethodGet, "/api/vocabulary/lists/"+list.ID, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		got := decode[models.VocabularyList](t, resp)
		if got.ID != list.ID || len(got.Entries) != 1 {
			t.Errorf("unexpected list %+v", got)
		}
	})

	t.Run("other users' snapshots are 404", func(t *testing.T) {
		api := newTestAPI(t)

		other := &models.User{GoogleID: "g-2", Email: "b@example.com"}
		if err := repositories.NewUserRepository(api.db).Upsert(other); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}

		lists := repositories.NewListRepository(api.db)
		list := &models.VocabularyList{UserID: other.ID, Title: "Theirs"}
		if err := lists.Create(list); err != nil {
			t.Fatalf("failed to seed list: %v", err)
		}

		resp := api.request(t, http.MethodGet, "/api/vocabulary/lists/"+list.ID, "")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("word aggregate is served", func(t *testing.T) {
		api := newTestAPI(t)

		words := repositories.NewWordRepository(api.db)
		if _, err := words.Upsert(api.user.ID, models.VocabularyEntry{Word: "moonlight", Occurrences: 3}); err != nil {
			t.Fatalf("failed to seed word: %v", err)
		}

		resp := api.request(t, http.MethodGet, "/api/vocabulary/words", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		got := decode[[]models.Word](t, resp)
		if len(got) != 1 || got[0].Word != "moonlight" || got[0].Count != 3 {
			t.Errorf("unexpected words %+v", got)
		}
	})

	t.Run("requests without a token are 401", func(t *testing.T) {
		api := newTestAPI(t)

		resp, err := http.Post(api.server.URL+"/api/vocabulary", "application/json", strings.NewReader(`{"query":"x"}`))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})
}

func TestSettingsHandler(t *testing.T) {
	t.Run("defaults are served before any write", func(t *testing.T) {
		api := newTestAPI(t)

		resp := api.request(t, http.MethodGet, "/api/settings", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		got := decode[models.UserSettings](t, resp)
		if got.Language != "en" || got.Level != "intermediate" || got.MaxWords != 30 || got.MinLength != 2 {
			t.Errorf("expected defaults, got %+v", got)
		}
	})

	t.Run("put then get round-trips", func(t *testing.T) {
		api := newTestAPI(t)

		resp := api.request(t, http.MethodPut, "/api/settings", `{"language":"ko","level":"advanced","maxWords":50,"minLength":3}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		resp = api.request(t, http.MethodGet, "/api/settings", "")
		got := decode[models.UserSettings](t, resp)
		if got.Language != "ko" || got.MaxWords != 50 {
			t.Errorf("unexpected settings %+v", got)
		}
	})

	t.Run("invalid document is 400", func(t *testing.T) {
		api := newTestAPI(t)

		resp := api.request(t, http.MethodPut, "/api/settings", `{"language":"fr","level":"advanced","maxWords":50,"minLength":3}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}

		resp = api.request(t, http.MethodPut, "/api/settings", `{"language":"en","level":"advanced","maxWords":9999,"minLength":3}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 for out-of-range maxWords, got %d", resp.StatusCode)
		}
	})
}

func TestHistoryHandler(t *testing.T) {
	t.Run("record then list", func(t *testing.T) {
		api := newTestAPI(t)

		resp := api.request(t, http.MethodPost, "/api/history", `{"title":"Moonlight Sonata","artist":"The Nocturnes","videoId":"abc"}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}

		resp = api.request(t, http.MethodGet, "/api/history", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		got := decode[[]models.WatchEntry](t, resp)
		if len(got) != 1 || got[0].Title != "Moonlight Sonata" {
			t.Errorf("unexpected history %+v", got)
		}
	})

	t.Run("missing title is 400", func(t *testing.T) {
		api := newTestAPI(t)

		resp := api.request(t, http.MethodPost, "/api/history", `{"artist":"The Nocturnes"}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestHealthHandler(t *testing.T) {
	router := NewBasicRouter()
	router.Handler(HealthHandler{})

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected body %v", body)
	}
}
