package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/lyra/internal/repositories"
	"github.com/desertthunder/lyra/internal/server"
	"github.com/desertthunder/lyra/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	issuer, err := r.tokenIssuer()
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	users := repositories.NewUserRepository(db)
	settings := repositories.NewSettingsRepository(db)
	words := repositories.NewWordRepository(db)
	lists := repositories.NewListRepository(db)
	history := repositories.NewHistoryRepository(db)
	engine := r.buildEngine(db)

	login := server.NewLoginHandler(
		r.googleOAuthConfig(r.config.Credentials.Google.RedirectURI),
		users,
		issuer,
	)

	// Middleware applies at registration time, so routes registered before
	// AuthMiddleware stay public.
	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(server.HealthHandler{})
	router.Handler(login)

	router.Use(server.AuthMiddleware(issuer))
	router.Handler(server.NewVocabHandler(engine, lists, words))
	router.Handler(server.NewSettingsHandler(settings))
	router.Handler(server.NewHistoryHandler(history))

	host := r.config.Server.Host
	port := r.config.Server.Port
	if flagHost := cmd.String("host"); flagHost != "" {
		host = flagHost
	}
	if flagPort := int(cmd.Int("port")); flagPort != 0 {
		port = flagPort
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{Addr: addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	r.logger.Info("server listening", "addr", addr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		r.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}
