package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mcoot/drawit/internal/api"
	"github.com/mcoot/drawit/internal/config"
	"github.com/mcoot/drawit/internal/factory"
)

func main() {
	// A missing .env is fine; anything else is worth knowing about
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "could not load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg config.Config
	cmd := config.NewCommand(&cfg, serve)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := cfg.NewLogger(os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(cfg.Factory(logger))
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:    logger,
		Session:   app.Session,
		PublicURL: cfg.PublicURL,
	})

	// Create server
	server := api.NewServer(router, cfg.Server(), logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage),
		slog.Int("max_players", cfg.MaxPlayers))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		_ = app.Close()
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	// Close push channels first so open streams let the server drain
	app.Session.Close()
	if err := server.Shutdown(context.Background()); err != nil {
		_ = app.Storage.Close()
		return err
	}
	if err := app.Storage.Close(); err != nil {
		logger.Warn("failed to close storage", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	return nil
}
