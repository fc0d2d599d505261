// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command salon runs the Nanky Beauty web server: the exported public site,
// the JSON content API behind it, and the admin editing endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nankybeauty/salon-go/internal/auth"
	"github.com/nankybeauty/salon-go/internal/config"
	"github.com/nankybeauty/salon-go/internal/content"
	"github.com/nankybeauty/salon-go/internal/handler"
	"github.com/nankybeauty/salon-go/internal/logging"
	"github.com/nankybeauty/salon-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		info := version.Info{
			Version:   appVersion,
			GitCommit: appGitCommit,
			BuildTime: appBuildTime,
		}
		fmt.Println("salon " + info.String())
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; the credential file is loaded separately and never
	// through the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := setupLogging(cfg); err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}

	store, err := content.NewStore(cfg.ContentDir)
	if err != nil {
		return fmt.Errorf("opening content store: %w", err)
	}

	limiter := auth.NewLimiter(auth.DefaultMaxFailures, auth.DefaultWindow)
	authService := auth.NewService(auth.NewCredentialStore(cfg.CredentialsFile), limiter)

	// Expired limiter records self-heal on access; the sweep keeps the map
	// from accumulating one-off IPs.
	pruneDone := make(chan struct{})
	go pruneLimiter(limiter, pruneDone)
	defer close(pruneDone)

	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("creating uploads dir: %w", err)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Config:  cfg,
		Store:   store,
		Auth:    authService,
		Version: appVersion,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", appVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// setupLogging installs the default logger: text to stdout, WARN and above
// mirrored to the audit file.
func setupLogging(cfg *config.Config) error {
	level := logging.ParseLevel(cfg.LogLevel)
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})

	auditPath := filepath.Join(cfg.DataDir, "audit.jsonl")
	auditHandler, err := logging.NewAuditHandler(textHandler, auditPath)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(auditHandler))
	return nil
}

func pruneLimiter(limiter *auth.Limiter, done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			limiter.Prune()
		case <-done:
			return
		}
	}
}
