// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nankybeauty/salon-go/internal/auth"
	"github.com/nankybeauty/salon-go/internal/config"
	"github.com/nankybeauty/salon-go/internal/content"
	"github.com/nankybeauty/salon-go/internal/middleware"
)

// RouterDeps carries the collaborators the router wires together.
type RouterDeps struct {
	Config    *config.Config
	Store     *content.Store
	Auth      *auth.Service
	Version   string
	Throttle  *middleware.Throttle // login throttle; nil gets a default
	SkipGuard bool                 // test hook: expose admin APIs without auth
}

// NewRouter builds the complete route tree.
func NewRouter(deps RouterDeps) http.Handler {
	cfg := deps.Config

	contentHandler := NewContentHandler(deps.Store)
	galleryHandler := NewGalleryHandler(deps.Store)
	uploadHandler := NewUploadHandler(cfg.UploadsDir, config.PublicUploadsPath)
	authHandler := NewAuthHandler(deps.Auth, !cfg.IsDevelopment())
	healthHandler := NewHealthHandler(deps.Store, deps.Version)

	throttle := deps.Throttle
	if throttle == nil {
		// Pacing only. The burst stays above the failed-attempt lockout
		// threshold so a rapid sequence of bad logins is counted and then
		// rejected by the lockout, not swallowed here first.
		throttle = middleware.NewThrottle(1, auth.DefaultMaxFailures+2)
	}

	apiGuard := middleware.APIGuard(deps.Auth)
	adminGuard := middleware.AdminGuard(deps.Auth, !cfg.IsDevelopment())
	if deps.SkipGuard {
		passthrough := func(next http.Handler) http.Handler { return next }
		apiGuard = passthrough
		adminGuard = passthrough
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	r.Get("/healthz", healthHandler.Health)

	// Public reads
	r.Get("/api/content", contentHandler.Get)
	r.Get("/api/gallery", galleryHandler.GetProjects)
	r.Get("/api/gallery-categories", galleryHandler.GetCategories)

	// Visitor language preference
	languageHandler := NewLanguageHandler()
	r.Get("/api/language", languageHandler.Get)
	r.Post("/api/language", languageHandler.Set)

	// Authentication
	r.Route("/api/auth", func(r chi.Router) {
		r.With(throttle.Middleware()).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	// Admin writes
	r.Group(func(r chi.Router) {
		r.Use(apiGuard)
		r.Post("/api/save-content", contentHandler.Save)
		r.Post("/api/gallery", galleryHandler.SaveProjects)
		r.Post("/api/gallery-categories", galleryHandler.SaveCategories)
		r.Post("/api/sync-image", contentHandler.SyncImage)
		r.Post("/api/upload-image", uploadHandler.Upload)
		r.Post("/api/admin/update-account", authHandler.UpdateAccount)
	})

	// Admin pages are static exports behind the cookie guard
	r.With(adminGuard).Handle("/admin", NewStaticHandler(cfg.StaticDir, "/"))
	r.With(adminGuard).Handle("/admin/*", NewStaticHandler(cfg.StaticDir, "/"))

	// Uploaded images and the exported public site
	r.Handle(config.PublicUploadsPath+"/*", NewStaticHandler(cfg.UploadsDir, config.PublicUploadsPath))
	r.NotFound(NewStaticHandler(cfg.StaticDir, "/").ServeHTTP)

	return r
}
