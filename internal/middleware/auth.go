// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// rate limiting, and response headers.
package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/nankybeauty/salon-go/internal/auth"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyClaims holds the verified session claims for the request.
const ContextKeyClaims ContextKey = "claims"

// LoginPath is the admin login page.
const LoginPath = "/admin/login"

// AdminGuard protects the admin HTML pages. Requests without a valid session
// cookie are redirected to the login page with the originating path preserved
// in a "from" query parameter; a tampered or expired cookie is deleted on the
// way out. A valid session visiting the login page is sent to the dashboard.
func AdminGuard(svc *auth.Service, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			onLoginPage := r.URL.Path == LoginPath

			cookie, err := r.Cookie(auth.CookieName)
			if err != nil {
				if onLoginPage {
					next.ServeHTTP(w, r)
					return
				}
				redirectToLogin(w, r)
				return
			}

			claims, err := svc.Verify(cookie.Value)
			if err != nil {
				slog.Warn("rejecting invalid session cookie",
					"path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.SetCookie(w, auth.ExpiredSessionCookie(secureCookies))
				if onLoginPage {
					next.ServeHTTP(w, r)
					return
				}
				redirectToLogin(w, r)
				return
			}

			if onLoginPage {
				http.Redirect(w, r, "/admin", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := LoginPath + "?from=" + url.QueryEscape(r.URL.Path)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// APIGuard protects the admin JSON endpoints. Unlike AdminGuard it never
// redirects; a missing or invalid session yields a 401 JSON body.
func APIGuard(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.CookieName)
			if err != nil {
				writeUnauthorized(w)
				return
			}
			claims, err := svc.Verify(cookie.Value)
			if err != nil {
				writeUnauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"error":"Unauthorized"}`))
}

// GetClaims retrieves the verified session claims from the request context.
// Returns nil when the request did not pass a guard.
func GetClaims(r *http.Request) *auth.Claims {
	claims, ok := r.Context().Value(ContextKeyClaims).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// ClientIP extracts the client IP for rate limiting, trusting reverse proxy
// headers before falling back to the socket address.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// Can contain multiple IPs; the first is the client.
		first, _, _ := strings.Cut(ip, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
