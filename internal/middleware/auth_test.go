// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nankybeauty/salon-go/internal/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testAuthService(t *testing.T) *auth.Service {
	t.Helper()
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	path := filepath.Join(t.TempDir(), ".env.local")
	body := "ADMIN_USERNAME=admin\nADMIN_PASSWORD_HASH=" + hash + "\nJWT_SECRET=" + testSecret + "\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	return auth.NewService(auth.NewCredentialStore(path), nil)
}

func loginToken(t *testing.T, svc *auth.Service) string {
	t.Helper()
	token, err := svc.Login("admin", "s3cret", "198.51.100.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return token
}

func okHandler(t *testing.T, sawClaims *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetClaims(r) != nil {
			*sawClaims = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminGuardRedirectsAnonymous(t *testing.T) {
	svc := testAuthService(t)
	var sawClaims bool
	handler := AdminGuard(svc, false)(okHandler(t, &sawClaims))

	req := httptest.NewRequest(http.MethodGet, "/admin/gallery", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if loc != "/admin/login?from=%2Fadmin%2Fgallery" {
		t.Errorf("Location = %q", loc)
	}
	if sawClaims {
		t.Error("anonymous request reached the handler")
	}
}

func TestAdminGuardPassesValidSession(t *testing.T) {
	svc := testAuthService(t)
	var sawClaims bool
	handler := AdminGuard(svc, false)(okHandler(t, &sawClaims))

	req := httptest.NewRequest(http.MethodGet, "/admin/content", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: loginToken(t, svc)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !sawClaims {
		t.Error("claims not placed in request context")
	}
}

func TestAdminGuardClearsTamperedCookie(t *testing.T) {
	svc := testAuthService(t)
	var sawClaims bool
	handler := AdminGuard(svc, false)(okHandler(t, &sawClaims))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "garbage.token.here"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("tampered cookie was not deleted")
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "/admin/login?from=") {
		t.Errorf("Location = %q", rec.Header().Get("Location"))
	}
}

func TestAdminGuardLoginPageWithValidSessionRedirectsToDashboard(t *testing.T) {
	svc := testAuthService(t)
	var sawClaims bool
	handler := AdminGuard(svc, false)(okHandler(t, &sawClaims))

	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: loginToken(t, svc)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin" {
		t.Errorf("Location = %q, want /admin", loc)
	}
}

func TestAdminGuardLoginPageAnonymousPasses(t *testing.T) {
	svc := testAuthService(t)
	var sawClaims bool
	handler := AdminGuard(svc, false)(okHandler(t, &sawClaims))

	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAPIGuardRejectsWithJSON(t *testing.T) {
	svc := testAuthService(t)
	var sawClaims bool
	handler := APIGuard(svc)(okHandler(t, &sawClaims))

	req := httptest.NewRequest(http.MethodPost, "/api/save-content", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAPIGuardPassesValidSession(t *testing.T) {
	svc := testAuthService(t)
	var sawClaims bool
	handler := APIGuard(svc)(okHandler(t, &sawClaims))

	req := httptest.NewRequest(http.MethodPost, "/api/save-content", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: loginToken(t, svc)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !sawClaims {
		t.Error("claims not placed in request context")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr with port", "203.0.113.9:4567", nil, "203.0.113.9"},
		{"ipv6 remote addr", "[2001:db8::1]:443", nil, "2001:db8::1"},
		{"x-real-ip wins", "10.0.0.1:1234", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"x-forwarded-for first hop", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "198.51.100.8, 10.0.0.2"}, "198.51.100.8"},
		{"real-ip beats forwarded-for", "10.0.0.1:1234", map[string]string{
			"X-Real-IP":       "198.51.100.9",
			"X-Forwarded-For": "203.0.113.1",
		}, "198.51.100.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
