// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"log/slog"
	"time"
)

// ErrInvalidCredentials covers both an unknown username and a wrong password.
// The two are deliberately indistinguishable to prevent username enumeration.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service validates admin logins, mints session tokens, and maintains the
// per-IP failure limiter.
type Service struct {
	store   *CredentialStore
	limiter *Limiter

	now func() time.Time
}

// NewService creates an auth service over the given credential store. A nil
// limiter gets the default thresholds.
func NewService(store *CredentialStore, limiter *Limiter) *Service {
	if limiter == nil {
		limiter = NewLimiter(DefaultMaxFailures, DefaultWindow)
	}
	return &Service{
		store:   store,
		limiter: limiter,
		now:     time.Now,
	}
}

// Limiter exposes the failure limiter for periodic pruning.
func (s *Service) Limiter() *Limiter { return s.limiter }

// Login validates the supplied credentials for the client at ip.
//
// Order matters: the limiter is consulted before any credential work so a
// blocked client gets a *RateLimitedError without the password ever being
// compared. A mismatched username or password records one failure and returns
// ErrInvalidCredentials; success resets the client's failure record and
// returns a signed session token.
func (s *Service) Login(username, password, ip string) (string, error) {
	if err := s.limiter.Check(ip); err != nil {
		slog.Warn("login blocked by rate limiter", "ip", ip)
		return "", err
	}

	creds, err := s.store.Load()
	if err != nil {
		return "", err
	}

	// Always run the hash comparison, even for a wrong username, so the two
	// failure causes take comparable time.
	passwordOK := CheckPassword(password, creds.PasswordHash)
	if username != creds.Username || !passwordOK {
		s.limiter.RecordFailure(ip)
		slog.Info("failed login attempt", "ip", ip)
		return "", ErrInvalidCredentials
	}

	s.limiter.Reset(ip)

	token, err := MintToken(creds.Username, []byte(creds.JWTSecret), s.now())
	if err != nil {
		return "", err
	}
	slog.Info("admin logged in", "username", creds.Username, "ip", ip)
	return token, nil
}

// Verify checks a session token against the current signing secret.
func (s *Service) Verify(token string) (*Claims, error) {
	creds, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return VerifyToken(token, []byte(creds.JWTSecret))
}

// UpdateAccount changes the stored username and/or password after verifying
// the current password. Empty newUsername or newPassword leaves that field
// untouched.
func (s *Service) UpdateAccount(currentPassword, newUsername, newPassword string) error {
	creds, err := s.store.Load()
	if err != nil {
		return err
	}
	if !CheckPassword(currentPassword, creds.PasswordHash) {
		return ErrInvalidCredentials
	}

	updates := make(map[string]string)
	if newUsername != "" {
		updates[KeyUsername] = newUsername
	}
	if newPassword != "" {
		hash, err := HashPassword(newPassword)
		if err != nil {
			return err
		}
		updates[KeyPasswordHash] = hash
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.store.SetValues(updates); err != nil {
		return err
	}
	slog.Info("admin account updated",
		"username_changed", newUsername != "",
		"password_changed", newPassword != "")
	return nil
}
