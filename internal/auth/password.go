// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth implements the admin authentication stack: bcrypt credential
// verification against the flat-file credential store, signed session tokens,
// and the failed-login rate limiter.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost matches the cost the operator tooling has always hashed with;
// existing stored hashes verify regardless of their cost.
const BcryptCost = 10

// HashPassword creates a salted bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a password against a stored bcrypt hash. The
// comparison is intentionally slow; callers treat any failure as a plain
// mismatch so malformed hashes are indistinguishable from wrong passwords.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
