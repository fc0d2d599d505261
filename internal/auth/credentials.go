// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Credential store keys. The store is a flat key=value file, shared with the
// deployment's environment file so the operator can bootstrap it by hand.
const (
	KeyUsername     = "ADMIN_USERNAME"
	KeyPasswordHash = "ADMIN_PASSWORD_HASH"
	KeyJWTSecret    = "JWT_SECRET"
)

// ErrIncompleteCredentials reports a credential file missing one of the
// required entries.
var ErrIncompleteCredentials = errors.New("credential file is missing required entries")

// Credentials are the admin account settings loaded from the flat file.
type Credentials struct {
	Username     string
	PasswordHash string
	JWTSecret    string
}

// CredentialStore reads and rewrites the flat key=value credential file.
type CredentialStore struct {
	path string
}

// NewCredentialStore creates a store over the file at path. The file is read
// on every access so out-of-band edits take effect without a restart.
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// Path returns the credential file location.
func (s *CredentialStore) Path() string { return s.path }

// Load reads and validates the credential file. Lines are parsed literally,
// not through a dotenv expander: bcrypt hashes contain `$` sequences that
// variable expansion would mangle.
func (s *CredentialStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading credential file %s: %w", s.path, err)
	}

	values := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		values[strings.TrimSpace(key)] = value
	}

	creds := &Credentials{
		Username:     values[KeyUsername],
		PasswordHash: values[KeyPasswordHash],
		JWTSecret:    values[KeyJWTSecret],
	}
	if creds.Username == "" || creds.PasswordHash == "" || creds.JWTSecret == "" {
		return nil, fmt.Errorf("%w (%s)", ErrIncompleteCredentials, s.path)
	}
	return creds, nil
}

// SetValues rewrites the given keys in place, preserving every other line of
// the file (comments, unrelated variables, ordering). Keys not present yet
// are appended.
func (s *CredentialStore) SetValues(updates map[string]string) error {
	if len(updates) == 0 {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading credential file %s: %w", s.path, err)
	}

	pending := make(map[string]string, len(updates))
	for k, v := range updates {
		pending[k] = v
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, _, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if value, ok := pending[key]; ok {
			lines[i] = key + "=" + value
			delete(pending, key)
		}
	}

	// Append keys that had no existing line.
	for key, value := range pending {
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines[len(lines)-1] = key + "=" + value
			lines = append(lines, "")
		} else {
			lines = append(lines, key+"="+value)
		}
	}

	out := strings.Join(lines, "\n")
	if err := os.WriteFile(s.path, []byte(out), 0o600); err != nil {
		return fmt.Errorf("writing credential file %s: %w", s.path, err)
	}
	return nil
}
