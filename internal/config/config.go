// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ServerHost string `env:"SALON_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"SALON_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"SALON_ENV" envDefault:"development"`
	LogLevel   string `env:"SALON_LOG_LEVEL" envDefault:"info"`

	// ContentDir holds the per-language JSON documents plus the gallery files.
	ContentDir string `env:"SALON_CONTENT_DIR" envDefault:"./content"`

	// UploadsDir receives uploaded images; served under PublicUploadsPath.
	UploadsDir string `env:"SALON_UPLOADS_DIR" envDefault:"./public/images/uploads"`

	// StaticDir is the exported public site to serve at the root.
	StaticDir string `env:"SALON_STATIC_DIR" envDefault:"./public"`

	// DataDir holds operational files (audit log).
	DataDir string `env:"SALON_DATA_DIR" envDefault:"./data"`

	// CredentialsFile is the flat key=value admin credential store.
	CredentialsFile string `env:"SALON_CREDENTIALS_FILE" envDefault:"./.env.local"`
}

// PublicUploadsPath is the site-relative URL prefix for uploaded images.
const PublicUploadsPath = "/images/uploads"

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
