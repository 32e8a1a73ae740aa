// Package server implements a minimal status/metrics HTTP server for a
// running Database and its RefreshScheduler, grounded on the teacher's
// indexer/pkg/server: a stdlib http.ServeMux for a handful of fixed
// routes rather than a router framework.
package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/malbeclabs/grizzly/pkg/database"
)

// VersionInfo carries build-time version metadata for /version.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Config configures Server.
type Config struct {
	Logger            *slog.Logger
	ListenAddr        string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	VersionInfo       VersionInfo
	Database          *database.Database
}

// Validate checks required fields and fills in defaults.
func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.ListenAddr == "" {
		return errors.New("listen addr is required")
	}
	if cfg.Database == nil {
		return errors.New("database is required")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}
	return nil
}
