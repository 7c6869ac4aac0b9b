// Package cli provides common startup utilities for the server binary.
package cli

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"weeklyspend/internal/config"
	"weeklyspend/internal/storage"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// SessionSecret returns the configured session secret. In development an
// absent secret is replaced with a random per-process value, which
// invalidates sessions on restart; outside development config validation
// already refused to start without one.
func SessionSecret(logger *slog.Logger, cfg *config.Config) string {
	if cfg.SessionSecret != "" {
		return cfg.SessionSecret
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.Error("Failed to generate development session secret", "error", err)
		os.Exit(1)
	}
	logger.Warn("SESSION_SECRET not set; using an ephemeral development secret")
	return hex.EncodeToString(b)
}

// InitStorage prepares the database file and migrations, returning the
// connection factory. Exits the process on failure.
func InitStorage(logger *slog.Logger, dbPath string) *storage.Factory {
	factory, err := storage.NewFactory(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite storage", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return factory
}
