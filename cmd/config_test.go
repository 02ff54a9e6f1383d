package cmd

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestConfigDefaults(t *testing.T) {
	setConfigDefaults()
	cfg := loadConfig()

	if cfg.DBPath != "bookmarkable.db" {
		t.Errorf("DBPath: got %q, want %q", cfg.DBPath, "bookmarkable.db")
	}
	if cfg.Listen != "localhost:8080" {
		t.Errorf("Listen: got %q, want %q", cfg.Listen, "localhost:8080")
	}
	if cfg.RemoteURL != "" {
		t.Errorf("RemoteURL: got %q, want empty", cfg.RemoteURL)
	}
	if cfg.SyncInterval != 5*time.Minute {
		t.Errorf("SyncInterval: got %v, want %v", cfg.SyncInterval, 5*time.Minute)
	}
	if cfg.SyncRequestTimeout != 30*time.Second {
		t.Errorf("SyncRequestTimeout: got %v, want %v", cfg.SyncRequestTimeout, 30*time.Second)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout: got %v, want %v", cfg.FetchTimeout, 10*time.Second)
	}
	if cfg.UserAgent == "" {
		t.Error("UserAgent: expected a default user agent")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogFormat != "auto" {
		t.Errorf("LogFormat: got %q, want %q", cfg.LogFormat, "auto")
	}
}

func TestSetupLogging(t *testing.T) {
	defer setupLogging(Config{LogLevel: "info", LogFormat: "json"})

	t.Run("parses the configured level", func(t *testing.T) {
		setupLogging(Config{LogLevel: "debug", LogFormat: "json"})
		if zerolog.GlobalLevel() != zerolog.DebugLevel {
			t.Errorf("expected debug level, got %v", zerolog.GlobalLevel())
		}
	})

	t.Run("falls back to info on an unknown level", func(t *testing.T) {
		setupLogging(Config{LogLevel: "shouting", LogFormat: "json"})
		if zerolog.GlobalLevel() != zerolog.InfoLevel {
			t.Errorf("expected info level, got %v", zerolog.GlobalLevel())
		}
	})
}
