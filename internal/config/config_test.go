package config

import (
	"testing"
	"time"

	"github.com/estrateji/edusync/internal/errors"
)

// TestLoadDefaults tests that Load works with no config file and no env.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DataDir != "./data" {
		t.Errorf("unexpected data_dir: %s", cfg.DataDir)
	}
	if cfg.APIBaseURL != "http://localhost:8000/api" {
		t.Errorf("unexpected api_base_url: %s", cfg.APIBaseURL)
	}
	if cfg.SyncInterval != 15*time.Second {
		t.Errorf("unexpected sync_interval: %s", cfg.SyncInterval)
	}
	if cfg.RetryInterval != 30*time.Second {
		t.Errorf("unexpected retry_interval: %s", cfg.RetryInterval)
	}
	if cfg.PrefetchCount != 2 {
		t.Errorf("unexpected prefetch_count: %d", cfg.PrefetchCount)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("unexpected log_level: %s", cfg.LogLevel)
	}
}

// TestLoadEnvOverrides tests that EDUSYNC_* env vars win over defaults.
func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("EDUSYNC_API_BASE_URL", "https://portal.example.com/api")
	t.Setenv("EDUSYNC_SYNC_INTERVAL", "5s")
	t.Setenv("EDUSYNC_PREFETCH_COUNT", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIBaseURL != "https://portal.example.com/api" {
		t.Errorf("unexpected api_base_url: %s", cfg.APIBaseURL)
	}
	if cfg.SyncInterval != 5*time.Second {
		t.Errorf("unexpected sync_interval: %s", cfg.SyncInterval)
	}
	if cfg.PrefetchCount != 4 {
		t.Errorf("unexpected prefetch_count: %d", cfg.PrefetchCount)
	}
}

// TestLoadRejectsBadValues tests that validation failures surface as config
// errors instead of a half-configured engine.
func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "EDUSYNC_LOG_LEVEL", "verbose"},
		{"bad url", "EDUSYNC_API_BASE_URL", "not a url"},
		{"sub-second sync interval", "EDUSYNC_SYNC_INTERVAL", "100ms"},
		{"sub-second retry interval", "EDUSYNC_RETRY_INTERVAL", "10ms"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			if _, err := Load(); !errors.Is(err, errors.ErrConfig) {
				t.Errorf("expected ErrConfig, got %v", err)
			}
		})
	}
}
