package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoad_Defaults tests that a missing config file yields defaults
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:3000" {
		t.Errorf("api.base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Errorf("api.timeout = %v", cfg.API.Timeout)
	}
	if cfg.Sync.GracePeriod != time.Second {
		t.Errorf("sync.grace_period = %v", cfg.Sync.GracePeriod)
	}
	if cfg.Daemon.ListenAddr != "127.0.0.1:7317" {
		t.Errorf("daemon.listen_addr = %q", cfg.Daemon.ListenAddr)
	}
}

// TestLoad_File tests that file values override defaults
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  base_url: https://inspections.example.com
  timeout: 30s
daemon:
  listen_addr: 127.0.0.1:9000
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.API.BaseURL != "https://inspections.example.com" {
		t.Errorf("api.base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("api.timeout = %v", cfg.API.Timeout)
	}
	if cfg.Daemon.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("daemon.listen_addr = %q", cfg.Daemon.ListenAddr)
	}
	// Untouched keys keep their defaults.
	if cfg.Heartbeat.Interval != 15*time.Second {
		t.Errorf("heartbeat.interval = %v", cfg.Heartbeat.Interval)
	}
}

// TestLoad_BadFile tests that a malformed config file errors out rather
// than silently applying defaults
func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: [not: valid"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config")
	}
}
