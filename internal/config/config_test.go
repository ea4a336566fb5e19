package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Remote.Kind != "rest" {
		t.Errorf("expected default remote kind rest, got %q", cfg.Remote.Kind)
	}
	if cfg.Remote.Timeout != 15*time.Second {
		t.Errorf("expected default remote timeout 15s, got %v", cfg.Remote.Timeout)
	}
	if cfg.Sync.MaxRetries != 10 {
		t.Errorf("expected default max retries 10, got %d", cfg.Sync.MaxRetries)
	}
	if cfg.Sync.PollInterval != 30*time.Second {
		t.Errorf("expected default poll interval 30s, got %v", cfg.Sync.PollInterval)
	}
	if cfg.Sync.ProbeTimeout != 5*time.Second {
		t.Errorf("expected default probe timeout 5s, got %v", cfg.Sync.ProbeTimeout)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("CONNECTIVITY_PROBE_TIMEOUT_SECONDS", "2")
	t.Setenv("REMOTE_TIMEOUT_SECONDS", "20")
	t.Setenv("SYNC_MAX_RETRIES", "3")

	cfg := Load()

	if cfg.Sync.ProbeTimeout != 2*time.Second {
		t.Errorf("expected probe timeout 2s, got %v", cfg.Sync.ProbeTimeout)
	}
	if cfg.Remote.Timeout != 20*time.Second {
		t.Errorf("expected remote timeout 20s, got %v", cfg.Remote.Timeout)
	}
	if cfg.Sync.MaxRetries != 3 {
		t.Errorf("expected max retries 3, got %d", cfg.Sync.MaxRetries)
	}
}
