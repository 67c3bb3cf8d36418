package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/foteam/sessionstore/internal/core/service"
	"github.com/foteam/sessionstore/internal/storage/filestore"
	"github.com/foteam/sessionstore/internal/telemetry/logger"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "session:\n  dir: /tmp/foteam\n  ttl: 5m\n")
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Session.Dir != "/tmp/foteam" || cfg.Session.TTL != 5*time.Minute {
		t.Errorf("session = %+v", cfg.Session)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeFile(t, "session:\n  ttl: 48h\n  gc_max_lifetime: 1h\n")
	if _, err := loadConfig(path); err == nil {
		t.Error("expected validation error for retention shorter than ttl")
	}
}

func TestApplyReload(t *testing.T) {
	store, err := filestore.Open(filestore.Config{Dir: t.TempDir(), TTL: time.Minute, Logger: logger.Discard()})
	if err != nil {
		t.Fatal(err)
	}
	gc := service.NewGCScheduler(store, service.DefaultGCConfig())
	prev := logger.GetLevel()
	t.Cleanup(func() { logger.SetLevel(prev) })

	cfg, err := loadConfig(writeFile(t, "session:\n  ttl: 10m\n  gc_max_lifetime: 72h\nlog:\n  level: debug\n"))
	if err != nil {
		t.Fatal(err)
	}
	applyReload(cfg, store, gc)

	if store.TTL() != 10*time.Minute {
		t.Errorf("TTL = %v, want 10m", store.TTL())
	}
	if gc.MaxLifetime() != 72*time.Hour {
		t.Errorf("MaxLifetime = %v, want 72h", gc.MaxLifetime())
	}
	if logger.GetLevel() != "debug" {
		t.Errorf("level = %q, want debug", logger.GetLevel())
	}
}
