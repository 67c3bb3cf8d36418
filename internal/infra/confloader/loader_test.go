package confloader

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

type testConfig struct {
	Server struct {
		HTTP struct {
			Addr    string `koanf:"addr"`
			Enabled bool   `koanf:"enabled"`
		} `koanf:"http"`
	} `koanf:"server"`
	Session struct {
		Dir           string        `koanf:"dir"`
		TTL           time.Duration `koanf:"ttl"`
		GCMaxLifetime time.Duration `koanf:"gc_max_lifetime"`
		GCDivisor     int           `koanf:"gc_divisor"`
	} `koanf:"session"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}

	l = NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/etc/foteam.yaml"),
		WithOverrides(map[string]any{"a": 1}),
		WithOverrides(map[string]any{"b": 2}),
	)
	if l.envPrefix != "TEST_" || l.filePath != "/etc/foteam.yaml" {
		t.Errorf("options not applied: %q %q", l.envPrefix, l.filePath)
	}
	if len(l.overrides) != 2 {
		t.Errorf("overrides = %v, want both merged", l.overrides)
	}
}

func TestLoader_EnvKey(t *testing.T) {
	l := NewLoader()
	tests := map[string]string{
		"FOTEAM_SESSION__GC_MAX_LIFETIME": "session.gc_max_lifetime",
		"FOTEAM_SERVER__HTTP__ADDR":       "server.http.addr",
		"FOTEAM_LOG__LEVEL":               "log.level",
	}
	for in, want := range tests {
		if got := l.envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    addr: "from-file:8080"
session:
  dir: "/var/lib/foteam/sessions"
  ttl: "30m"
  gc_divisor: 50
`)
	t.Setenv("FOTEAM_SERVER__HTTP__ADDR", "from-env:8080")
	t.Setenv("FOTEAM_SESSION__GC_MAX_LIFETIME", "48h")

	var cfg testConfig
	cfg.Session.TTL = time.Minute
	cfg.Server.HTTP.Enabled = true

	l := NewLoader(WithConfigFile(path), WithOverrides(map[string]any{"session.dir": "/srv/override"}))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "from-env:8080" {
		t.Errorf("addr = %q, env should override file", cfg.Server.HTTP.Addr)
	}
	if cfg.Session.Dir != "/srv/override" {
		t.Errorf("dir = %q, overrides should win", cfg.Session.Dir)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("ttl = %v, want 30m", cfg.Session.TTL)
	}
	if cfg.Session.GCMaxLifetime != 48*time.Hour {
		t.Errorf("gc_max_lifetime = %v, want 48h", cfg.Session.GCMaxLifetime)
	}
	if cfg.Session.GCDivisor != 50 {
		t.Errorf("gc_divisor = %d, want 50", cfg.Session.GCDivisor)
	}
	if !cfg.Server.HTTP.Enabled {
		t.Error("defaults not set by any source must be kept")
	}

	want := []string{"file:" + path, "env:FOTEAM_", "overrides"}
	if got := l.Sources(); !reflect.DeepEqual(got, want) {
		t.Errorf("Sources() = %v, want %v", got, want)
	}
}

func TestLoader_Load_Reuse(t *testing.T) {
	path := writeConfig(t, "session:\n  ttl: 10m\n")
	l := NewLoader(WithConfigFile(path))

	var first testConfig
	if err := l.Load(&first); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := os.WriteFile(path, []byte("session:\n  dir: /tmp/x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var second testConfig
	if err := l.Load(&second); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if second.Session.TTL != 0 {
		t.Errorf("ttl = %v, a reload must not keep keys removed from the file", second.Session.TTL)
	}
	if second.Session.Dir != "/tmp/x" {
		t.Errorf("dir = %q", second.Session.Dir)
	}
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", "/nonexistent/config.yaml"},
		{"invalid yaml", writeConfig(t, "session: [unclosed")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg testConfig
			if err := NewLoader(WithConfigFile(tt.path)).Load(&cfg); err == nil {
				t.Error("expected error")
			}
		})
	}

	var cfg testConfig
	bad := NewLoader(WithOverrides(map[string]any{"session.ttl": "soon"}))
	if err := bad.Load(&cfg); err == nil {
		t.Error("expected error for an unparsable duration")
	}
}

func TestMapProvider(t *testing.T) {
	p := mapProvider{
		"session.dir": "/tmp/flags",
		"server":      map[string]any{"http": map[string]any{"addr": ":9000"}},
	}
	got, err := p.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	session, ok := got["session"].(map[string]any)
	if !ok || session["dir"] != "/tmp/flags" {
		t.Errorf("Read() = %v", got)
	}
	if _, err := p.ReadBytes(); err == nil {
		t.Error("ReadBytes() should fail")
	}
}
