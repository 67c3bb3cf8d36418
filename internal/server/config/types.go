package config

import "time"

// ServerConfig is the root configuration for foteam-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Session SessionSection `koanf:"session"`
	Log     LogSection     `koanf:"log"`
	Metrics MetricsSection `koanf:"metrics"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	TLSCertFile     string        `koanf:"tls_cert_file"`
	TLSKeyFile      string        `koanf:"tls_key_file"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SessionSection configures the session store.
type SessionSection struct {
	// Dir holds one sess_<id> file per session.
	Dir string `koanf:"dir"`

	// TTL is the idle timeout after which a session's data is reset.
	TTL time.Duration `koanf:"ttl"`

	// GCMaxLifetime is the retention window for record files, measured
	// from their last modification. Normally much longer than TTL.
	GCMaxLifetime time.Duration `koanf:"gc_max_lifetime"`

	// GCInterval runs a periodic sweep; zero disables it.
	GCInterval time.Duration `koanf:"gc_interval"`

	// GCProbability/GCDivisor is the chance that a request triggers a
	// sweep. A zero probability disables request-triggered sweeps.
	GCProbability int `koanf:"gc_probability"`
	GCDivisor     int `koanf:"gc_divisor"`

	Cookie CookieConfig `koanf:"cookie"`
}

// CookieConfig configures the session cookie.
type CookieConfig struct {
	Name     string `koanf:"name"`
	Path     string `koanf:"path"`
	Domain   string `koanf:"domain"`
	Secure   bool   `koanf:"secure"`
	SameSite string `koanf:"same_site"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`

	// Token, when set, is required as a bearer token on the endpoint.
	Token string `koanf:"token"`
}
