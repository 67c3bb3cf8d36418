package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	DefaultSessionDir    = "/var/lib/foteam/sessions"
	DefaultTTL           = 30 * time.Minute
	DefaultGCMaxLifetime = 24 * time.Hour
	DefaultGCInterval    = time.Hour
	DefaultGCProbability = 1
	DefaultGCDivisor     = 100

	DefaultCookieName     = "foteam_session"
	DefaultCookiePath     = "/"
	DefaultCookieSameSite = "lax"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath = "/metrics"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				ReadTimeout:     DefaultReadTimeout,
				WriteTimeout:    DefaultWriteTimeout,
				IdleTimeout:     DefaultIdleTimeout,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
		},
		Session: SessionSection{
			Dir:           DefaultSessionDir,
			TTL:           DefaultTTL,
			GCMaxLifetime: DefaultGCMaxLifetime,
			GCInterval:    DefaultGCInterval,
			GCProbability: DefaultGCProbability,
			GCDivisor:     DefaultGCDivisor,
			Cookie: CookieConfig{
				Name:     DefaultCookieName,
				Path:     DefaultCookiePath,
				SameSite: DefaultCookieSameSite,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
	}
}
