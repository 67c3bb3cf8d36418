package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/foteam/sessionstore/internal/core/domain"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifySession(&cfg.Session); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return invalid("metrics.path must start with /")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf(format, args...))
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return invalid("server.http.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return invalid("server.http.addr %q: %v", cfg.HTTP.Addr, err)
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return invalid("server.http.tls_cert_file and tls_key_file must be set together")
	}
	if cfg.HTTP.ReadTimeout < 0 || cfg.HTTP.WriteTimeout < 0 || cfg.HTTP.IdleTimeout < 0 {
		return invalid("server.http timeouts must not be negative")
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		return invalid("server.http.shutdown_timeout must be positive")
	}
	return nil
}

func verifySession(cfg *SessionSection) error {
	if cfg.Dir == "" {
		return invalid("session.dir is required")
	}
	if cfg.TTL <= 0 {
		return invalid("session.ttl must be positive")
	}
	if cfg.GCMaxLifetime <= 0 {
		return invalid("session.gc_max_lifetime must be positive")
	}
	if cfg.GCMaxLifetime < cfg.TTL {
		return invalid("session.gc_max_lifetime (%s) must not be shorter than session.ttl (%s)", cfg.GCMaxLifetime, cfg.TTL)
	}
	if cfg.GCInterval < 0 {
		return invalid("session.gc_interval must not be negative")
	}
	if cfg.GCDivisor <= 0 {
		return invalid("session.gc_divisor must be positive")
	}
	if cfg.GCProbability < 0 || cfg.GCProbability > cfg.GCDivisor {
		return invalid("session.gc_probability must be between 0 and gc_divisor")
	}
	return verifyCookie(&cfg.Cookie)
}

func verifyCookie(cfg *CookieConfig) error {
	if cfg.Name == "" {
		return invalid("session.cookie.name is required")
	}
	if strings.ContainsAny(cfg.Name, " \t;,=\"") {
		return invalid("session.cookie.name %q contains invalid characters", cfg.Name)
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		return invalid("session.cookie.path must start with /")
	}
	switch strings.ToLower(cfg.SameSite) {
	case "lax", "strict":
	case "none":
		if !cfg.Secure {
			return invalid("session.cookie.same_site none requires secure")
		}
	default:
		return invalid("session.cookie.same_site must be lax, strict or none")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log.level %q is not supported", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		return invalid("log.format %q is not supported", cfg.Format)
	}
	return nil
}
