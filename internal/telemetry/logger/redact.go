package logger

import (
	"log/slog"
	"strings"
)

// Keys whose values are session identifiers. They are partially masked so
// log lines stay correlatable without leaking a usable id.
var sessionKeyPatterns = []string{
	"session_id",
	"sessionid",
	"old_id",
	"new_id",
}

// Keys whose values are fully redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"cookie",
	"credential",
	"auth",
	"bearer",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive masks session ids and redacts secrets in one attribute.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}
	if a.Value.Kind() != slog.KindString {
		return a
	}

	strVal := a.Value.String()
	if strVal == "" {
		return a
	}
	if IsSessionKey(a.Key) {
		return slog.String(a.Key, MaskID(strVal))
	}
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, redactedValue)
	}
	return a
}

// MaskID keeps the first and last four characters of an identifier.
// Format: first 4 chars + "..." + last 4 chars
func MaskID(id string) string {
	if len(id) <= 12 {
		return "***"
	}
	return id[:4] + "..." + id[len(id)-4:]
}

// IsSessionKey reports whether an attribute key holds a session id.
func IsSessionKey(key string) bool {
	keyLower := strings.ToLower(key)
	if keyLower == "sid" {
		return true
	}
	for _, pattern := range sessionKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveKey checks if a key name suggests secret content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
