package domain

import (
	"math"
	"strconv"
	"time"
)

// Reserved attribute keys stored inline in every record.
const (
	KeyInitiated        = "initiated"
	KeySessionStartTime = "session_start_time"
	KeyLastActivity     = "last_activity"
	KeyRenewed          = "renewed"
	KeyCart             = "cart"

	// KeyExpired marks the placeholder record written when a suppressed
	// write finds no file on disk.
	KeyExpired = "expired"
)

// Attributes is the decoded content of one session record.
type Attributes = map[string]any

// DefaultRecord returns the record of a brand-new session.
func DefaultRecord(now time.Time) Attributes {
	ts := now.Unix()
	return Attributes{
		KeyInitiated:        true,
		KeySessionStartTime: ts,
		KeyLastActivity:     ts,
		KeyCart:             []any{},
	}
}

// RenewedRecord returns a default record carrying the renewed marker, used
// both for unknown ids and for in-place resets of stale records.
func RenewedRecord(now time.Time) Attributes {
	rec := DefaultRecord(now)
	rec[KeyRenewed] = true
	return rec
}

// Normalize fills the reserved keys that are missing (or, for cart, not a
// list) with their defaults. Present values are left untouched.
func Normalize(attrs Attributes, now time.Time) Attributes {
	if attrs == nil {
		attrs = Attributes{}
	}
	if _, ok := attrs[KeyInitiated]; !ok {
		attrs[KeyInitiated] = true
	}
	if _, ok := attrs[KeySessionStartTime]; !ok {
		attrs[KeySessionStartTime] = now.Unix()
	}
	if _, ok := attrs[KeyLastActivity]; !ok {
		attrs[KeyLastActivity] = now.Unix()
	}
	if _, ok := attrs[KeyCart].([]any); !ok {
		attrs[KeyCart] = []any{}
	}
	return attrs
}

// TouchActivity sets last_activity to now. A stored value ahead of the
// clock is overwritten too, so a record can never outlive its TTL.
func TouchActivity(attrs Attributes, now time.Time) {
	attrs[KeyLastActivity] = now.Unix()
}

// LastActivity returns the record's last_activity in epoch seconds.
func LastActivity(attrs Attributes) (int64, bool) {
	v, ok := attrs[KeyLastActivity]
	if !ok {
		return 0, false
	}
	return AsInt64(v)
}

// AsInt64 converts the numeric shapes a decoded record may hold.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}
