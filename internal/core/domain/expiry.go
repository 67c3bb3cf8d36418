package domain

import "time"

// DefaultTTL is the production idle timeout.
const DefaultTTL = 30 * time.Minute

// ExpirationPolicy decides staleness from idle time. It is independent of
// the directory-wide retention applied by garbage collection.
type ExpirationPolicy struct {
	TTL time.Duration
}

// NewExpirationPolicy creates a policy, falling back to DefaultTTL for
// non-positive values.
func NewExpirationPolicy(ttl time.Duration) ExpirationPolicy {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return ExpirationPolicy{TTL: ttl}
}

// IsStale reports whether now - last_activity exceeds the TTL, in whole
// seconds. Records without a readable last_activity are not stale.
func (p ExpirationPolicy) IsStale(attrs Attributes, now time.Time) bool {
	last, ok := LastActivity(attrs)
	if !ok {
		return false
	}
	idle := now.Unix() - last
	return time.Duration(idle)*time.Second > p.TTL
}

// Reset returns the record that replaces a stale one under the same id:
// every attribute (cart included) is dropped and renewed is set.
func (p ExpirationPolicy) Reset(now time.Time) Attributes {
	return RenewedRecord(now)
}
