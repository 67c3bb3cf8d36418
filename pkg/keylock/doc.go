// Package keylock provides striped read/write locks keyed by string.
//
// A fixed number of sync.RWMutex stripes is allocated up front and a key is
// mapped to its stripe with murmur3. Two different keys may share a stripe;
// the same key always maps to the same stripe, which is the only guarantee
// callers rely on.
package keylock
