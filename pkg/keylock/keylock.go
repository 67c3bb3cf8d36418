package keylock

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultStripes is the default number of lock stripes.
const DefaultStripes = 64

// Locker is a set of striped read/write locks.
type Locker struct {
	stripes []sync.RWMutex
	mask    uint32
}

// New creates a Locker with the given number of stripes.
// stripes must be a power of 2; other values fall back to DefaultStripes.
func New(stripes int) *Locker {
	if stripes <= 0 || stripes&(stripes-1) != 0 {
		stripes = DefaultStripes
	}
	return &Locker{
		stripes: make([]sync.RWMutex, stripes),
		mask:    uint32(stripes - 1),
	}
}

func (l *Locker) stripe(key string) *sync.RWMutex {
	return &l.stripes[murmur3.Sum32([]byte(key))&l.mask]
}

// Lock acquires the exclusive lock for key and returns its release func.
func (l *Locker) Lock(key string) func() {
	mu := l.stripe(key)
	mu.Lock()
	return mu.Unlock
}

// RLock acquires the shared lock for key and returns its release func.
func (l *Locker) RLock(key string) func() {
	mu := l.stripe(key)
	mu.RLock()
	return mu.RUnlock
}

// Stripes returns the number of stripes.
func (l *Locker) Stripes() int {
	return len(l.stripes)
}
