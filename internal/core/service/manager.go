package service

import (
	"context"
	"time"

	"github.com/foteam/sessionstore/internal/core/domain"
	"github.com/foteam/sessionstore/internal/storage/codec"
	"github.com/foteam/sessionstore/internal/storage/filestore"
	"github.com/foteam/sessionstore/internal/telemetry/logger"
)

// Store defines the storage operations the facade relies on.
// *filestore.Store implements it.
type Store interface {
	// Read returns the record and the state it was found in.
	Read(ctx context.Context, id string) filestore.ReadResult

	// Write persists a record; state is the one returned by Read.
	Write(ctx context.Context, id string, data []byte, state filestore.State) bool

	// Touch refreshes last_activity of an existing record.
	Touch(ctx context.Context, id string, data []byte) bool

	// Destroy removes a record; absence is success.
	Destroy(ctx context.Context, id string) bool

	// GC deletes records past the retention window.
	GC(ctx context.Context, maxLifetime time.Duration) int
}

// Manager starts sessions on top of a Store.
type Manager struct {
	store  Store
	gc     *GCScheduler
	logger logger.Logger
	newID  func() (string, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used when the request context carries none.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithGCScheduler enables the opportunistic sweep at session start.
func WithGCScheduler(g *GCScheduler) Option {
	return func(m *Manager) {
		m.gc = g
	}
}

// WithIDGenerator replaces domain.NewSessionID.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// NewManager creates a Manager.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: logger.Default(),
		newID:  domain.NewSessionID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins the session for one request. An empty or malformed id is
// replaced with a newly generated one; a well-formed id is always reused,
// including when its record expired and was reset (renewal).
func (m *Manager) Start(ctx context.Context, id string) (*Session, error) {
	isNew := false
	if !domain.IsValidSessionID(id) {
		if id != "" {
			m.log(ctx).Warn("discarding malformed session id", "id_length", len(id))
		}
		newID, err := m.newID()
		if err != nil {
			return nil, err
		}
		id, isNew = newID, true
	}

	if m.gc != nil {
		m.gc.MaybeRun(ctx)
	}

	res := m.store.Read(ctx, id)
	s := &Session{
		manager: m,
		id:      id,
		attrs:   codec.Decode(res.Data),
		state:   res.State,
		isNew:   isNew,
	}
	if res.State == filestore.StateExpired {
		m.log(ctx).Info("session renewed after idle timeout", "session_id", id)
	}
	return s, nil
}

func (m *Manager) log(ctx context.Context) logger.Logger {
	return logger.LOr(ctx, m.logger)
}
