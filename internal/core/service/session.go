package service

import (
	"context"
	"maps"
	"sync"

	"github.com/foteam/sessionstore/internal/core/domain"
	"github.com/foteam/sessionstore/internal/storage/codec"
	"github.com/foteam/sessionstore/internal/storage/filestore"
)

// Session is the request-scoped view of one session record.
type Session struct {
	manager *Manager

	mu        sync.Mutex
	id        string
	attrs     domain.Attributes
	state     filestore.State
	isNew     bool
	modified  bool
	destroyed bool
}

// ID returns the session id, or "" for a nil session.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// State returns the state observed when the session was read.
func (s *Session) State() filestore.State {
	if s == nil {
		return filestore.StateFresh
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsNew reports whether the id was allocated during this request, meaning
// the client does not know it yet.
func (s *Session) IsNew() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isNew
}

// Renewed reports whether the record was just synthesized or reset.
func (s *Session) Renewed() bool {
	v, _ := s.Get(domain.KeyRenewed, false).(bool)
	return v
}

// Get returns the attribute for key, or def when absent.
func (s *Session) Get(key string, def any) any {
	if s == nil {
		return def
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.attrs[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is set.
func (s *Session) Has(key string) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.attrs[key]
	return ok
}

// All returns a copy of the attributes.
func (s *Session) All() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.attrs)
}

// Set stores the canonical form of value under key, so an empty map reads
// back as an empty list within the request just as it will on the next one.
// It returns false for a nil or destroyed session, and for keys or values
// the wire format cannot carry.
func (s *Session) Set(key string, value any) bool {
	if s == nil {
		return false
	}
	if _, err := codec.Encode(map[string]any{key: value}); err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return false
	}
	s.attrs[key] = codec.Canonical(value)
	s.modified = true
	return true
}

// Delete removes key.
func (s *Session) Delete(key string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attrs[key]; ok {
		delete(s.attrs, key)
		s.modified = true
	}
}

// Regenerate moves the session to a new id, carrying the attributes over.
// The new id starts with a clean state, so the data is saved even if the
// old record had expired during this request. With deleteOld the old
// record is destroyed immediately.
func (s *Session) Regenerate(ctx context.Context, deleteOld bool) (string, error) {
	if s == nil {
		return "", domain.ErrSessionNotFound.WithDetails("no active session")
	}
	newID, err := s.manager.newID()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return "", domain.ErrSessionDestroyed
	}
	oldID := s.id
	if deleteOld && !s.manager.store.Destroy(ctx, oldID) {
		return "", domain.ErrStorageError.WithDetails("destroy old session record")
	}

	s.id = newID
	s.state = filestore.StateFresh
	s.isNew = true
	s.modified = true
	s.manager.log(ctx).Info("session id regenerated", "old_id", oldID, "new_id", newID, "deleted_old", deleteOld)
	return newID, nil
}

// Destroy deletes the record and empties the session. Save becomes a
// no-op afterwards.
func (s *Session) Destroy(ctx context.Context) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return true
	}
	if !s.manager.store.Destroy(ctx, s.id) {
		return false
	}
	s.destroyed = true
	s.attrs = domain.Attributes{}
	return true
}

// Destroyed reports whether Destroy succeeded.
func (s *Session) Destroyed() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// Save persists the session at the end of the request.
//
//   - destroyed: nothing is written
//   - expired: the write goes through the store, which suppresses it
//   - unmodified: last_activity is touched (a full write when no file exists yet)
//   - modified: a full write
func (s *Session) Save(ctx context.Context) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return true
	}

	data, err := codec.Encode(s.attrs)
	if err != nil {
		s.manager.log(ctx).Error("failed to encode session", "session_id", s.id, "error", err)
		return false
	}

	store := s.manager.store
	switch {
	case s.state == filestore.StateExpired:
		return store.Write(ctx, s.id, data, s.state)
	case !s.modified && store.Touch(ctx, s.id, data):
		return true
	default:
		if !store.Write(ctx, s.id, data, s.state) {
			return false
		}
		s.modified = false
		return true
	}
}
