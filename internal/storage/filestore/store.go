package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/foteam/sessionstore/internal/core/domain"
	"github.com/foteam/sessionstore/internal/storage/codec"
	"github.com/foteam/sessionstore/internal/telemetry/logger"
	"github.com/foteam/sessionstore/internal/telemetry/metric"
	"github.com/foteam/sessionstore/pkg/keylock"
)

// State is the per-request state of a session, as observed by Read.
type State int

const (
	// StateFresh means no record existed; the returned data is synthesized.
	StateFresh State = iota
	// StateActive means a record existed and was within its TTL.
	StateActive
	// StateExpired means the record was stale and has been reset in place.
	// Writes carrying this state are suppressed.
	StateExpired
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ReadResult is the outcome of Read.
type ReadResult struct {
	Data  []byte
	State State
}

// Config configures a Store.
type Config struct {
	// Dir is the session directory. Required.
	Dir string

	// TTL is the idle timeout. Defaults to domain.DefaultTTL.
	TTL time.Duration

	// Logger defaults to logger.Default().
	Logger logger.Logger

	// Metrics is optional.
	Metrics *metric.Registry

	// Now defaults to time.Now.
	Now func() time.Time

	// LockStripes is the number of in-process lock stripes (power of 2).
	LockStripes int
}

// Store is a file-backed session store. It is safe for concurrent use.
type Store struct {
	dir     string
	ttl     atomic.Int64
	logger  logger.Logger
	metrics *metric.Registry
	now     func() time.Time
	locks   *keylock.Locker
}

// Open prepares the session directory, creating it with mode 0700 when
// absent. An existing directory is used as is.
func Open(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, domain.ErrInvalidConfig.WithDetails("session dir is empty")
	}
	if err := os.MkdirAll(cfg.Dir, dirMode); err != nil {
		return nil, domain.ErrStorageError.WithDetails("create session dir").WithCause(err)
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, domain.ErrStorageError.WithDetails("stat session dir").WithCause(err)
	}
	if !info.IsDir() {
		return nil, domain.ErrInvalidConfig.WithDetails(cfg.Dir + " is not a directory")
	}

	s := &Store{
		dir:     cfg.Dir,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		now:     cfg.Now,
		locks:   keylock.New(cfg.LockStripes),
	}
	if s.logger == nil {
		s.logger = logger.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.logger = s.logger.With("component", "filestore")
	s.SetTTL(cfg.TTL)

	s.logger.Info("session store opened", "dir", s.dir, "ttl", s.TTL().String())
	return s, nil
}

// Dir returns the session directory.
func (s *Store) Dir() string {
	return s.dir
}

// TTL returns the current idle timeout.
func (s *Store) TTL() time.Duration {
	return time.Duration(s.ttl.Load())
}

// SetTTL changes the idle timeout for subsequent operations. Non-positive
// values select domain.DefaultTTL.
func (s *Store) SetTTL(ttl time.Duration) {
	s.ttl.Store(int64(domain.NewExpirationPolicy(ttl).TTL))
}

func (s *Store) policy() domain.ExpirationPolicy {
	return domain.ExpirationPolicy{TTL: s.TTL()}
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, filePrefix+id)
}

func (s *Store) log(ctx context.Context) logger.Logger {
	l := s.logger
	if rid := logger.RequestIDFromContext(ctx); rid != "" {
		l = l.With("request_id", rid)
	}
	return l
}

func (s *Store) observe(op string, start time.Time) {
	s.metrics.ObserveStoreDuration(op, time.Since(start).Seconds())
}

// Read returns the record for id, creating nothing on disk for unknown ids.
//
// A missing (or unreadable) record yields a synthesized default with
// renewed set and StateFresh. A stale record is overwritten with that
// default immediately and StateExpired is returned. Otherwise the record
// comes back with last_activity refreshed, missing reserved keys filled
// in and the renewed marker dropped; the refresh is persisted by the
// caller's next Write or Touch.
func (s *Store) Read(ctx context.Context, id string) ReadResult {
	defer s.observe("read", time.Now())
	now := s.now()

	if !domain.IsValidSessionID(id) {
		s.log(ctx).Warn("invalid session id on read", "id_length", len(id))
		return s.fresh(now)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	path := s.path(id)
	attrs, found, err := readRecord(path)
	if err != nil {
		s.log(ctx).Error("failed to read session record", "session_id", id, "error", err)
	}
	if !found {
		s.log(ctx).Debug("session record not found", "session_id", id)
		return s.fresh(now)
	}

	policy := s.policy()
	if policy.IsStale(attrs, now) {
		last, _ := domain.LastActivity(attrs)
		data := codec.MustEncode(policy.Reset(now))
		if err := writeRecord(path, data, true); err != nil {
			s.log(ctx).Error("failed to reset expired session", "session_id", id, "error", err)
		}
		s.log(ctx).Info("session expired, record reset",
			"session_id", id,
			"idle_seconds", now.Unix()-last,
			"ttl", policy.TTL.String(),
		)
		s.metrics.RecordRead(StateExpired.String())
		return ReadResult{Data: data, State: StateExpired}
	}

	domain.TouchActivity(attrs, now)
	attrs = domain.Normalize(attrs, now)
	delete(attrs, domain.KeyRenewed)
	data, err := codec.Encode(attrs)
	if err != nil {
		s.log(ctx).Error("failed to encode session record", "session_id", id, "error", err)
		return s.fresh(now)
	}
	s.metrics.RecordRead(StateActive.String())
	return ReadResult{Data: data, State: StateActive}
}

func (s *Store) fresh(now time.Time) ReadResult {
	s.metrics.RecordRead(StateFresh.String())
	return ReadResult{Data: codec.MustEncode(domain.RenewedRecord(now)), State: StateFresh}
}

// Write persists data for id. state is the State returned by this request's
// Read (StateFresh when the request never read).
//
// With StateExpired the data is discarded; if no file exists at all a
// default record flagged expired is created. The call still reports true.
// Otherwise the data is decoded, last_activity is set to now, missing
// reserved keys are filled in, the renewed marker is dropped and the result
// is written with mode 0600.
// Write returns false only for an invalid id or an I/O failure.
func (s *Store) Write(ctx context.Context, id string, data []byte, state State) bool {
	defer s.observe("write", time.Now())

	if !domain.IsValidSessionID(id) {
		s.log(ctx).Warn("invalid session id on write", "id_length", len(id))
		s.metrics.RecordWrite("error")
		return false
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	path := s.path(id)
	now := s.now()

	if state == StateExpired {
		rec := domain.DefaultRecord(now)
		rec[domain.KeyExpired] = true
		created, err := createRecord(path, codec.MustEncode(rec))
		if err != nil {
			s.log(ctx).Error("failed to create placeholder for expired session", "session_id", id, "error", err)
		}
		s.log(ctx).Info("write suppressed for expired session", "session_id", id, "placeholder", created)
		s.metrics.RecordWrite("suppressed")
		return true
	}

	attrs := codec.Decode(data)
	domain.TouchActivity(attrs, now)
	attrs = domain.Normalize(attrs, now)
	delete(attrs, domain.KeyRenewed)

	enc, err := codec.Encode(attrs)
	if err != nil {
		s.log(ctx).Error("failed to encode session record", "session_id", id, "error", err)
		s.metrics.RecordWrite("error")
		return false
	}
	if err := writeRecord(path, enc, true); err != nil {
		s.log(ctx).Error("failed to write session record", "session_id", id, "error", err)
		s.metrics.RecordWrite("error")
		return false
	}
	s.metrics.RecordWrite("ok")
	return true
}

// Destroy removes the record for id. A missing record is not an error.
func (s *Store) Destroy(ctx context.Context, id string) bool {
	defer s.observe("destroy", time.Now())

	if !domain.IsValidSessionID(id) {
		s.log(ctx).Warn("invalid session id on destroy", "id_length", len(id))
		return false
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	err := os.Remove(s.path(id))
	switch {
	case err == nil:
		s.metrics.IncDestroy()
		s.log(ctx).Debug("session destroyed", "session_id", id)
		return true
	case errors.Is(err, fs.ErrNotExist):
		return true
	default:
		s.log(ctx).Error("failed to destroy session", "session_id", id, "error", err)
		return false
	}
}

// GC deletes every record file whose modification time plus maxLifetime
// is before now, and returns how many were deleted. It is independent of
// the idle TTL. An unreadable directory yields 0.
func (s *Store) GC(ctx context.Context, maxLifetime time.Duration) int {
	defer s.observe("gc", time.Now())

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log(ctx).Error("failed to scan session dir", "dir", s.dir, "error", err)
		s.metrics.RecordGC(0)
		return 0
	}

	now := s.now()
	deleted := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) {
			continue
		}
		if s.collect(ctx, name, now, maxLifetime) {
			deleted++
		}
	}

	s.metrics.RecordGC(deleted)
	s.log(ctx).Info("session gc finished", "deleted", deleted, "max_lifetime", maxLifetime.String())
	return deleted
}

// collect removes one file if it is past retention, re-checking the mtime
// under the id's lock so a concurrent write wins.
func (s *Store) collect(ctx context.Context, name string, now time.Time, maxLifetime time.Duration) bool {
	id := strings.TrimPrefix(name, filePrefix)
	if domain.IsValidSessionID(id) {
		unlock := s.locks.Lock(id)
		defer unlock()
	}

	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if !info.ModTime().Add(maxLifetime).Before(now) {
		return false
	}
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log(ctx).Warn("failed to remove session file", "file", name, "error", err)
		}
		return false
	}
	return true
}

// ValidateID reports whether id is acceptable. Any syntactically valid id
// is accepted, stale or not: a stale record is reset in place exactly as
// Read would, and a live record has last_activity refreshed on disk.
// Missing records are left missing.
func (s *Store) ValidateID(ctx context.Context, id string) bool {
	defer s.observe("validate", time.Now())

	if !domain.IsValidSessionID(id) {
		return false
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	path := s.path(id)
	attrs, found, err := readRecord(path)
	if err != nil {
		s.log(ctx).Error("failed to read session record", "session_id", id, "error", err)
		return true
	}
	if !found {
		return true
	}

	now := s.now()
	policy := s.policy()
	if policy.IsStale(attrs, now) {
		if err := writeRecord(path, codec.MustEncode(policy.Reset(now)), true); err != nil {
			s.log(ctx).Error("failed to reset expired session", "session_id", id, "error", err)
		}
		s.log(ctx).Info("session expired during validation, record reset", "session_id", id)
		return true
	}

	domain.TouchActivity(attrs, now)
	if data, err := codec.Encode(attrs); err == nil {
		if err := writeRecord(path, data, false); err != nil {
			s.log(ctx).Warn("failed to refresh session activity", "session_id", id, "error", err)
		}
	}
	return true
}

// Touch refreshes last_activity without normalizing the record. data is the
// current encoding; when empty, the stored record is touched instead.
// Touch returns false when no record file exists.
func (s *Store) Touch(ctx context.Context, id string, data []byte) bool {
	defer s.observe("touch", time.Now())

	if !domain.IsValidSessionID(id) {
		s.metrics.RecordTouch("error")
		return false
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	path := s.path(id)
	var attrs domain.Attributes
	if len(data) == 0 {
		stored, found, err := readRecord(path)
		if err != nil || !found {
			s.metrics.RecordTouch("missing")
			return false
		}
		attrs = stored
	} else {
		attrs = codec.Decode(data)
	}

	domain.TouchActivity(attrs, s.now())
	enc, err := codec.Encode(attrs)
	if err != nil {
		s.log(ctx).Error("failed to encode session record", "session_id", id, "error", err)
		s.metrics.RecordTouch("error")
		return false
	}

	err = writeRecord(path, enc, false)
	switch {
	case err == nil:
		s.metrics.RecordTouch("ok")
		return true
	case errors.Is(err, fs.ErrNotExist):
		s.metrics.RecordTouch("missing")
		return false
	default:
		s.log(ctx).Error("failed to touch session record", "session_id", id, "error", err)
		s.metrics.RecordTouch("error")
		return false
	}
}
