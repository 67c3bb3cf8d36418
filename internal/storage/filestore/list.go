package filestore

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/foteam/sessionstore/internal/core/domain"
)

// RecordInfo describes one record file for maintenance tooling.
type RecordInfo struct {
	ID           string    `json:"id" yaml:"id"`
	Size         int64     `json:"size" yaml:"size"`
	ModTime      time.Time `json:"mod_time" yaml:"mod_time"`
	LastActivity time.Time `json:"last_activity,omitempty" yaml:"last_activity,omitempty"`
	CartItems    int       `json:"cart_items" yaml:"cart_items"`
	Renewed      bool      `json:"renewed" yaml:"renewed"`
	Expired      bool      `json:"expired" yaml:"expired"`
	Stale        bool      `json:"stale" yaml:"stale"`
}

// List describes every record in the directory, sorted by id. It never
// touches or resets records.
func (s *Store) List(ctx context.Context) ([]RecordInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, domain.ErrStorageError.WithDetails("scan session dir").WithCause(err)
	}

	infos := make([]RecordInfo, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, ok := strings.CutPrefix(e.Name(), filePrefix)
		if e.IsDir() || !ok || !domain.IsValidSessionID(id) {
			continue
		}
		info, _, err := s.inspect(id)
		if err != nil {
			s.log(ctx).Warn("skipping unreadable session record", "session_id", id, "error", err)
			continue
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Inspect returns the metadata and decoded attributes of one record
// without refreshing or resetting it.
func (s *Store) Inspect(ctx context.Context, id string) (RecordInfo, domain.Attributes, error) {
	if !domain.IsValidSessionID(id) {
		return RecordInfo{}, nil, domain.ErrInvalidSessionID
	}
	return s.inspect(id)
}

func (s *Store) inspect(id string) (RecordInfo, domain.Attributes, error) {
	unlock := s.locks.RLock(id)
	defer unlock()

	path := s.path(id)
	attrs, found, err := readRecord(path)
	if err != nil {
		return RecordInfo{}, nil, domain.ErrStorageError.WithCause(err)
	}
	if !found {
		return RecordInfo{}, nil, domain.ErrSessionNotFound.WithDetails(id)
	}
	st, err := os.Stat(path)
	if err != nil {
		return RecordInfo{}, nil, domain.ErrStorageError.WithCause(err)
	}

	info := RecordInfo{
		ID:      id,
		Size:    st.Size(),
		ModTime: st.ModTime(),
		Stale:   s.policy().IsStale(attrs, s.now()),
	}
	if last, ok := domain.LastActivity(attrs); ok {
		info.LastActivity = time.Unix(last, 0)
	}
	if cart, ok := attrs[domain.KeyCart].([]any); ok {
		info.CartItems = len(cart)
	}
	info.Renewed, _ = attrs[domain.KeyRenewed].(bool)
	info.Expired, _ = attrs[domain.KeyExpired].(bool)
	return info, attrs, nil
}

// Count returns the number of record files in the directory.
func (s *Store) Count() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), filePrefix) {
			n++
		}
	}
	return n, nil
}
