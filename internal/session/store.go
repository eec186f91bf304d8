// Package session caches uploaded datasets between requests of one user.
//
// Each upload gets its own entry keyed by a random UUID. Datasets are read
// only after parsing, so entries hand out the same pointer to every reader.
// Entries expire after a period of inactivity and the oldest entry is evicted
// when the store is full.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"ricecast/internal/dataset"
)

// ErrNotFound is returned for unknown or expired ids.
var ErrNotFound = errors.New("dataset not found")

// Entry is one cached upload.
type Entry struct {
	ID         string
	Dataset    *dataset.RawDataset
	CreatedAt  time.Time
	LastAccess time.Time
}

// Options bounds the store.
type Options struct {
	TTL        time.Duration
	MaxEntries int
}

// Store is an in-memory dataset cache safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	opts    Options
	now     func() time.Time
	logger  *slog.Logger
}

// NewStore creates an empty store.
func NewStore(opts Options, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		entries: make(map[string]*Entry),
		opts:    opts,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "session_store")),
	}
}

// Put stores a dataset under a fresh id.
func (s *Store) Put(ds *dataset.RawDataset) (Entry, error) {
	if ds == nil {
		return Entry{}, fmt.Errorf("nil dataset")
	}

	now := s.now()
	e := &Entry{
		ID:         uuid.New().String(),
		Dataset:    ds,
		CreatedAt:  now,
		LastAccess: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.MaxEntries > 0 {
		for len(s.entries) >= s.opts.MaxEntries {
			s.evictOldestLocked()
		}
	}
	s.entries[e.ID] = e
	return *e, nil
}

// Get returns the entry and refreshes its access time.
func (s *Store) Get(id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.entries, id)
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.LastAccess = now
	return *e, nil
}

// Delete removes an entry.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.entries, id)
	return nil
}

// ExpiresAt reports when the entry expires if left untouched. The zero time
// means it never expires.
func (s *Store) ExpiresAt(e Entry) time.Time {
	if s.opts.TTL <= 0 {
		return time.Time{}
	}
	return e.LastAccess.Add(s.opts.TTL)
}

// Len returns the number of cached entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes expired entries and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.DebugContext(ctx, "expired datasets removed",
					slog.Int("removed", n),
					slog.Int("remaining", s.Len()))
			}
		}
	}
}

func (s *Store) expired(e *Entry, now time.Time) bool {
	return s.opts.TTL > 0 && now.Sub(e.LastAccess) > s.opts.TTL
}

func (s *Store) evictOldestLocked() {
	var oldest *Entry
	for _, e := range s.entries {
		if oldest == nil || e.LastAccess.Before(oldest.LastAccess) {
			oldest = e
		}
	}
	if oldest != nil {
		delete(s.entries, oldest.ID)
		s.logger.Info("dataset evicted", slog.String("dataset_id", oldest.ID))
	}
}
