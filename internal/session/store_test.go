package session

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ricecast/internal/dataset"
	"ricecast/internal/shared/testutil"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(opts Options) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(opts, nil)
	s.now = clock.Now
	return s, clock
}

func TestPutGetDelete(t *testing.T) {
	s, _ := newTestStore(Options{})
	ds := &dataset.RawDataset{Source: "a.xlsx"}

	e, err := s.Put(ds)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)

	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Same(t, ds, got.Dataset)

	require.NoError(t, s.Delete(e.ID))
	_, err = s.Get(e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(e.ID), ErrNotFound)

	_, err = s.Put(nil)
	assert.Error(t, err)
}

func TestEntriesAreIsolated(t *testing.T) {
	s, _ := newTestStore(Options{})
	a, _ := s.Put(&dataset.RawDataset{Source: "a.xlsx"})
	b, _ := s.Put(&dataset.RawDataset{Source: "b.xlsx"})
	assert.NotEqual(t, a.ID, b.ID)

	got, err := s.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.xlsx", got.Dataset.Source)
}

func TestExpiry(t *testing.T) {
	s, clock := newTestStore(Options{TTL: time.Minute})
	e, _ := s.Put(&dataset.RawDataset{})

	clock.Advance(50 * time.Second)
	_, err := s.Get(e.ID)
	require.NoError(t, err, "access refreshes the entry")

	clock.Advance(50 * time.Second)
	_, err = s.Get(e.ID)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = s.Get(e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestSweep(t *testing.T) {
	s, clock := newTestStore(Options{TTL: time.Minute})
	_, _ = s.Put(&dataset.RawDataset{})
	clock.Advance(30 * time.Second)
	fresh, _ := s.Put(&dataset.RawDataset{})
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, s.Sweep())
	_, err := s.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestEvictsOldestWhenFull(t *testing.T) {
	s, clock := newTestStore(Options{MaxEntries: 2})
	first, _ := s.Put(&dataset.RawDataset{})
	clock.Advance(time.Second)
	second, _ := s.Put(&dataset.RawDataset{})
	clock.Advance(time.Second)
	_, _ = s.Get(first.ID)
	clock.Advance(time.Second)
	_, _ = s.Put(&dataset.RawDataset{})

	assert.Equal(t, 2, s.Len())
	_, err := s.Get(second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(first.ID)
	assert.NoError(t, err)
}

func TestEvictionIsLogged(t *testing.T) {
	logger, rec := testutil.NewTestLogger(t)
	s := NewStore(Options{MaxEntries: 1}, logger)

	first, err := s.Put(&dataset.RawDataset{})
	require.NoError(t, err)
	_, err = s.Put(&dataset.RawDataset{})
	require.NoError(t, err)

	r := testutil.AssertLogged(t, rec, slog.LevelInfo, "dataset evicted")
	assert.Equal(t, first.ID, r.Attrs["dataset_id"])
	assert.Equal(t, "session_store", r.Attrs["component"])
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore(Options{TTL: time.Hour, MaxEntries: 50}, nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				e, err := s.Put(&dataset.RawDataset{})
				if err != nil {
					continue
				}
				_, _ = s.Get(e.ID)
				s.Sweep()
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, s.Len(), 50)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := NewStore(Options{TTL: time.Nanosecond}, nil)
	_, _ = s.Put(&dataset.RawDataset{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
