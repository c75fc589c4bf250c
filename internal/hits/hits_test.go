package hits

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"benchshare/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	mu    sync.Mutex
	calls map[int64]int
	err   error
}

func (f *fakeCounter) UpdateHits(_ context.Context, pageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.calls == nil {
		f.calls = map[int64]int{}
	}
	f.calls[pageID]++
	return nil
}

func (f *fakeCounter) count(pageID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[pageID]
}

// memoryStore keeps JSON-encoded session values in a map.
type memoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

func (m *memoryStore) Get(_ context.Context, sessionID, name string, dst any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[sessionID+"/"+name]
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func (m *memoryStore) Set(_ context.Context, sessionID, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = map[string][]byte{}
	}
	m.values[sessionID+"/"+name] = raw
	return nil
}

func TestRecordView_CountsOncePerSession(t *testing.T) {
	counter := &fakeCounter{}
	store := &memoryStore{}
	tracker := NewTracker(counter, store, nil)
	ctx := context.Background()

	tracker.RecordView(ctx, "s1", 10)
	tracker.Wait()
	tracker.RecordView(ctx, "s1", 10)
	tracker.Wait()

	assert.Equal(t, 1, counter.count(10))

	var seen map[int64]bool
	require.NoError(t, store.Get(ctx, "s1", session.ValueHits, &seen))
	assert.Equal(t, map[int64]bool{10: true}, seen)
}

func TestRecordView_SeparateSessionsAndPages(t *testing.T) {
	counter := &fakeCounter{}
	tracker := NewTracker(counter, &memoryStore{}, nil)
	ctx := context.Background()

	tracker.RecordView(ctx, "s1", 10)
	tracker.Wait()
	tracker.RecordView(ctx, "s2", 10)
	tracker.Wait()
	tracker.RecordView(ctx, "s1", 11)
	tracker.Wait()

	assert.Equal(t, 2, counter.count(10))
	assert.Equal(t, 1, counter.count(11))
}

func TestRecordView_FailureLeavesSessionUnmarked(t *testing.T) {
	counter := &fakeCounter{err: errors.New("database is locked")}
	store := &memoryStore{}
	tracker := NewTracker(counter, store, nil)
	ctx := context.Background()

	tracker.RecordView(ctx, "s1", 10)
	tracker.Wait()

	var seen map[int64]bool
	require.NoError(t, store.Get(ctx, "s1", session.ValueHits, &seen))
	assert.False(t, seen[10])

	counter.err = nil
	tracker.RecordView(ctx, "s1", 10)
	tracker.Wait()
	assert.Equal(t, 1, counter.count(10))
}

func TestRecordView_SurvivesCancelledRequest(t *testing.T) {
	counter := &fakeCounter{}
	tracker := NewTracker(counter, &memoryStore{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tracker.RecordView(ctx, "s1", 10)
	tracker.Wait()

	assert.Equal(t, 1, counter.count(10))
}
