package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contact-solution/leadbot/core/flow"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	s, err := store.GetOrCreate(ctx, "5511999887766")
	require.NoError(t, err)
	assert.Equal(t, flow.StepStart, s.Step)
	assert.Empty(t, s.Answers)

	s.Step = flow.StepEmail
	s.Answers[flow.FieldName] = "Maria"
	require.NoError(t, store.Save(ctx, "5511999887766", s))

	got, err := store.GetOrCreate(ctx, "5511999887766")
	require.NoError(t, err)
	assert.Equal(t, flow.StepEmail, got.Step)
	assert.Equal(t, "Maria", got.Answers[flow.FieldName])
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	s, _ := store.GetOrCreate(ctx, "p1")
	s.Answers[flow.FieldName] = "Maria"
	require.NoError(t, store.Save(ctx, "p1", s))

	first, _ := store.GetOrCreate(ctx, "p1")
	first.Answers[flow.FieldName] = "Mutated"

	second, _ := store.GetOrCreate(ctx, "p1")
	assert.Equal(t, "Maria", second.Answers[flow.FieldName], "store must hand out copies")
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	store := &memoryStore{
		sessions: make(map[string]Session),
		ttl:      time.Minute,
		now:      func() time.Time { return now },
	}

	s, _ := store.GetOrCreate(ctx, "p1")
	s.Step = flow.StepConfirm
	require.NoError(t, store.Save(ctx, "p1", s))

	now = now.Add(30 * time.Second)
	got, _ := store.GetOrCreate(ctx, "p1")
	assert.Equal(t, flow.StepConfirm, got.Step, "inside TTL window")

	now = now.Add(2 * time.Minute)
	got, _ = store.GetOrCreate(ctx, "p1")
	assert.Equal(t, flow.StepStart, got.Step, "expired session treated as absent")
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	s, _ := store.GetOrCreate(ctx, "p1")
	s.Step = flow.StepNeed
	s.Answers[flow.FieldProduct] = "notebook"
	require.NoError(t, store.Save(ctx, "p1", s))

	require.NoError(t, store.Reset(ctx, "p1"))
	got, _ := store.GetOrCreate(ctx, "p1")
	assert.Equal(t, flow.StepStart, got.Step)
	assert.Empty(t, got.Answers)
}

type failingStore struct {
	err error
}

func (f *failingStore) GetOrCreate(context.Context, string) (Session, error) { return New(), f.err }
func (f *failingStore) Save(context.Context, string, Session) error          { return f.err }
func (f *failingStore) Reset(context.Context, string) error                  { return f.err }

func TestFallbackStoreDegradesToMemory(t *testing.T) {
	ctx := context.Background()
	store := NewFallbackStore(&failingStore{err: errors.New("connection refused")}, NewMemoryStore(time.Hour))

	s, err := store.GetOrCreate(ctx, "p1")
	require.NoError(t, err, "fallback must absorb primary failures")

	s.Step = flow.StepMenu
	require.NoError(t, store.Save(ctx, "p1", s))

	got, err := store.GetOrCreate(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, flow.StepMenu, got.Step, "session survives via memory fallback")
}

func TestLockerSerializesSameKey(t *testing.T) {
	locker := NewLocker()
	var inCritical, max int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("same")
			defer unlock()
			mu.Lock()
			inCritical++
			if inCritical > max {
				max = inCritical
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, max, "at most one holder per key")
}

func TestLockerReleasesEntries(t *testing.T) {
	locker := NewLocker()
	unlock := locker.Lock("p1")
	unlock()
	locker.mu.Lock()
	defer locker.mu.Unlock()
	assert.Empty(t, locker.locks, "released entries must be removed")
}
