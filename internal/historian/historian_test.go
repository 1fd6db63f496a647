// internal/historian/historian_test.go
package historian

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mamathon/triviawager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanQueue chan models.ActionRecord

func (q chanQueue) Pop(ctx context.Context, timeout time.Duration) (*models.ActionRecord, error) {
	select {
	case rec := <-q:
		return &rec, nil
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type memStore struct {
	mu        sync.Mutex
	inserted  []models.ActionRecord
	batches   int
	abandoned []uuid.UUID
	failNext  bool
}

func (m *memStore) InsertActions(_ context.Context, records []models.ActionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return errors.New("db down")
	}
	m.inserted = append(m.inserted, records...)
	m.batches++
	return nil
}

func (m *memStore) MarkAbandoned(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abandoned = append(m.abandoned, id)
	return true, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inserted)
}

func action(lobbyID uuid.UUID, idx int, kind string) models.ActionRecord {
	return models.ActionRecord{LobbyID: lobbyID, ActionIndex: idx, ActionType: kind, Timestamp: time.Now().UnixMilli()}
}

func TestAcceptFlushesFullBatch(t *testing.T) {
	store := &memStore{}
	svc := New(nil, store, Config{BatchSize: 2})
	ctx := context.Background()
	id := uuid.New()

	svc.Accept(ctx, action(id, 1, "join"))
	assert.Equal(t, 0, store.count())
	svc.Accept(ctx, action(id, 2, "ready"))
	assert.Equal(t, 2, store.count())
	assert.Equal(t, 1, store.batches)
}

func TestFailedFlushIsRetried(t *testing.T) {
	store := &memStore{failNext: true}
	svc := New(nil, store, Config{BatchSize: 10})
	ctx := context.Background()
	id := uuid.New()

	svc.Accept(ctx, action(id, 1, "join"))
	svc.Flush(ctx)
	assert.Equal(t, 0, store.count())

	svc.Accept(ctx, action(id, 2, "ready"))
	svc.Flush(ctx)
	require.Equal(t, 2, store.count())
	assert.Equal(t, 1, store.inserted[0].ActionIndex, "failed records keep their place")
}

func TestSweepMarksIdleLobbies(t *testing.T) {
	store := &memStore{}
	svc := New(nil, store, Config{Inactivity: time.Minute})
	ctx := context.Background()
	idle, finished := uuid.New(), uuid.New()

	svc.Accept(ctx, action(idle, 1, "join"))
	svc.Accept(ctx, action(finished, 1, "join"))
	svc.Accept(ctx, action(finished, 2, "game_over"))

	svc.Sweep(ctx, time.Now())
	assert.Empty(t, store.abandoned, "nothing is idle yet")

	svc.Sweep(ctx, time.Now().Add(2*time.Minute))
	assert.Equal(t, []uuid.UUID{idle}, store.abandoned)

	svc.Sweep(ctx, time.Now().Add(3*time.Minute))
	assert.Len(t, store.abandoned, 1, "abandoned lobbies are no longer tracked")
}

func TestRunDrainsQueue(t *testing.T) {
	store := &memStore{}
	queue := make(chanQueue, 8)
	svc := New(queue, store, Config{BatchSize: 100, FlushInterval: 10 * time.Millisecond, PopTimeout: 10 * time.Millisecond})

	id := uuid.New()
	for i := 1; i <= 3; i++ {
		queue <- action(id, i, "guess")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.count() == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("historian did not stop")
	}
}
