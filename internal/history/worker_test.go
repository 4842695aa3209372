package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestWorkerAppendsEntries(t *testing.T) {
	store := NewMemory()
	w := NewWorker(store, WithLogger(discardLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	e := Entry{UserID: uuid.New(), ProgramID: uuid.New(), MatchScore: 92, Action: ActionGenerated}
	w.Record(e)

	waitFor(t, func() bool { return len(store.Entries()) == 1 })

	got := store.Entries()[0]
	assert.Equal(t, e.UserID, got.UserID)
	assert.Equal(t, 92, got.MatchScore)
	assert.NotEqual(t, uuid.Nil, got.ID, "worker assigns ids")
	assert.False(t, got.CreatedAt.IsZero(), "worker stamps creation time")

	cancel()
	w.Wait()
}

func TestWorkerDrainsOnShutdown(t *testing.T) {
	store := NewMemory()
	w := NewWorker(store, WithLogger(discardLogger()), WithBuffer(16))

	// Enqueue before Run so everything sits in the inbox, then shut down
	// immediately: the queued entries must still land in the store.
	for i := 0; i < 10; i++ {
		w.Record(Entry{UserID: uuid.New(), ProgramID: uuid.New(), Action: ActionViewed})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	go w.Run(ctx)
	w.Wait()

	assert.Len(t, store.Entries(), 10)
}

func TestWorkerDropsWhenInboxFull(t *testing.T) {
	store := NewMemory()
	w := NewWorker(store, WithLogger(discardLogger()), WithBuffer(2))

	// No Run loop: the third record has nowhere to go and must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			w.Record(Entry{UserID: uuid.New(), Action: ActionBookmarked})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full inbox")
	}
}

type publisherStub struct {
	mu        sync.Mutex
	published []Entry
	err       error
}

func (p *publisherStub) Publish(_ context.Context, e Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, e)
	return nil
}

func (p *publisherStub) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func TestWorkerMirrorsToPublisher(t *testing.T) {
	store := NewMemory()
	pub := &publisherStub{}
	w := NewWorker(store, WithLogger(discardLogger()), WithPublisher(pub))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	w.Record(Entry{UserID: uuid.New(), Action: ActionGenerated})
	waitFor(t, func() bool { return pub.count() == 1 })

	cancel()
	w.Wait()
}

func TestWorkerPublishFailureStillStores(t *testing.T) {
	store := NewMemory()
	pub := &publisherStub{err: errors.New("broker gone")}
	w := NewWorker(store, WithLogger(discardLogger()), WithPublisher(pub))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	w.Record(Entry{UserID: uuid.New(), Action: ActionGenerated})
	waitFor(t, func() bool { return len(store.Entries()) == 1 })
	require.Equal(t, 0, pub.count())

	cancel()
	w.Wait()
}
