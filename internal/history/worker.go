package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Recorder is what the recommendation service depends on: fire-and-forget
// history recording that can never fail the caller.
type Recorder interface {
	Record(e Entry)
}

// Publisher mirrors entries to an external stream (Kafka) for analytics.
// Optional; a nil publisher disables mirroring.
type Publisher interface {
	Publish(ctx context.Context, e Entry) error
}

// Worker drains history entries from a buffered inbox into the store and the
// optional publisher. Store and publish errors are logged and dropped; when
// the inbox is full, new entries are dropped rather than blocking a refresh.
type Worker struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	inbox     chan Entry
	done      chan struct{}
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithPublisher mirrors entries to the given publisher.
func WithPublisher(p Publisher) WorkerOption {
	return func(w *Worker) { w.publisher = p }
}

// WithLogger sets the worker logger.
func WithLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) { w.logger = logger }
}

// WithBuffer sets the inbox capacity (default 256).
func WithBuffer(n int) WorkerOption {
	return func(w *Worker) { w.inbox = make(chan Entry, n) }
}

// NewWorker builds a Worker around the given store.
func NewWorker(store Store, opts ...WorkerOption) *Worker {
	w := &Worker{
		store:  store,
		logger: slog.Default(),
		inbox:  make(chan Entry, 256),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Record enqueues an entry, filling in ID and CreatedAt when unset. Never
// blocks: a full inbox drops the entry with a warning.
func (w *Worker) Record(e Entry) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	select {
	case w.inbox <- e:
	default:
		w.logger.Warn("history inbox full, dropping entry",
			"user_id", e.UserID, "action", e.Action)
	}
}

// Run drains the inbox until ctx is cancelled, then flushes what is queued.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case e := <-w.inbox:
			w.handle(ctx, e)
		}
	}
}

// Wait blocks until Run has returned.
func (w *Worker) Wait() {
	<-w.done
}

func (w *Worker) drain() {
	// Bounded flush with a fresh context; the run context is already gone.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case e := <-w.inbox:
			w.handle(ctx, e)
		default:
			return
		}
	}
}

func (w *Worker) handle(ctx context.Context, e Entry) {
	if err := w.store.Append(ctx, e); err != nil {
		w.logger.Error("history append failed",
			"user_id", e.UserID, "program_id", e.ProgramID,
			"action", e.Action, "error", err.Error())
	}
	if w.publisher == nil {
		return
	}
	if err := w.publisher.Publish(ctx, e); err != nil {
		w.logger.Warn("history publish failed",
			"user_id", e.UserID, "action", e.Action, "error", err.Error())
	}
}
