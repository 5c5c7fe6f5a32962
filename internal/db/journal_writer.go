package db

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/udisondev/healthsync/internal/model"
)

const (
	defaultJournalQueueSize = 1024
	journalBatchSize        = 64
	journalWriteTimeout     = 3 * time.Second
)

// JournalStore persists journal batches. Implemented by DeathJournalRepository.
type JournalStore interface {
	InsertBatch(ctx context.Context, entries []JournalEntry) error
}

// JournalWriter records life-cycle events asynchronously.
// Record never blocks: the game loop hands entries to a bounded queue drained
// by Run; overflow is logged and dropped.
type JournalWriter struct {
	store   JournalStore
	queue   chan JournalEntry
	dropped atomic.Uint64
	now     func() time.Time
}

// NewJournalWriter creates a writer with a queue of queueSize entries.
func NewJournalWriter(store JournalStore, queueSize int) *JournalWriter {
	if queueSize <= 0 {
		queueSize = defaultJournalQueueSize
	}
	return &JournalWriter{
		store: store,
		queue: make(chan JournalEntry, queueSize),
		now:   time.Now,
	}
}

// Record queues an event for entity.
func (w *JournalWriter) Record(entity model.EntityRef, event model.LifeEvent, health float64) {
	e := JournalEntry{
		EntityID:   entity.ObjectID,
		EntityName: entity.Name,
		Event:      event,
		Health:     health,
		OccurredAt: w.now(),
	}

	select {
	case w.queue <- e:
	default:
		n := w.dropped.Add(1)
		slog.Warn("death journal queue full, entry dropped", "entity", entity, "event", event, "dropped_total", n)
	}
}

// Dropped returns how many entries were lost to overflow.
func (w *JournalWriter) Dropped() uint64 {
	return w.dropped.Load()
}

// Run drains the queue in batches until ctx is cancelled, then flushes what
// is left. Store errors are logged; the batch is lost.
func (w *JournalWriter) Run(ctx context.Context) error {
	batch := make([]JournalEntry, 0, journalBatchSize)

	for {
		select {
		case <-ctx.Done():
			w.flushRemaining(batch)
			return nil
		case e := <-w.queue:
			batch = append(batch[:0], e)
			batch = w.drain(batch)
			w.write(context.WithoutCancel(ctx), batch)
		}
	}
}

// drain appends queued entries without blocking, up to journalBatchSize.
func (w *JournalWriter) drain(batch []JournalEntry) []JournalEntry {
	for len(batch) < journalBatchSize {
		select {
		case e := <-w.queue:
			batch = append(batch, e)
		default:
			return batch
		}
	}
	return batch
}

func (w *JournalWriter) flushRemaining(batch []JournalEntry) {
	for {
		batch = w.drain(batch[:0])
		if len(batch) == 0 {
			return
		}
		w.write(context.Background(), batch)
	}
}

func (w *JournalWriter) write(ctx context.Context, batch []JournalEntry) {
	ctx, cancel := context.WithTimeout(ctx, journalWriteTimeout)
	defer cancel()

	if err := w.store.InsertBatch(ctx, batch); err != nil {
		slog.Error("writing death journal", "entries", len(batch), "error", err)
		return
	}
	slog.Debug("death journal written", "entries", len(batch))
}
