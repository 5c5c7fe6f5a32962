package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/healthsync/internal/constants"
	"github.com/udisondev/healthsync/internal/model"
)

type memStore struct {
	mu      sync.Mutex
	entries []JournalEntry
	batches int
	err     error
}

func (s *memStore) InsertBatch(_ context.Context, entries []JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches++
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *memStore) Entries() []JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]JournalEntry(nil), s.entries...)
}

var (
	orc  = model.NewEntityRef(0x10000001, "Orc")
	wolf = model.NewEntityRef(0x10000002, "Wolf")
)

func fixedClock(w *JournalWriter) time.Time {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return at }
	return at
}

func TestJournalWriter_RecordAndRun(t *testing.T) {
	store := &memStore{}
	w := NewJournalWriter(store, 8)
	at := fixedClock(w)

	w.Record(orc, model.LifeEventDeath, 0)
	w.Record(orc, model.LifeEventRevive, 50)
	w.Record(wolf, model.LifeEventDeath, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(store.Entries()) == 3 },
		constants.TestEventuallyWait, constants.TestEventuallyTick)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []JournalEntry{
		{EntityID: orc.ObjectID, EntityName: "Orc", Event: model.LifeEventDeath, Health: 0, OccurredAt: at},
		{EntityID: orc.ObjectID, EntityName: "Orc", Event: model.LifeEventRevive, Health: 50, OccurredAt: at},
		{EntityID: wolf.ObjectID, EntityName: "Wolf", Event: model.LifeEventDeath, Health: 0, OccurredAt: at},
	}, store.Entries())
}

func TestJournalWriter_OverflowDrops(t *testing.T) {
	store := &memStore{}
	w := NewJournalWriter(store, 2)

	for range 5 {
		w.Record(orc, model.LifeEventDeath, 0)
	}

	assert.Equal(t, uint64(3), w.Dropped())
	assert.Len(t, w.queue, 2)
}

func TestJournalWriter_FlushOnShutdown(t *testing.T) {
	store := &memStore{}
	w := NewJournalWriter(store, 200)

	for range 150 {
		w.Record(wolf, model.LifeEventDeath, 0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))

	// Run may have picked a batch before noticing cancellation; either way nothing is lost.
	assert.Len(t, store.Entries(), 150)
	assert.Empty(t, w.queue)
}

func TestJournalWriter_StoreErrorIsNotFatal(t *testing.T) {
	store := &memStore{err: errors.New("connection refused")}
	w := NewJournalWriter(store, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	w.Record(orc, model.LifeEventDeath, 0)
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.batches > 0
	}, constants.TestEventuallyWait, constants.TestEventuallyTick)

	cancel()
	assert.NoError(t, <-done)
	assert.Empty(t, store.Entries())
}

func TestNewJournalWriter_DefaultQueue(t *testing.T) {
	w := NewJournalWriter(&memStore{}, 0)
	assert.Equal(t, defaultJournalQueueSize, cap(w.queue))
}
