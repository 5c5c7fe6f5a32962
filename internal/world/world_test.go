package world

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/healthsync/internal/constants"
	"github.com/udisondev/healthsync/internal/health"
	"github.com/udisondev/healthsync/internal/model"
)

func newEntity(t *testing.T, id uint32, name string) *Entity {
	t.Helper()
	h, err := health.New(model.NewEntityRef(id, name), 100, nil)
	require.NoError(t, err)
	return NewEntity(h)
}

func TestWorld_AddGetRemove(t *testing.T) {
	w := New()
	e := newEntity(t, 0x10000001, "Goblin")

	require.NoError(t, w.Add(e))
	assert.Equal(t, 1, w.Len())

	got, ok := w.Get(0x10000001)
	require.True(t, ok)
	assert.Same(t, e, got)
	assert.Equal(t, "Goblin", got.Name())

	removed, ok := w.Remove(0x10000001)
	require.True(t, ok)
	assert.Same(t, e, removed)
	assert.Zero(t, w.Len())

	_, ok = w.Remove(0x10000001)
	assert.False(t, ok, "second remove")
	_, ok = w.Get(0x10000001)
	assert.False(t, ok)
}

func TestWorld_AddDuplicate(t *testing.T) {
	w := New()
	require.NoError(t, w.Add(newEntity(t, 7, "a")))

	err := w.Add(newEntity(t, 7, "b"))
	assert.ErrorIs(t, err, ErrDuplicateEntity)
	assert.Equal(t, 1, w.Len())

	got, _ := w.Get(7)
	assert.Equal(t, "a", got.Name(), "first registration wins")
}

func TestWorld_EntitiesSorted(t *testing.T) {
	w := New()
	for _, id := range []uint32{30, 10, 20} {
		require.NoError(t, w.Add(newEntity(t, id, "e")))
	}

	var ids []uint32
	for _, e := range w.Entities() {
		ids = append(ids, e.ObjectID())
	}
	assert.Equal(t, []uint32{10, 20, 30}, ids)
}

func TestWorld_ForEachStops(t *testing.T) {
	w := New()
	for id := range uint32(5) {
		require.NoError(t, w.Add(newEntity(t, id+1, "e")))
	}

	visited := 0
	w.ForEach(func(*Entity) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}

func TestWorld_TickKeepsState(t *testing.T) {
	w := New()
	e := newEntity(t, 1, "e")
	require.NoError(t, w.Add(e))
	e.Health().DecreaseHealthValue(40)

	w.Tick(50 * time.Millisecond)

	assert.Equal(t, 60.0, e.Health().Health(), "tick never regenerates")
}

func TestObjectIDGenerator(t *testing.T) {
	gen := NewObjectIDGenerator()
	assert.Equal(t, uint32(constants.ObjectIDStart), gen.Next())
	assert.Equal(t, uint32(constants.ObjectIDStart+1), gen.Next())
}

func TestObjectIDGenerator_Concurrent(t *testing.T) {
	gen := NewObjectIDGenerator()

	const workers, perWorker = 8, 500
	ids := make(chan uint32, workers*perWorker)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				ids <- gen.Next()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint32]struct{}, workers*perWorker)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %#x", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}
