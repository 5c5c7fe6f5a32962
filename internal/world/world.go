package world

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/healthsync/internal/health"
	"github.com/udisondev/healthsync/internal/model"
)

// ErrDuplicateEntity is returned by Add when the object ID is already registered.
var ErrDuplicateEntity = errors.New("entity already registered")

// Entity: объект мира: идентичность плюс компонент здоровья.
type Entity struct {
	ref    model.EntityRef
	health *health.Component
}

// NewEntity binds a health component to its owner.
func NewEntity(h *health.Component) *Entity {
	return &Entity{ref: h.Owner(), health: h}
}

// Ref returns the entity handle.
func (e *Entity) Ref() model.EntityRef { return e.ref }

// ObjectID returns the entity object ID (immutable).
func (e *Entity) ObjectID() uint32 { return e.ref.ObjectID }

// Name returns the entity name.
func (e *Entity) Name() string { return e.ref.Name }

// Health returns the health component.
func (e *Entity) Health() *health.Component { return e.health }

// World is the registry of entities hosted by one peer.
// Authority and proxies each keep their own World.
type World struct {
	objects sync.Map // map[uint32]*Entity, objectID → entity
	count   atomic.Int32
}

// New creates an empty world.
func New() *World {
	return &World{}
}

// Add registers entity. Returns ErrDuplicateEntity if the ID is taken.
func (w *World) Add(e *Entity) error {
	if e == nil {
		return errors.New("adding nil entity")
	}
	if _, loaded := w.objects.LoadOrStore(e.ObjectID(), e); loaded {
		return fmt.Errorf("adding %s: %w", e.Ref(), ErrDuplicateEntity)
	}
	w.count.Add(1)
	return nil
}

// Remove unregisters entity by ID and returns it.
func (w *World) Remove(objectID uint32) (*Entity, bool) {
	value, ok := w.objects.LoadAndDelete(objectID)
	if !ok {
		return nil, false
	}
	w.count.Add(-1)
	return value.(*Entity), true
}

// Get returns entity by ID.
func (w *World) Get(objectID uint32) (*Entity, bool) {
	value, ok := w.objects.Load(objectID)
	if !ok {
		return nil, false
	}
	return value.(*Entity), true
}

// Len returns the number of registered entities.
func (w *World) Len() int {
	return int(w.count.Load())
}

// ForEach calls fn for every entity until fn returns false.
// Order is unspecified; use Entities for a stable order.
func (w *World) ForEach(fn func(*Entity) bool) {
	w.objects.Range(func(_, value any) bool {
		return fn(value.(*Entity))
	})
}

// Entities returns all entities sorted by object ID.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, w.Len())
	w.ForEach(func(e *Entity) bool {
		out = append(out, e)
		return true
	})
	slices.SortFunc(out, func(a, b *Entity) int {
		return cmp.Compare(a.ObjectID(), b.ObjectID())
	})
	return out
}

// Tick advances every entity by dt.
func (w *World) Tick(dt time.Duration) {
	w.ForEach(func(e *Entity) bool {
		e.health.Tick(dt)
		return true
	})
}
