// Package replication holds the authority→proxy value mirroring primitives:
// sequenced values with change callbacks and the update record the transport
// carries between peers.
package replication

import "sync"

// RepFunc is invoked after a delivered value has been accepted.
// prev is the locally known value before the delivery.
type RepFunc[T comparable] func(prev, cur T)

// Value wraps a replicated field.
//
// On the authority the field is written with Set, which bumps the sequence
// number on every real change. On a proxy the field is written only with
// Apply, which accepts strictly newer sequence numbers and then runs the
// registered callbacks. Callbacks run synchronously on the delivering
// goroutine, outside the internal lock.
type Value[T comparable] struct {
	mu    sync.RWMutex
	value T
	seq   uint32
	onRep []RepFunc[T]
}

// NewValue creates a value with the given initial content and sequence 0.
func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Get returns the latest locally known value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Seq returns the sequence number of the latest accepted write.
func (v *Value[T]) Seq() uint32 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.seq
}

// Load returns value and sequence number as one consistent pair.
func (v *Value[T]) Load() (T, uint32) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value, v.seq
}

// Set stores an authoritative value.
// Returns the new sequence number and whether the value actually changed;
// an unchanged value keeps its sequence and must not be replicated.
func (v *Value[T]) Set(val T) (uint32, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.value == val {
		return v.seq, false
	}
	v.value = val
	v.seq++
	return v.seq, true
}

// Init overwrites value and sequence without running callbacks.
// Used when a proxy materializes an entity from a snapshot.
func (v *Value[T]) Init(seq uint32, val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = val
	v.seq = seq
}

// Assume stores a value derived locally from other replicated fields.
// The sequence number is untouched, so the next delivered update for this
// field still wins. No callbacks run.
func (v *Value[T]) Assume(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = val
}

// Apply stores a value delivered by the transport.
// Updates with seq <= current sequence are stale or duplicated and are dropped.
// Returns true if the update was accepted.
func (v *Value[T]) Apply(seq uint32, val T) bool {
	v.mu.Lock()
	if seq <= v.seq {
		v.mu.Unlock()
		return false
	}
	prev := v.value
	v.value = val
	v.seq = seq
	callbacks := v.onRep
	v.mu.Unlock()

	for _, fn := range callbacks {
		fn(prev, val)
	}
	return true
}

// OnRep registers a callback run after every accepted delivery.
// Callbacks run in registration order.
func (v *Value[T]) OnRep(fn RepFunc[T]) {
	if fn == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	// copy-on-write: Apply iterates a snapshot without holding the lock
	next := make([]RepFunc[T], len(v.onRep), len(v.onRep)+1)
	copy(next, v.onRep)
	v.onRep = append(next, fn)
}
