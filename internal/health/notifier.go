package health

import (
	"sync"

	"github.com/udisondev/healthsync/internal/model"
)

// ListenerID identifies a registered listener for removal.
type ListenerID uint64

// Listener receives the identity of the entity the signal is about.
type Listener func(entity model.EntityRef)

type listenerEntry struct {
	id ListenerID
	fn Listener
}

// Notifier is a multicast entity signal (OnDeath, OnRevive).
// Listeners are invoked in registration order. Broadcast works on a snapshot,
// so listeners added or removed during a broadcast take effect on the next one.
type Notifier struct {
	mu        sync.RWMutex
	nextID    ListenerID
	listeners []listenerEntry
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Add registers fn and returns its ID. A nil fn is ignored and returns 0.
func (n *Notifier) Add(fn Listener) ListenerID {
	if fn == nil {
		return 0
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	next := make([]listenerEntry, len(n.listeners), len(n.listeners)+1)
	copy(next, n.listeners)
	n.listeners = append(next, listenerEntry{id: n.nextID, fn: fn})
	return n.nextID
}

// Remove unregisters the listener. Returns false if id is unknown.
func (n *Notifier) Remove(id ListenerID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, e := range n.listeners {
		if e.id != id {
			continue
		}
		next := make([]listenerEntry, 0, len(n.listeners)-1)
		next = append(next, n.listeners[:i]...)
		next = append(next, n.listeners[i+1:]...)
		n.listeners = next
		return true
	}
	return false
}

// Clear removes all listeners (entity destroyed).
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = nil
}

// Len returns the number of registered listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast invokes every listener with entity.
func (n *Notifier) Broadcast(entity model.EntityRef) {
	n.mu.RLock()
	snapshot := n.listeners
	n.mu.RUnlock()

	for _, e := range snapshot {
		e.fn(entity)
	}
}
