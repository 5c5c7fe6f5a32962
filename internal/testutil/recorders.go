package testutil

import (
	"sync"

	"github.com/udisondev/healthsync/internal/authority"
	"github.com/udisondev/healthsync/internal/model"
	"github.com/udisondev/healthsync/internal/replication"
)

// RecordingPublisher collects replication updates.
type RecordingPublisher struct {
	mu      sync.Mutex
	updates []replication.Update
}

// Publish implements replication.Publisher.
func (p *RecordingPublisher) Publish(u replication.Update) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, u)
}

// Updates returns a copy of the collected updates.
func (p *RecordingPublisher) Updates() []replication.Update {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]replication.Update(nil), p.updates...)
}

// Reset drops collected updates.
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = nil
}

// RecordingForwarder collects forwarded requests and returns Err for each.
type RecordingForwarder struct {
	mu       sync.Mutex
	requests []authority.Request
	Err      error
}

// Forward implements authority.Forwarder.
func (f *RecordingForwarder) Forward(req authority.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.Err
}

// Requests returns a copy of the forwarded requests.
func (f *RecordingForwarder) Requests() []authority.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]authority.Request(nil), f.requests...)
}

// SignalRecorder counts entity signals (OnDeath, OnRevive).
type SignalRecorder struct {
	mu       sync.Mutex
	entities []model.EntityRef
}

// Record is a health.Listener.
func (r *SignalRecorder) Record(entity model.EntityRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = append(r.entities, entity)
}

// Count returns how many signals were recorded.
func (r *SignalRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entities)
}

// Entities returns a copy of the recorded payloads.
func (r *SignalRecorder) Entities() []model.EntityRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.EntityRef(nil), r.entities...)
}
