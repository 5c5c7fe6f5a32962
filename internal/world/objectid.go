package world

import (
	"sync/atomic"

	"github.com/udisondev/healthsync/internal/constants"
)

// ObjectIDGenerator generates unique entity object IDs on the authority.
// Proxies never generate IDs, they take them from spawn packets.
type ObjectIDGenerator struct {
	next atomic.Uint32
}

// NewObjectIDGenerator creates a generator whose first ID is constants.ObjectIDStart.
func NewObjectIDGenerator() *ObjectIDGenerator {
	gen := &ObjectIDGenerator{}
	gen.next.Store(constants.ObjectIDStart - 1)
	return gen
}

// Next returns the next unique ID. Thread-safe via atomic increment.
func (g *ObjectIDGenerator) Next() uint32 {
	return g.next.Add(1)
}
