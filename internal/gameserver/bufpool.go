package gameserver

import (
	"sync"

	"github.com/udisondev/healthsync/internal/constants"
	"github.com/udisondev/healthsync/internal/crypto"
	"github.com/udisondev/healthsync/internal/protocol"
)

// BytePool is a pool of reusable []byte buffers.
// Reduces GC pressure by reusing allocations.
type BytePool struct {
	pool sync.Pool
}

// NewBytePool creates a buffer pool with the specified default capacity for new slices.
func NewBytePool(defaultCap int) *BytePool {
	p := &BytePool{}
	p.pool.New = func() any {
		return make([]byte, 0, defaultCap)
	}
	return p
}

// Get returns a slice of length size, preferably from the pool.
func (p *BytePool) Get(size int) []byte {
	b := p.pool.Get().([]byte)
	if cap(b) < size {
		p.pool.Put(b)
		return make([]byte, size)
	}
	b = b[:size]
	clear(b)
	return b
}

// Put returns the slice to the pool for reuse.
func (p *BytePool) Put(b []byte) {
	if b == nil {
		return
	}
	p.pool.Put(b[:0])
}

// EncryptToPooled copies payload[:n] into a pooled buffer, encrypts it with enc
// and returns the complete frame (header included).
// The payload itself is left untouched, so one payload can be encrypted for
// many clients. OWNERSHIP: the caller owns the returned buffer (Put or Send it).
func (p *BytePool) EncryptToPooled(enc *crypto.FrameCipher, payload []byte, n int) ([]byte, error) {
	buf := p.Get(constants.PacketHeaderSize + n + constants.PacketBufferPadding)
	copy(buf[constants.PacketHeaderSize:], payload[:n])

	total, err := protocol.EncryptInPlace(enc, buf, n)
	if err != nil {
		p.Put(buf)
		return nil, err
	}
	return buf[:total], nil
}
