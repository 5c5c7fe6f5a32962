// Package proxy is the non-authoritative peer: it connects to the authority
// server, mirrors every entity as a proxy health.Component and forwards local
// mutation requests back to the authority.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/udisondev/healthsync/internal/authority"
	"github.com/udisondev/healthsync/internal/constants"
	"github.com/udisondev/healthsync/internal/crypto"
	"github.com/udisondev/healthsync/internal/gameserver/clientpackets"
	"github.com/udisondev/healthsync/internal/gameserver/serverpackets"
	"github.com/udisondev/healthsync/internal/protocol"
	"github.com/udisondev/healthsync/internal/world"
)

var (
	// ErrProtocolMismatch is returned when the authority speaks another protocol revision.
	ErrProtocolMismatch = errors.New("protocol revision mismatch")

	// ErrUnexpectedPacket is returned when the handshake does not start with KeyPacket.
	ErrUnexpectedPacket = errors.New("unexpected packet")
)

// EntityHook is called from the read loop, before any update for the entity is applied.
type EntityHook func(*world.Entity)

type options struct {
	readTimeout time.Duration
	onSpawn     EntityHook
	onDespawn   EntityHook
}

// Option configures a Client.
type Option func(*options)

// WithReadTimeout drops the connection when the authority is silent for d. 0 disables it.
func WithReadTimeout(d time.Duration) Option {
	return func(o *options) { o.readTimeout = d }
}

// WithSpawnHook registers fn for every mirrored entity (listeners are attached here).
func WithSpawnHook(fn EntityHook) Option {
	return func(o *options) { o.onSpawn = fn }
}

// WithDespawnHook registers fn for every entity dropped by the authority.
func WithDespawnHook(fn EntityHook) Option {
	return func(o *options) { o.onDespawn = fn }
}

// Client is a proxy connection to the authority server.
// It implements authority.Forwarder for the components it creates.
type Client struct {
	conn   net.Conn
	cipher *crypto.FrameCipher
	world  *world.World
	opts   options

	// writeMu сериализует отправку запросов; sendBuf используется только под ним.
	writeMu sync.Mutex
	sendBuf []byte
}

var _ authority.Forwarder = (*Client)(nil)

// Dial connects to the authority at addr and completes the handshake.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing authority %s: %w", addr, err)
	}

	c, err := NewClient(conn, opts...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewClient completes the handshake over an established connection:
// the first frame must be a plaintext KeyPacket of the same protocol revision.
func NewClient(conn net.Conn, opts ...Option) (*Client, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	buf := make([]byte, constants.DefaultReadBufSize)
	data, err := protocol.ReadPlain(conn, buf)
	if err != nil {
		return nil, fmt.Errorf("reading KeyPacket: %w", err)
	}
	if data[0] != serverpackets.OpcodeKeyPacket {
		return nil, fmt.Errorf("%w: 0x%02X before KeyPacket", ErrUnexpectedPacket, data[0])
	}

	kp, err := serverpackets.ParseKeyPacket(data[1:])
	if err != nil {
		return nil, fmt.Errorf("parsing KeyPacket: %w", err)
	}
	if kp.Protocol != constants.ProtocolRevision {
		return nil, fmt.Errorf("%w: authority %d, proxy %d", ErrProtocolMismatch, kp.Protocol, constants.ProtocolRevision)
	}

	cipher, err := crypto.NewFrameCipher(kp.BlowfishKey)
	if err != nil {
		return nil, err
	}

	slog.Info("connected to authority", "address", conn.RemoteAddr(), "protocol", kp.Protocol)
	return &Client{
		conn:    conn,
		cipher:  cipher,
		world:   world.New(),
		opts:    o,
		sendBuf: make([]byte, constants.WriteBufSize),
	}, nil
}

// World returns the mirrored entities.
func (c *Client) World() *world.World {
	return c.world
}

// Entity returns the mirrored entity with the given object ID.
func (c *Client) Entity(objectID uint32) (*world.Entity, bool) {
	return c.world.Get(objectID)
}

// Forward sends a mutation request to the authority. Fire-and-forget:
// the outcome arrives, if at all, as replicated updates.
func (c *Client) Forward(req authority.Request) error {
	payload, err := clientpackets.FromRequest(req)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	copy(c.sendBuf[constants.PacketHeaderSize:], payload)
	if err := protocol.WritePacket(c.conn, c.cipher, c.sendBuf, len(payload)); err != nil {
		return fmt.Errorf("forwarding %s for %d: %w", req.Kind, req.EntityID, err)
	}
	return nil
}

// Close closes the connection; Run returns.
func (c *Client) Close() error {
	return c.conn.Close()
}
