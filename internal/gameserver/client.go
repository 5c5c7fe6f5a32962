package gameserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/healthsync/internal/crypto"
)

// Default write queue / timeout constants.
// Overridden by config values when available.
const (
	defaultSendQueueSize = 256
	defaultWriteTimeout  = 5 * time.Second
)

var (
	// ErrSendQueueFull is returned by Send when the client cannot keep up.
	ErrSendQueueFull = errors.New("send queue full")

	// ErrClientClosed is returned when sending to a closed client.
	ErrClientClosed = errors.New("client closed")
)

// GameClient represents a single proxy connection to the authority server.
type GameClient struct {
	conn      net.Conn
	ip        string
	sessionID uuid.UUID
	cipher    *crypto.FrameCipher

	// state использует atomic.Int32 для lock-free reads в hot path
	state atomic.Int32

	// Per-client write queue: encrypted frames drained by writePump.
	sendCh    chan []byte // buffered channel with encrypted packets (pool-backed)
	closeCh   chan struct{}
	closeOnce sync.Once

	writePool    *BytePool     // shared pool for returning buffers after write
	writeTimeout time.Duration // per-write deadline
}

// NewGameClient creates a new client state for the given connection.
func NewGameClient(conn net.Conn, blowfishKey []byte, writePool *BytePool, sendQueueSize int, writeTimeout time.Duration) (*GameClient, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return nil, fmt.Errorf("splitting host port: %w", err)
	}

	cipher, err := crypto.NewFrameCipher(blowfishKey)
	if err != nil {
		return nil, fmt.Errorf("creating client cipher: %w", err)
	}

	if sendQueueSize <= 0 {
		sendQueueSize = defaultSendQueueSize
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	client := &GameClient{
		conn:         conn,
		ip:           host,
		sessionID:    uuid.New(),
		cipher:       cipher,
		sendCh:       make(chan []byte, sendQueueSize),
		closeCh:      make(chan struct{}),
		writePool:    writePool,
		writeTimeout: writeTimeout,
	}
	client.state.Store(int32(ClientStateConnected))
	return client, nil
}

// Conn returns the underlying network connection.
func (c *GameClient) Conn() net.Conn {
	return c.conn
}

// IP returns the client's remote IP address.
func (c *GameClient) IP() string {
	return c.ip
}

// SessionID returns the session ID assigned to this client.
func (c *GameClient) SessionID() uuid.UUID {
	return c.sessionID
}

// Cipher returns the frame cipher keyed with this client's session key.
func (c *GameClient) Cipher() *crypto.FrameCipher {
	return c.cipher
}

// State returns the current connection state.
func (c *GameClient) State() ClientConnectionState {
	return ClientConnectionState(c.state.Load())
}

// SetState sets the connection state.
func (c *GameClient) SetState(s ClientConnectionState) {
	c.state.Store(int32(s))
}

// writePump is a dedicated writer goroutine for this client.
// Reads encrypted packets from sendCh and writes them to conn.
// Uses net.Buffers (writev syscall) for batching and pool.Put for buffer return.
func (c *GameClient) writePump() {
	bufs := make(net.Buffers, 0, 64)
	poolBufs := make([][]byte, 0, 64)

	defer func() {
		// Drain remaining packets and return to pool
		for {
			select {
			case pkt := <-c.sendCh:
				c.release(pkt)
			default:
				return
			}
		}
	}()

	for {
		select {
		case pkt := <-c.sendCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				slog.Warn("set write deadline failed", "client", c.ip, "session", c.sessionID, "error", err)
				c.release(pkt)
				return
			}

			queued := len(c.sendCh)
			if queued == 0 {
				_, err := c.conn.Write(pkt)
				c.release(pkt)
				if err != nil {
					slog.Warn("write failed", "client", c.ip, "session", c.sessionID, "error", err)
					c.CloseAsync()
					return
				}
				continue
			}

			// Несколько пакетов в очереди: один writev.
			bufs = bufs[:0]
			poolBufs = poolBufs[:0]

			bufs = append(bufs, pkt)
			poolBufs = append(poolBufs, pkt)
			for range queued {
				p := <-c.sendCh
				bufs = append(bufs, p)
				poolBufs = append(poolBufs, p)
			}

			_, err := bufs.WriteTo(c.conn)

			// ALWAYS return buffers to pool (even on error)
			for _, b := range poolBufs {
				c.release(b)
			}

			if err != nil {
				slog.Warn("batch write failed", "client", c.ip, "session", c.sessionID, "error", err)
				c.CloseAsync()
				return
			}

		case <-c.closeCh:
			return
		}
	}
}

// Send queues an encrypted packet for async delivery.
// Non-blocking: a full queue disconnects the slow client.
// OWNERSHIP: takes ownership of encryptedPkt (pool buffer). writePump will return it to pool.
func (c *GameClient) Send(encryptedPkt []byte) error {
	select {
	case <-c.closeCh:
		c.release(encryptedPkt)
		return ErrClientClosed
	default:
	}

	select {
	case c.sendCh <- encryptedPkt:
		return nil
	default:
		c.release(encryptedPkt)
		slog.Warn("send queue full, disconnecting slow client", "client", c.ip, "session", c.sessionID)
		c.CloseAsync()
		return ErrSendQueueFull
	}
}

// SendPayload encrypts payload with the client's key and queues it.
func (c *GameClient) SendPayload(payload []byte) error {
	pool := c.writePool
	if pool == nil {
		pool = NewBytePool(len(payload) + 32)
	}
	pkt, err := pool.EncryptToPooled(c.cipher, payload, len(payload))
	if err != nil {
		return fmt.Errorf("encrypting for %s: %w", c.sessionID, err)
	}
	return c.Send(pkt)
}

// CloseAsync signals the writePump to stop without blocking.
// Safe to call multiple times.
func (c *GameClient) CloseAsync() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(ClientStateDisconnected))
		close(c.closeCh)
	})
}

// Close closes the connection and stops the writePump.
func (c *GameClient) Close() error {
	c.CloseAsync()
	return c.conn.Close()
}

func (c *GameClient) release(pkt []byte) {
	if c.writePool != nil {
		c.writePool.Put(pkt)
	}
}
