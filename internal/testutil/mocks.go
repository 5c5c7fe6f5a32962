package testutil

import (
	"net"
	"sync"
	"time"
)

// MockConn: mock для net.Conn, используется в unit тестах.
// Write копит данные, Read отдаёт заранее заданный буфер.
type MockConn struct {
	mu         sync.Mutex
	readBuf    []byte
	writeBuf   []byte
	writeCount int
	closed     bool
}

// NewMockConn создаёт новый MockConn экземпляр.
func NewMockConn() *MockConn {
	return &MockConn{}
}

// Feed добавляет данные, которые вернёт Read.
func (m *MockConn) Feed(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readBuf = append(m.readBuf, b...)
}

// Read читает данные из readBuf.
func (m *MockConn) Read(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := copy(b, m.readBuf)
	m.readBuf = m.readBuf[n:]
	return n, nil
}

// Write записывает данные в writeBuf.
func (m *MockConn) Write(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, net.ErrClosed
	}
	m.writeBuf = append(m.writeBuf, b...)
	m.writeCount++
	return len(b), nil
}

// Written returns a copy of everything written so far.
func (m *MockConn) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.writeBuf...)
}

// WriteCount returns the number of Write() calls since creation.
func (m *MockConn) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeCount
}

// Close помечает соединение закрытым.
func (m *MockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// LocalAddr возвращает локальный адрес (mock).
func (m *MockConn) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 7777}
}

// RemoteAddr возвращает удалённый адрес (mock).
func (m *MockConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(192, 168, 1, 100), Port: 12345}
}

// SetDeadline устанавливает deadline (no-op).
func (m *MockConn) SetDeadline(time.Time) error { return nil }

// SetReadDeadline устанавливает read deadline (no-op).
func (m *MockConn) SetReadDeadline(time.Time) error { return nil }

// SetWriteDeadline устанавливает write deadline (no-op).
func (m *MockConn) SetWriteDeadline(time.Time) error { return nil }
