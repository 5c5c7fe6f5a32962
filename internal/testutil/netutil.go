package testutil

import (
	"context"
	"net"
	"testing"
	"time"
)

// ContextWithTimeout создаёт context с timeout и отменяет его при завершении теста.
func ContextWithTimeout(t testing.TB, d time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

// PipeConn создаёт пару net.Conn через net.Pipe и закрывает их при завершении теста.
func PipeConn(t testing.TB) (client, server net.Conn) {
	t.Helper()

	server, client = net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})
	return client, server
}

// ListenTCP создаёт TCP listener на случайном порту.
// Возвращает listener и адрес "host:port"; listener закрывается при завершении теста.
func ListenTCP(t testing.TB) (net.Listener, string) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create TCP listener: %v", err)
	}
	t.Cleanup(func() {
		_ = listener.Close()
	})
	return listener, listener.Addr().String()
}
