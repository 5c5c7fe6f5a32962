package gameserver

import (
	"testing"

	"github.com/udisondev/healthsync/internal/testutil"
)

func newMockClient(t *testing.T, pool *BytePool, queueSize int) (*GameClient, *testutil.MockConn) {
	t.Helper()

	conn := testutil.NewMockConn()
	client, err := NewGameClient(conn, testKey, pool, queueSize, 0)
	if err != nil {
		t.Fatalf("NewGameClient: %v", err)
	}
	return client, conn
}

func TestNewGameClient(t *testing.T) {
	client, _ := newMockClient(t, nil, 0)

	if client.IP() != "192.168.1.100" {
		t.Errorf("IP() = %q, want 192.168.1.100", client.IP())
	}
	if client.State() != ClientStateConnected {
		t.Errorf("State() = %v, want CONNECTED", client.State())
	}
	if cap(client.sendCh) != defaultSendQueueSize {
		t.Errorf("send queue capacity = %d, want %d", cap(client.sendCh), defaultSendQueueSize)
	}

	other, _ := newMockClient(t, nil, 0)
	if client.SessionID() == other.SessionID() {
		t.Error("two clients share a session ID")
	}
}

func TestNewGameClient_BadKey(t *testing.T) {
	if _, err := NewGameClient(testutil.NewMockConn(), nil, nil, 0, 0); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestClientManager_Register_Unregister(t *testing.T) {
	cm := NewClientManager()
	if cm.Count() != 0 {
		t.Errorf("Initial Count() = %d, want 0", cm.Count())
	}

	client1, _ := newMockClient(t, nil, 0)
	client2, _ := newMockClient(t, nil, 0)

	cm.Register(client1)
	cm.Register(client2)
	if cm.Count() != 2 {
		t.Errorf("After register, Count() = %d, want 2", cm.Count())
	}

	if got := cm.GetClient(client1.SessionID()); got != client1 {
		t.Error("GetClient returned wrong client")
	}

	cm.Unregister(client1.SessionID())
	if cm.Count() != 1 {
		t.Errorf("After unregister, Count() = %d, want 1", cm.Count())
	}
	if got := cm.GetClient(client1.SessionID()); got != nil {
		t.Error("unregistered client still returned")
	}

	// Unregistering twice is harmless
	cm.Unregister(client1.SessionID())
	if cm.Count() != 1 {
		t.Errorf("Count() = %d, want 1", cm.Count())
	}
}

func TestClientManager_ForEachClient(t *testing.T) {
	cm := NewClientManager()
	for range 3 {
		c, _ := newMockClient(t, nil, 0)
		cm.Register(c)
	}

	count := 0
	cm.ForEachClient(func(*GameClient) bool {
		count++
		return true
	})
	if count != 3 {
		t.Errorf("ForEachClient visited %d clients, want 3", count)
	}

	count = 0
	cm.ForEachClient(func(*GameClient) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("ForEachClient with early stop visited %d clients, want 1", count)
	}
}

func TestClientConnectionState_String(t *testing.T) {
	tests := []struct {
		state ClientConnectionState
		want  string
	}{
		{ClientStateConnected, "CONNECTED"},
		{ClientStateInWorld, "IN_WORLD"},
		{ClientStateDisconnected, "DISCONNECTED"},
		{ClientConnectionState(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
