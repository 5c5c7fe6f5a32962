package gameserver

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/healthsync/internal/constants"
	"github.com/udisondev/healthsync/internal/gameserver/serverpackets"
	"github.com/udisondev/healthsync/internal/protocol"
	"github.com/udisondev/healthsync/internal/replication"
	"github.com/udisondev/healthsync/internal/testutil"
)

func TestClientManager_BroadcastToAll(t *testing.T) {
	cm := NewClientManager()
	pool := NewBytePool(128)
	cm.SetWritePool(pool)

	var clients []*GameClient
	for range 5 {
		client, _ := newMockClient(t, pool, 16)
		client.SetState(ClientStateInWorld)
		cm.Register(client)
		clients = append(clients, client)
	}

	payload := []byte{0x01, 0x02, 0x03}
	if sent := cm.BroadcastToAll(payload); sent != 5 {
		t.Errorf("BroadcastToAll sent to %d clients, want 5", sent)
	}
	for i, c := range clients {
		if len(c.sendCh) != 1 {
			t.Errorf("client %d queue length = %d, want 1", i, len(c.sendCh))
		}
	}
	if !bytes.Equal(payload, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("payload modified: %v", payload)
	}
}

func TestClientManager_BroadcastToAll_SkipsJoining(t *testing.T) {
	cm := NewClientManager()
	pool := NewBytePool(128)
	cm.SetWritePool(pool)

	for i := range 5 {
		client, _ := newMockClient(t, pool, 16)
		if i < 3 {
			client.SetState(ClientStateInWorld)
		}
		cm.Register(client)
	}

	if sent := cm.BroadcastToAll([]byte{0x01}); sent != 3 {
		t.Errorf("BroadcastToAll sent to %d clients, want 3", sent)
	}
}

func TestClientManager_BroadcastToAll_SlowClientDisconnected(t *testing.T) {
	cm := NewClientManager()
	pool := NewBytePool(128)
	cm.SetWritePool(pool)

	slow, _ := newMockClient(t, pool, 1)
	slow.SetState(ClientStateInWorld)
	cm.Register(slow)

	if sent := cm.BroadcastToAll([]byte{0x01}); sent != 1 {
		t.Fatalf("first broadcast sent to %d, want 1", sent)
	}
	if sent := cm.BroadcastToAll([]byte{0x02}); sent != 0 {
		t.Errorf("second broadcast sent to %d, want 0", sent)
	}
	if slow.State() != ClientStateDisconnected {
		t.Errorf("slow client state = %v, want DISCONNECTED", slow.State())
	}
}

func TestReplicator_PublishQueuesFieldUpdate(t *testing.T) {
	cm := NewClientManager()
	pool := NewBytePool(128)
	cm.SetWritePool(pool)

	client, conn := newMockClient(t, pool, 16)
	client.SetState(ClientStateInWorld)
	cm.Register(client)

	go client.writePump()
	defer client.CloseAsync()

	u := replication.Update{
		EntityID: 0x10000001,
		Field:    replication.FieldHealth,
		Seq:      3,
		Value:    42.5,
		HasLife:  true,
		Life:     replication.LifeStamp{Seq: 2, Dead: false},
	}
	(&replicator{clients: cm}).Publish(u)

	require.Eventually(t, func() bool { return len(conn.Written()) > 0 },
		constants.TestEventuallyWait, constants.TestEventuallyTick, "nothing written")
	frame := conn.Written()

	payload, err := protocol.ReadPacket(bytes.NewReader(frame), client.Cipher(), make([]byte, 64))
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	testutil.AssertPacketOpcode(t, serverpackets.OpcodeFieldUpdate, payload)

	got, err := serverpackets.ParseFieldUpdate(payload[1:])
	if err != nil {
		t.Fatalf("ParseFieldUpdate: %v", err)
	}
	if got.Update != u {
		t.Errorf("update = %+v, want %+v", got.Update, u)
	}
}
