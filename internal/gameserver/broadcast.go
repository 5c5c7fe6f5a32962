package gameserver

import (
	"errors"
	"log/slog"
)

// BroadcastToAll queues payload to every client that already received its
// entity snapshots. The payload is encrypted separately per client (each
// client has its own key) and is not modified.
// Returns the number of clients the packet was queued for.
// Never blocks: slow clients are disconnected by Send.
func (cm *ClientManager) BroadcastToAll(payload []byte) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	pool := cm.writePool
	if pool == nil {
		pool = NewBytePool(len(payload) + 32)
	}

	sent := 0
	for _, client := range cm.clients {
		if client.State() != ClientStateInWorld {
			continue
		}

		pkt, err := pool.EncryptToPooled(client.Cipher(), payload, len(payload))
		if err != nil {
			slog.Warn("failed to encrypt broadcast", "session", client.SessionID(), "error", err)
			continue
		}
		if err := client.Send(pkt); err != nil {
			if !errors.Is(err, ErrClientClosed) {
				slog.Debug("broadcast dropped", "session", client.SessionID(), "error", err)
			}
			continue
		}
		sent++
	}

	return sent
}
