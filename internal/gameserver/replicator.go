package gameserver

import (
	"log/slog"

	"github.com/udisondev/healthsync/internal/gameserver/serverpackets"
	"github.com/udisondev/healthsync/internal/model"
	"github.com/udisondev/healthsync/internal/replication"
)

// Journal receives life-cycle events of authoritative entities.
// Record is called from OnDeath/OnRevive listeners and must not block.
type Journal interface {
	Record(entity model.EntityRef, event model.LifeEvent, health float64)
}

// replicator turns authoritative field changes into FieldUpdate broadcasts.
// Publish runs under the component mutex, so it only encrypts and queues.
type replicator struct {
	clients *ClientManager
}

var _ replication.Publisher = (*replicator)(nil)

func (r *replicator) Publish(u replication.Update) {
	pkt := serverpackets.NewFieldUpdate(u)
	payload, err := pkt.Write()
	if err != nil {
		slog.Error("encoding field update", "update", u, "error", err)
		return
	}
	r.clients.BroadcastToAll(payload)
}

// broadcastPacket encodes p and queues it to every in-world client.
func (cm *ClientManager) broadcastPacket(p interface{ Write() ([]byte, error) }) {
	payload, err := p.Write()
	if err != nil {
		slog.Error("encoding broadcast packet", "error", err)
		return
	}
	cm.BroadcastToAll(payload)
}
