package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/udisondev/healthsync/internal/authority"
	"github.com/udisondev/healthsync/internal/constants"
	"github.com/udisondev/healthsync/internal/gameserver/serverpackets"
	"github.com/udisondev/healthsync/internal/health"
	"github.com/udisondev/healthsync/internal/protocol"
	"github.com/udisondev/healthsync/internal/world"
)

// Run reads packets from the authority until ctx is cancelled or the
// connection drops. Updates are applied on this goroutine, so listeners
// registered on mirrored components run here too.
// Returns nil on ctx cancellation or a clean disconnect.
func (c *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	buf := make([]byte, constants.DefaultReadBufSize)
	for {
		if t := c.opts.readTimeout; t > 0 {
			if err := c.conn.SetReadDeadline(time.Now().Add(t)); err != nil {
				return fmt.Errorf("setting read deadline: %w", err)
			}
		}

		data, err := protocol.ReadPacket(c.conn, c.cipher, buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				slog.Info("disconnected from authority")
				return nil
			}
			return fmt.Errorf("reading packet: %w", err)
		}

		if err := c.handlePacket(data); err != nil {
			return err
		}
	}
}

func (c *Client) handlePacket(data []byte) error {
	opcode, body := data[0], data[1:]

	switch opcode {
	case serverpackets.OpcodeSpawnEntity:
		p, err := serverpackets.ParseSpawnEntity(body)
		if err != nil {
			return fmt.Errorf("parsing SpawnEntity: %w", err)
		}
		c.spawn(p.State)

	case serverpackets.OpcodeFieldUpdate:
		p, err := serverpackets.ParseFieldUpdate(body)
		if err != nil {
			return fmt.Errorf("parsing FieldUpdate: %w", err)
		}
		e, ok := c.world.Get(p.Update.EntityID)
		if !ok {
			// Пришло раньше SpawnEntity: снапшот уже содержит это значение.
			slog.Debug("update for unknown entity", "object_id", p.Update.EntityID, "field", p.Update.Field)
			return nil
		}
		if !e.Health().ApplyUpdate(p.Update) {
			slog.Debug("stale update dropped", "entity", e.Ref(), "field", p.Update.Field, "seq", p.Update.Seq)
		}

	case serverpackets.OpcodeDespawnEntity:
		p, err := serverpackets.ParseDespawnEntity(body)
		if err != nil {
			return fmt.Errorf("parsing DespawnEntity: %w", err)
		}
		if e, ok := c.world.Remove(p.ObjectID); ok {
			slog.Info("entity despawned", "entity", e.Ref())
			if c.opts.onDespawn != nil {
				c.opts.onDespawn(e)
			}
		}

	case serverpackets.OpcodeDie:
		p, err := serverpackets.ParseDie(body)
		if err != nil {
			return fmt.Errorf("parsing Die: %w", err)
		}
		slog.Debug("authority reports death", "object_id", p.ObjectID)

	case serverpackets.OpcodeRevive:
		p, err := serverpackets.ParseRevive(body)
		if err != nil {
			return fmt.Errorf("parsing Revive: %w", err)
		}
		slog.Debug("authority reports revival", "object_id", p.ObjectID)

	default:
		slog.Warn("unknown server packet", "opcode", fmt.Sprintf("0x%02X", opcode))
	}
	return nil
}

func (c *Client) spawn(st health.State) {
	if _, ok := c.world.Get(st.Owner.ObjectID); ok {
		slog.Debug("duplicate spawn ignored", "entity", st.Owner)
		return
	}

	comp, err := health.New(st.Owner, st.MaxHealth, authority.NewProxyGate(c), health.WithState(st))
	if err != nil {
		slog.Warn("invalid spawn snapshot", "entity", st.Owner, "error", err)
		return
	}

	e := world.NewEntity(comp)
	if err := c.world.Add(e); err != nil {
		slog.Warn("adding mirrored entity", "entity", st.Owner, "error", err)
		return
	}

	slog.Info("entity mirrored", "entity", st.Owner, "health", st.Health, "max_health", st.MaxHealth, "dead", st.Dead)
	if c.opts.onSpawn != nil {
		c.opts.onSpawn(e)
	}
}
