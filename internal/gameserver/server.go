package gameserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/healthsync/internal/authority"
	"github.com/udisondev/healthsync/internal/config"
	"github.com/udisondev/healthsync/internal/constants"
	"github.com/udisondev/healthsync/internal/crypto"
	"github.com/udisondev/healthsync/internal/gameserver/clientpackets"
	"github.com/udisondev/healthsync/internal/gameserver/serverpackets"
	"github.com/udisondev/healthsync/internal/health"
	"github.com/udisondev/healthsync/internal/model"
	"github.com/udisondev/healthsync/internal/protocol"
	"github.com/udisondev/healthsync/internal/world"
)

const defaultRequestQueueSize = 1024

// inbound is a forwarded request waiting for the dispatcher.
type inbound struct {
	session uuid.UUID
	req     authority.Request
}

// Server is the authority host: it owns the authoritative entities,
// replicates their health to connected proxies and applies forwarded requests.
type Server struct {
	cfg     config.GameServer
	world   *world.World
	ids     *world.ObjectIDGenerator
	journal Journal

	readPool  *BytePool
	writePool *BytePool

	clientManager *ClientManager
	publisher     *replicator

	// requests is drained by a single dispatcher: forwarded requests are
	// applied one at a time in arrival order.
	requests chan inbound

	// membershipMu serializes spawn, despawn and the snapshot burst sent to a
	// joining client, so a client never sees a despawned entity reappear.
	membershipMu sync.Mutex

	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a new authority server. journal may be nil.
func NewServer(cfg config.GameServer, journal Journal) *Server {
	clientMgr := NewClientManager()

	writePool := NewBytePool(constants.WriteBufSize)
	clientMgr.SetWritePool(writePool)

	queueSize := cfg.Server.RequestQueueSize
	if queueSize <= 0 {
		queueSize = defaultRequestQueueSize
	}

	return &Server{
		cfg:           cfg,
		world:         world.New(),
		ids:           world.NewObjectIDGenerator(),
		journal:       journal,
		readPool:      NewBytePool(constants.DefaultReadBufSize),
		writePool:     writePool,
		clientManager: clientMgr,
		publisher:     &replicator{clients: clientMgr},
		requests:      make(chan inbound, queueSize),
	}
}

// Addr returns the address the server is listening on.
// Returns nil if the server hasn't started yet.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ClientManager returns the client manager for this server.
func (s *Server) ClientManager() *ClientManager {
	return s.clientManager
}

// World returns the authoritative world.
func (s *Server) World() *world.World {
	return s.world
}

// SpawnEntities spawns every configured entity.
func (s *Server) SpawnEntities(entities []config.EntityConfig) error {
	for _, ec := range entities {
		if _, err := s.Spawn(ec); err != nil {
			return err
		}
	}
	return nil
}

// Spawn creates an authoritative entity, adds it to the world and announces
// it to connected proxies.
func (s *Server) Spawn(ec config.EntityConfig) (*world.Entity, error) {
	ref := model.NewEntityRef(s.ids.Next(), ec.Name)

	opts := []health.Option{
		health.WithPublisher(s.publisher),
		health.WithRules(s.cfg.Rules),
	}
	if ec.Health != nil {
		opts = append(opts, health.WithInitialHealth(*ec.Health))
	}

	comp, err := health.New(ref, ec.MaxHealth, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("spawning %q: %w", ec.Name, err)
	}
	comp.OnDeath().Add(s.onDeath(comp))
	comp.OnRevive().Add(s.onRevive(comp))

	entity := world.NewEntity(comp)

	s.membershipMu.Lock()
	defer s.membershipMu.Unlock()

	if err := s.world.Add(entity); err != nil {
		return nil, fmt.Errorf("spawning %q: %w", ec.Name, err)
	}
	comp.SyncSnapshot(func(st health.State) {
		spawn := serverpackets.NewSpawnEntity(st)
		s.clientManager.broadcastPacket(&spawn)
	})

	slog.Info("entity spawned", "entity", ref, "health", comp.Health(), "max_health", comp.MaxHealth(), "dead", comp.IsDead())
	return entity, nil
}

// Despawn removes an entity from the world and tells proxies to drop it.
func (s *Server) Despawn(objectID uint32) bool {
	s.membershipMu.Lock()
	defer s.membershipMu.Unlock()

	entity, ok := s.world.Remove(objectID)
	if !ok {
		return false
	}
	entity.Health().OnDeath().Clear()
	entity.Health().OnRevive().Clear()

	s.clientManager.broadcastPacket(&serverpackets.DespawnEntity{ObjectID: objectID})
	slog.Info("entity despawned", "entity", entity.Ref())
	return true
}

func (s *Server) onDeath(comp *health.Component) health.Listener {
	return func(ref model.EntityRef) {
		slog.Info("entity died", "entity", ref)
		if s.journal != nil {
			s.journal.Record(ref, model.LifeEventDeath, comp.Health())
		}
		s.clientManager.broadcastPacket(&serverpackets.Die{ObjectID: ref.ObjectID})
	}
}

func (s *Server) onRevive(comp *health.Component) health.Listener {
	return func(ref model.EntityRef) {
		slog.Info("entity revived", "entity", ref, "health", comp.Health())
		if s.journal != nil {
			s.journal.Record(ref, model.LifeEventRevive, comp.Health())
		}
		s.clientManager.broadcastPacket(&serverpackets.Revive{ObjectID: ref.ObjectID})
	}
}

// Close closes the listener.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Run begins listening for proxy connections on BindAddress:Port.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.BindAddress, s.cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections from the given listener and runs the dispatcher
// and tick loop until ctx is cancelled.
// Used for testing with custom listeners.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)

	var conns sync.WaitGroup
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("authority server stopping", "clients", s.clientManager.Count())
		ln.Close()
		s.clientManager.ForEachClient(func(c *GameClient) bool {
			c.CloseAsync()
			return true
		})
		return nil
	})
	g.Go(func() error {
		slog.Info("authority server started", "address", ln.Addr(), "entities", s.world.Len())
		err := s.acceptLoop(ctx, &conns, ln)
		conns.Wait()
		return err
	})
	g.Go(func() error {
		s.dispatchLoop(ctx)
		return nil
	})
	g.Go(func() error {
		s.tickLoop(ctx)
		return nil
	})

	return g.Wait()
}

func (s *Server) acceptLoop(ctx context.Context, wg *sync.WaitGroup, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("failed to accept new connection", "error", err)
			continue
		}

		// Enable TCP keepalive (detect dead connections)
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			if err := tcpConn.SetKeepAlive(true); err != nil {
				slog.Warn("set keepalive failed", "error", err)
			}
			if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
				slog.Warn("set keepalive period failed", "error", err)
			}
		}

		wg.Go(func() {
			s.handleConnection(ctx, conn)
		})
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	key, err := crypto.GenerateKey()
	if err != nil {
		slog.Error("failed to generate session key", "error", err)
		return
	}

	client, err := NewGameClient(conn, key, s.writePool, s.cfg.Server.SendQueueSize, s.cfg.Server.WriteTimeout)
	if err != nil {
		slog.Error("failed to create game client", "error", err)
		return
	}

	// KeyPacket is NOT encrypted (sent in plaintext)
	keyPkt := serverpackets.NewKeyPacket(key)
	keyData, err := keyPkt.Write()
	if err != nil {
		slog.Error("failed to write KeyPacket", "error", err)
		return
	}
	if err := protocol.WritePlain(conn, keyData); err != nil {
		slog.Error("failed to send KeyPacket", "client", client.IP(), "error", err)
		return
	}

	slog.Info("proxy connected", "client", client.IP(), "session", client.SessionID())

	// Start writePump AFTER KeyPacket (plaintext) is sent directly
	go client.writePump()
	defer client.Close()

	s.join(client)
	defer s.clientManager.Unregister(client.SessionID())

	err = s.readLoop(ctx, client)
	switch {
	case err == nil, ctx.Err() != nil:
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		slog.Info("proxy disconnected", "client", client.IP(), "session", client.SessionID())
	default:
		slog.Error("packet handling error", "client", client.IP(), "session", client.SessionID(), "error", err)
	}
}

// join registers the client and queues one SpawnEntity per entity.
// The client is switched to InWorld before the snapshots are taken, so an
// update published later is queued after the snapshot it follows.
func (s *Server) join(client *GameClient) {
	s.membershipMu.Lock()
	defer s.membershipMu.Unlock()

	s.clientManager.Register(client)
	client.SetState(ClientStateInWorld)

	for _, e := range s.world.Entities() {
		e.Health().SyncSnapshot(func(st health.State) {
			spawn := serverpackets.NewSpawnEntity(st)
			payload, err := spawn.Write()
			if err != nil {
				slog.Error("encoding spawn snapshot", "entity", st.Owner, "error", err)
				return
			}
			if err := client.SendPayload(payload); err != nil {
				slog.Debug("spawn snapshot dropped", "session", client.SessionID(), "error", err)
			}
		})
	}
}

func (s *Server) readLoop(ctx context.Context, client *GameClient) error {
	readBuf := s.readPool.Get(constants.DefaultReadBufSize)
	defer s.readPool.Put(readBuf)

	for {
		if ctx.Err() != nil {
			return nil
		}

		// Read timeout: idle proxy disconnects
		if timeout := s.cfg.Server.ReadTimeout; timeout > 0 {
			if err := client.Conn().SetReadDeadline(time.Now().Add(timeout)); err != nil {
				return fmt.Errorf("setting read deadline: %w", err)
			}
		}

		payload, err := protocol.ReadPacket(client.Conn(), client.Cipher(), readBuf)
		if err != nil {
			return fmt.Errorf("reading packet: %w", err)
		}

		req, err := clientpackets.ParseRequest(payload)
		if err != nil {
			if errors.Is(err, clientpackets.ErrUnknownOpcode) {
				slog.Warn("unknown packet", "session", client.SessionID(), "error", err)
				continue
			}
			return fmt.Errorf("handling packet: %w", err)
		}

		select {
		case s.requests <- inbound{session: client.SessionID(), req: req}:
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Server) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-s.requests:
			s.dispatch(in)
		}
	}
}

// dispatch applies one forwarded request. Requests are fire-and-forget:
// the proxy learns the outcome from replication only.
func (s *Server) dispatch(in inbound) {
	entity, ok := s.world.Get(in.req.EntityID)
	if !ok {
		slog.Debug("request for unknown entity", "client", s.clientIP(in.session), "session", in.session, "object_id", in.req.EntityID)
		return
	}

	comp := entity.Health()
	var err error
	switch in.req.Kind {
	case authority.RequestSetHealth:
		err = comp.ServerSetHealthValue(in.req.Value)
	case authority.RequestBringToLife:
		err = comp.ServerBringToLife(in.req.Value)
	default:
		err = fmt.Errorf("unknown request kind %d", in.req.Kind)
	}

	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, health.ErrRejected) {
			level = slog.LevelDebug
		}
		slog.Log(context.Background(), level, "request not applied",
			"client", s.clientIP(in.session),
			"session", in.session,
			"entity", entity.Ref(),
			"kind", in.req.Kind.String(),
			"value", in.req.Value,
			"error", err)
	}
}

// clientIP returns the address of the session's client, or "" once it has
// disconnected (its requests may still be queued).
func (s *Server) clientIP(session uuid.UUID) string {
	if client := s.clientManager.GetClient(session); client != nil {
		return client.IP()
	}
	return ""
}

func (s *Server) tickLoop(ctx context.Context) {
	interval := s.cfg.Server.TickInterval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.world.Tick(now.Sub(last))
			last = now
		}
	}
}
