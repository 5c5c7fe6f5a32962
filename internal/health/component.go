// Package health implements the replicated health/death tracker attached to a
// game entity.
//
// A Component lives on every peer that knows the entity. The authoritative
// copy applies mutations, clamps them to [0, MaxHealth], detects the
// alive→dead edge and publishes every field change. Proxy copies never write
// state themselves: mutation calls are forwarded to the authority through the
// authority.Gate, and state only changes when the transport delivers a
// replicated update (ApplyUpdate / OnRep* entry points). Every Health update
// carries the life state it was produced under, so a proxy fires OnDeath
// exactly once per death the authority had, whichever field arrives first.
package health

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/udisondev/healthsync/internal/authority"
	"github.com/udisondev/healthsync/internal/model"
	"github.com/udisondev/healthsync/internal/replication"
)

// State is a consistent copy of the replicated fields with their revisions.
type State struct {
	Owner        model.EntityRef
	Health       float64
	MaxHealth    float64
	Dead         bool
	HealthSeq    uint32
	MaxHealthSeq uint32
	DeadSeq      uint32
}

// Component tracks health and death of one entity.
type Component struct {
	owner model.EntityRef
	gate  *authority.Gate
	rules Rules
	pub   replication.Publisher
	log   *slog.Logger

	// mu сериализует последовательности "мутация + проверка смерти".
	// Publish вызывается под mu, listeners всегда вне его.
	mu        sync.Mutex
	health    *replication.Value[float64]
	maxHealth *replication.Value[float64]
	dead      *replication.Value[bool]

	onDeath  *Notifier
	onRevive *Notifier
}

type options struct {
	initialHealth *float64
	state         *State
	pub           replication.Publisher
	rules         Rules
	logger        *slog.Logger
}

// Option configures a Component.
type Option func(*options)

// WithInitialHealth sets the starting health (default: MaxHealth).
// The value is clamped; a starting health of 0 creates the entity already dead.
func WithInitialHealth(v float64) Option {
	return func(o *options) { o.initialHealth = &v }
}

// WithState materializes the component from a replicated snapshot,
// including field revisions. Used by proxies when an entity spawns.
func WithState(st State) Option {
	return func(o *options) { o.state = &st }
}

// WithPublisher sets where the authority sends field changes.
func WithPublisher(p replication.Publisher) Option {
	return func(o *options) {
		if p != nil {
			o.pub = p
		}
	}
}

// WithRules sets the validation rules for forwarded requests.
func WithRules(r Rules) Option {
	return func(o *options) { o.rules = r }
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates a health component owned by owner.
// A nil gate makes a standalone authoritative component.
func New(owner model.EntityRef, maxHealth float64, gate *authority.Gate, opts ...Option) (*Component, error) {
	o := options{
		pub:    replication.Discard,
		rules:  DefaultRules(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.state != nil {
		maxHealth = o.state.MaxHealth
	}
	if err := validateMaxHealth(maxHealth); err != nil {
		return nil, fmt.Errorf("creating health component for %s: %w", owner, err)
	}
	if gate == nil {
		gate = authority.NewAuthorityGate()
	}

	c := &Component{
		owner:     owner,
		gate:      gate,
		rules:     o.rules,
		pub:       o.pub,
		log:       o.logger.With("entity", owner, "role", gate.Role().String()),
		health:    replication.NewValue(maxHealth),
		maxHealth: replication.NewValue(maxHealth),
		dead:      replication.NewValue(false),
		onDeath:   NewNotifier(),
		onRevive:  NewNotifier(),
	}

	switch {
	case o.state != nil:
		c.health.Init(o.state.HealthSeq, o.state.Health)
		c.maxHealth.Init(o.state.MaxHealthSeq, o.state.MaxHealth)
		c.dead.Init(o.state.DeadSeq, o.state.Dead)
	case o.initialHealth != nil:
		if math.IsNaN(*o.initialHealth) {
			return nil, fmt.Errorf("creating health component for %s: %w: initial health is NaN", owner, ErrRejected)
		}
		h := clamp(*o.initialHealth, maxHealth)
		c.health.Init(0, h)
		c.dead.Init(0, h <= 0)
	}

	if !gate.IsAuthority() {
		c.dead.OnRep(c.onRepIsDead)
	}
	return c, nil
}

func validateMaxHealth(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ErrInvalidMaxHealth
	}
	return nil
}

// Owner returns the owning entity handle.
func (c *Component) Owner() model.EntityRef { return c.owner }

// Role returns the local role of this copy.
func (c *Component) Role() authority.Role { return c.gate.Role() }

// Health returns the latest locally known health.
func (c *Component) Health() float64 { return c.health.Get() }

// MaxHealth returns the health ceiling.
func (c *Component) MaxHealth() float64 { return c.maxHealth.Get() }

// IsDead reports whether the entity is dead.
func (c *Component) IsDead() bool { return c.dead.Get() }

// IsAlive reports whether the entity is alive.
func (c *Component) IsAlive() bool { return !c.dead.Get() }

// OnDeath returns the signal fired once per alive→dead edge.
func (c *Component) OnDeath() *Notifier { return c.onDeath }

// OnRevive returns the signal fired when a dead entity is brought back to life.
func (c *Component) OnRevive() *Notifier { return c.onRevive }

// Snapshot returns the replicated fields as one consistent copy.
func (c *Component) Snapshot() State {
	var st State
	c.SyncSnapshot(func(s State) { st = s })
	return st
}

// SyncSnapshot calls fn with a consistent snapshot while mutations are held
// off, so nothing published after the snapshot can be ordered before whatever
// fn enqueues. fn must not block and must not call back into the component.
func (c *Component) SyncSnapshot(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, hs := c.health.Load()
	m, ms := c.maxHealth.Load()
	d, ds := c.dead.Load()
	fn(State{
		Owner:        c.owner,
		Health:       h,
		MaxHealth:    m,
		Dead:         d,
		HealthSeq:    hs,
		MaxHealthSeq: ms,
		DeadSeq:      ds,
	})
}

// Tick is the per-frame hook. The health state machine does not depend on time.
func (c *Component) Tick(dt time.Duration) {}

// SetHealthValue sets health to v (clamped) and runs death detection.
// On a proxy the change is forwarded to the authority and nothing is applied locally.
// Invalid values are dropped and logged, never returned to the caller.
func (c *Component) SetHealthValue(v float64) {
	err := c.gate.Route(c.request(authority.RequestSetHealth, v), func() {
		if err := c.applyHealth(setTo(v), false); err != nil {
			c.log.Debug("health change ignored", "value", v, "error", err)
		}
	})
	if err != nil {
		c.log.Warn("health change not forwarded", "value", v, "error", err)
	}
}

// ServerSetHealthValue is the authority-side entry point for a forwarded
// SetHealth request. On the authority the request is validated against Rules
// and rejected (ErrRejected, state untouched) or applied. On a proxy it is
// forwarded like SetHealthValue.
func (c *Component) ServerSetHealthValue(v float64) error {
	var applyErr error
	err := c.gate.Route(c.request(authority.RequestSetHealth, v), func() {
		applyErr = c.applyHealth(setTo(v), true)
	})
	if err != nil {
		return err
	}
	if applyErr != nil {
		c.log.Debug("health request rejected", "value", v, "error", applyErr)
	}
	return applyErr
}

// DecreaseHealthValue is SetHealthValue(Health - amount).
// A negative amount is a caller error; the result is still clamped.
func (c *Component) DecreaseHealthValue(amount float64) {
	c.changeHealthBy(-amount)
}

// IncreaseHealthValue is SetHealthValue(Health + amount).
// Healing a dead entity does not revive it; only BringToLife does.
func (c *Component) IncreaseHealthValue(amount float64) {
	c.changeHealthBy(amount)
}

// changeHealthBy reads and writes health under one lock on the authority,
// so concurrent deltas never overwrite each other. A proxy forwards the
// result computed from its mirrored value.
func (c *Component) changeHealthBy(delta float64) {
	err := c.gate.Route(c.request(authority.RequestSetHealth, c.Health()+delta), func() {
		next := func(cur float64) float64 { return cur + delta }
		if err := c.applyHealth(next, false); err != nil {
			c.log.Debug("health change ignored", "delta", delta, "error", err)
		}
	})
	if err != nil {
		c.log.Warn("health change not forwarded", "delta", delta, "error", err)
	}
}

// Die kills the entity: health drops to 0, IsDead becomes true and OnDeath
// fires. No-op when already dead. On a proxy it is forwarded as SetHealth(0).
func (c *Component) Die() {
	err := c.gate.Route(c.request(authority.RequestSetHealth, 0), func() {
		c.mu.Lock()
		died := c.dieLocked()
		c.mu.Unlock()

		if died {
			c.onDeath.Broadcast(c.owner)
		}
	})
	if err != nil {
		c.log.Warn("death not forwarded", "error", err)
	}
}

// BringToLife clears IsDead and sets health to v (clamped).
// It never fires OnDeath, even for v == 0; OnRevive fires if the entity was dead.
// On a proxy the request is forwarded to the authority.
func (c *Component) BringToLife(v float64) {
	err := c.gate.Route(c.request(authority.RequestBringToLife, v), func() {
		if err := c.applyRevive(v, false); err != nil {
			c.log.Debug("revive ignored", "value", v, "error", err)
		}
	})
	if err != nil {
		c.log.Warn("revive not forwarded", "value", v, "error", err)
	}
}

// ServerBringToLife is the authority-side entry point for a forwarded
// BringToLife request.
func (c *Component) ServerBringToLife(v float64) error {
	var applyErr error
	err := c.gate.Route(c.request(authority.RequestBringToLife, v), func() {
		applyErr = c.applyRevive(v, true)
	})
	if err != nil {
		return err
	}
	if applyErr != nil {
		c.log.Debug("revive request rejected", "value", v, "error", applyErr)
	}
	return applyErr
}

// SetMaxHealth changes the ceiling and re-clamps health. Authority only.
func (c *Component) SetMaxHealth(v float64) error {
	if !c.gate.IsAuthority() {
		return ErrNotAuthority
	}
	if err := validateMaxHealth(v); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq, changed := c.maxHealth.Set(v); changed {
		c.publish(replication.FieldMaxHealth, seq, v)
	}
	if h := c.health.Get(); h > v {
		c.commitLocked(h, c.dead.Get())
	}
	return nil
}

func setTo(v float64) func(float64) float64 {
	return func(float64) float64 { return v }
}

// applyHealth computes the new health from the current one under the lock,
// stores it and runs death detection.
func (c *Component) applyHealth(next func(cur float64) float64, validate bool) error {
	c.mu.Lock()
	v := next(c.health.Get())
	if math.IsNaN(v) {
		c.mu.Unlock()
		return fmt.Errorf("%w: value is NaN", ErrRejected)
	}
	if validate {
		if err := c.rules.ValidateSetHealth(c.dead.Get(), v); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	died := c.checkDeathLocked(v)
	c.mu.Unlock()

	if died {
		c.onDeath.Broadcast(c.owner)
	}
	return nil
}

func (c *Component) applyRevive(v float64, validate bool) error {
	if validate {
		if err := c.rules.ValidateBringToLife(v); err != nil {
			return err
		}
	} else if math.IsNaN(v) {
		return fmt.Errorf("%w: value is NaN", ErrRejected)
	}

	c.mu.Lock()
	wasDead := c.dead.Get()
	c.commitLocked(v, false)
	c.mu.Unlock()

	if wasDead {
		c.onRevive.Broadcast(c.owner)
	}
	return nil
}

// checkDeathLocked stores health v (clamped) together with the life state
// death detection derives from it: Health <= 0 on a living entity dies.
// Returns true if this call performed the alive→dead transition; the caller
// fires OnDeath after unlocking.
func (c *Component) checkDeathLocked(v float64) bool {
	h := clamp(v, c.maxHealth.Get())
	wasDead := c.dead.Get()
	c.commitLocked(h, wasDead || h <= 0)
	return !wasDead && h <= 0
}

// dieLocked is the guarded alive→dead transition.
func (c *Component) dieLocked() bool {
	if c.dead.Get() {
		return false
	}
	if !c.gate.IsAuthority() {
		// Прокси без LifeStamp выводит смерть из реплицированного Health;
		// следующий реплицированный IsDead перезапишет это значение.
		c.dead.Assume(true)
		return true
	}
	c.commitLocked(0, true)
	return true
}

// commitLocked stores health (clamped) and the life state as one authoritative
// mutation. Both are written before anything is published, so the Health
// update carries the final IsDead revision as its LifeStamp.
// Publish order: Health, then IsDead.
func (c *Component) commitLocked(health float64, dead bool) {
	h := clamp(health, c.maxHealth.Get())
	deadSeq, deadChanged := c.dead.Set(dead)

	if seq, changed := c.health.Set(h); changed {
		u := c.update(replication.FieldHealth, seq, h)
		u.HasLife = true
		u.Life = replication.LifeStamp{Seq: deadSeq, Dead: dead}
		c.pub.Publish(u)
	}
	if deadChanged {
		c.publish(replication.FieldIsDead, deadSeq, replication.BoolValue(dead))
	}
}

func (c *Component) publish(field replication.Field, seq uint32, v float64) {
	c.pub.Publish(c.update(field, seq, v))
}

func (c *Component) update(field replication.Field, seq uint32, v float64) replication.Update {
	return replication.Update{
		EntityID: c.owner.ObjectID,
		Field:    field,
		Seq:      seq,
		Value:    v,
	}
}

func (c *Component) request(kind authority.RequestKind, v float64) authority.Request {
	return authority.Request{EntityID: c.owner.ObjectID, Kind: kind, Value: v}
}
