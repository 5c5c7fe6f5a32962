package health

import (
	"math"

	"github.com/udisondev/healthsync/internal/replication"
)

// ApplyUpdate delivers a replicated field change to a proxy copy.
// Returns true if the update was accepted (right entity, known field,
// newer revision, proxy role).
func (c *Component) ApplyUpdate(u replication.Update) bool {
	if u.EntityID != c.owner.ObjectID {
		return false
	}
	switch u.Field {
	case replication.FieldHealth:
		if u.HasLife {
			return c.OnRepStampedHealth(u.Seq, u.Value, u.Life)
		}
		return c.OnRepHealth(u.Seq, u.Value)
	case replication.FieldMaxHealth:
		return c.OnRepMaxHealth(u.Seq, u.Value)
	case replication.FieldIsDead:
		return c.OnRepIsDead(u.Seq, u.Bool())
	default:
		c.log.Debug("unknown replicated field", "field", u.Field)
		return false
	}
}

// OnRepHealth is the delivery entry point for an unstamped Health.
// An accepted delivery re-runs death detection: Health <= 0 on a living copy
// is taken as a death until the next IsDead delivery says otherwise.
func (c *Component) OnRepHealth(seq uint32, v float64) bool {
	if !c.acceptsReplication(replication.FieldHealth) || math.IsNaN(v) {
		return false
	}
	if !c.health.Apply(seq, v) {
		return false
	}
	c.deriveDeath()
	return true
}

// OnRepStampedHealth is the delivery entry point for a Health produced by an
// authority together with its life state. The stamp is applied like an IsDead
// delivery, so OnDeath/OnRevive fire once whichever of the two updates
// arrives first, and a copy revived at 0 HP stays alive.
func (c *Component) OnRepStampedHealth(seq uint32, v float64, life replication.LifeStamp) bool {
	if !c.acceptsReplication(replication.FieldHealth) || math.IsNaN(v) {
		return false
	}
	if !c.health.Apply(seq, v) {
		return false
	}
	c.dead.Apply(life.Seq, life.Dead)
	return true
}

// OnRepMaxHealth is the delivery entry point for MaxHealth.
func (c *Component) OnRepMaxHealth(seq uint32, v float64) bool {
	if !c.acceptsReplication(replication.FieldMaxHealth) || validateMaxHealth(v) != nil {
		return false
	}
	return c.maxHealth.Apply(seq, v)
}

// OnRepIsDead is the delivery entry point for IsDead.
// A false→true delivery fires OnDeath unless death was already derived from
// a replicated Health; a true→false delivery fires OnRevive.
func (c *Component) OnRepIsDead(seq uint32, dead bool) bool {
	if !c.acceptsReplication(replication.FieldIsDead) {
		return false
	}
	return c.dead.Apply(seq, dead)
}

// OnHealthReplicated registers an observer for accepted Health deliveries
// (UI, animation). Runs before the life state of the delivery is applied.
func (c *Component) OnHealthReplicated(fn replication.RepFunc[float64]) {
	c.health.OnRep(fn)
}

// OnIsDeadReplicated registers an observer for accepted IsDead deliveries.
func (c *Component) OnIsDeadReplicated(fn replication.RepFunc[bool]) {
	c.dead.OnRep(fn)
}

func (c *Component) acceptsReplication(field replication.Field) bool {
	if c.gate.IsAuthority() {
		c.log.Debug("authority ignores replicated update", "field", field)
		return false
	}
	return true
}

func (c *Component) deriveDeath() {
	c.mu.Lock()
	died := c.health.Get() <= 0 && c.dieLocked()
	c.mu.Unlock()

	if died {
		c.onDeath.Broadcast(c.owner)
	}
}

func (c *Component) onRepIsDead(prev, cur bool) {
	switch {
	case cur && !prev:
		c.onDeath.Broadcast(c.owner)
	case !cur && prev:
		c.onRevive.Broadcast(c.owner)
	}
}
