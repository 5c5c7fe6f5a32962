package model

// LifeEvent is a life-cycle transition of an entity recorded by the death journal.
type LifeEvent string

const (
	LifeEventDeath  LifeEvent = "death"
	LifeEventRevive LifeEvent = "revive"
)

// Valid reports whether e is a known event.
func (e LifeEvent) Valid() bool {
	return e == LifeEventDeath || e == LifeEventRevive
}
