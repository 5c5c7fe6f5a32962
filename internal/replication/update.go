package replication

import "fmt"

// Field identifies a replicated field of a health component.
type Field uint8

const (
	FieldHealth Field = iota + 1
	FieldMaxHealth
	FieldIsDead
)

// String returns the field name.
func (f Field) String() string {
	switch f {
	case FieldHealth:
		return "Health"
	case FieldMaxHealth:
		return "MaxHealth"
	case FieldIsDead:
		return "IsDead"
	default:
		return fmt.Sprintf("Field(%d)", uint8(f))
	}
}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	return f >= FieldHealth && f <= FieldIsDead
}

// LifeStamp is the IsDead revision the authority held once the mutation that
// produced a Health update was complete.
type LifeStamp struct {
	Seq  uint32
	Dead bool
}

// Update is one replicated field change produced by the authority.
// Boolean fields are carried as 0/1.
//
// Health updates from an authority carry a LifeStamp (HasLife). A proxy takes
// its life state from the stamp instead of deriving it from Health <= 0, so an
// entity revived at 0 HP is never mistaken for dead.
type Update struct {
	EntityID uint32
	Field    Field
	Seq      uint32
	Value    float64

	HasLife bool
	Life    LifeStamp
}

// Bool returns the update value interpreted as a boolean field.
func (u Update) Bool() bool {
	return u.Value != 0
}

// BoolValue encodes a boolean field value.
func BoolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Publisher receives updates produced by an authoritative component.
// Publish is called with the component lock held, in production order,
// so implementations must not block and must not call back into the component.
type Publisher interface {
	Publish(u Update)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(u Update)

// Publish calls f(u).
func (f PublisherFunc) Publish(u Update) {
	f(u)
}

// Discard drops every update. Used by standalone (not networked) components.
var Discard Publisher = PublisherFunc(func(Update) {})
