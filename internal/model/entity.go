package model

import (
	"fmt"
	"log/slog"
)

// EntityRef: невладеющая ссылка на игровую сущность (ObjectID + Name).
// Передаётся по значению, поэтому держатель ссылки никогда не продлевает
// время жизни самой сущности.
type EntityRef struct {
	ObjectID uint32
	Name     string
}

// NewEntityRef creates a reference to the entity with the given object ID and name.
func NewEntityRef(objectID uint32, name string) EntityRef {
	return EntityRef{ObjectID: objectID, Name: name}
}

// IsZero reports whether the reference points to nothing (ObjectID 0 is reserved).
func (r EntityRef) IsZero() bool {
	return r.ObjectID == 0
}

// String returns "Name#ObjectID".
func (r EntityRef) String() string {
	return fmt.Sprintf("%s#%d", r.Name, r.ObjectID)
}

// LogValue implements slog.LogValuer so log lines carry both fields.
func (r EntityRef) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("id", uint64(r.ObjectID)),
		slog.String("name", r.Name),
	)
}
