package serverpackets

import (
	"fmt"

	"github.com/udisondev/healthsync/internal/gameserver/packet"
	"github.com/udisondev/healthsync/internal/health"
	"github.com/udisondev/healthsync/internal/model"
)

// OpcodeSpawnEntity is the S2C opcode 0x01.
// Sent once per entity when a proxy connects and when an entity spawns.
const OpcodeSpawnEntity byte = 0x01

// SpawnEntity carries the full replicated health state of one entity,
// including field revisions, so the proxy can drop older FieldUpdates.
//
// Structure:
// - byte: opcode (0x01)
// - uint32: object ID
// - string: name (UTF-16LE, null-terminated)
// - double: max health
// - double: health
// - byte: dead (0/1)
// - uint32 × 3: health seq, max health seq, dead seq
type SpawnEntity struct {
	State health.State
}

// NewSpawnEntity creates a SpawnEntity from a component snapshot.
func NewSpawnEntity(st health.State) SpawnEntity {
	return SpawnEntity{State: st}
}

// Write serializes the SpawnEntity packet.
func (p *SpawnEntity) Write() ([]byte, error) {
	st := p.State

	w := packet.NewWriter(40 + len(st.Owner.Name)*2)
	w.WriteByte(OpcodeSpawnEntity)
	w.WriteUint32(st.Owner.ObjectID)
	w.WriteString(st.Owner.Name)
	w.WriteDouble(st.MaxHealth)
	w.WriteDouble(st.Health)
	w.WriteBool(st.Dead)
	w.WriteUint32(st.HealthSeq)
	w.WriteUint32(st.MaxHealthSeq)
	w.WriteUint32(st.DeadSeq)
	return w.Bytes(), nil
}

// ParseSpawnEntity parses the SpawnEntity body (without opcode).
func ParseSpawnEntity(data []byte) (*SpawnEntity, error) {
	r := packet.NewReader(data)

	id, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("reading ObjectID: %w", err)
	}
	name, err := r.ReadString()
	if err != nil {
		return nil, fmt.Errorf("reading Name: %w", err)
	}

	st := health.State{Owner: model.NewEntityRef(id, name)}
	if st.MaxHealth, err = r.ReadDouble(); err != nil {
		return nil, fmt.Errorf("reading MaxHealth: %w", err)
	}
	if st.Health, err = r.ReadDouble(); err != nil {
		return nil, fmt.Errorf("reading Health: %w", err)
	}
	if st.Dead, err = r.ReadBool(); err != nil {
		return nil, fmt.Errorf("reading Dead: %w", err)
	}
	if st.HealthSeq, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("reading HealthSeq: %w", err)
	}
	if st.MaxHealthSeq, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("reading MaxHealthSeq: %w", err)
	}
	if st.DeadSeq, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("reading DeadSeq: %w", err)
	}

	return &SpawnEntity{State: st}, nil
}
