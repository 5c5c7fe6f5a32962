package serverpackets

import (
	"fmt"

	"github.com/udisondev/healthsync/internal/gameserver/packet"
	"github.com/udisondev/healthsync/internal/replication"
)

// OpcodeFieldUpdate is the S2C opcode 0x02.
// One replicated field change produced by the authority.
const OpcodeFieldUpdate byte = 0x02

const (
	lifeStamped byte = 1 << iota
	lifeDead
)

// FieldUpdate wraps replication.Update.
//
// Structure:
// - byte: opcode (0x02)
// - uint32: object ID
// - byte: field (1=Health, 2=MaxHealth, 3=IsDead)
// - uint32: sequence number
// - double: value (IsDead encoded as 0/1)
// - byte: life flags (bit 0: stamped, bit 1: dead)
// - uint32: life sequence number (IsDead revision of a stamped Health)
//
// Total size: 23 bytes
type FieldUpdate struct {
	Update replication.Update
}

// NewFieldUpdate creates a FieldUpdate packet.
func NewFieldUpdate(u replication.Update) FieldUpdate {
	return FieldUpdate{Update: u}
}

// Write serializes the FieldUpdate packet.
func (p *FieldUpdate) Write() ([]byte, error) {
	if !p.Update.Field.Valid() {
		return nil, fmt.Errorf("invalid replicated field %d", p.Update.Field)
	}

	var flags byte
	if p.Update.HasLife {
		flags |= lifeStamped
		if p.Update.Life.Dead {
			flags |= lifeDead
		}
	}

	w := packet.NewWriter(23)
	w.WriteByte(OpcodeFieldUpdate)
	w.WriteUint32(p.Update.EntityID)
	w.WriteByte(byte(p.Update.Field))
	w.WriteUint32(p.Update.Seq)
	w.WriteDouble(p.Update.Value)
	w.WriteByte(flags)
	w.WriteUint32(p.Update.Life.Seq)
	return w.Bytes(), nil
}

// ParseFieldUpdate parses the FieldUpdate body (without opcode).
func ParseFieldUpdate(data []byte) (*FieldUpdate, error) {
	r := packet.NewReader(data)

	var (
		u   replication.Update
		err error
	)
	if u.EntityID, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("reading EntityID: %w", err)
	}
	field, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading Field: %w", err)
	}
	u.Field = replication.Field(field)
	if !u.Field.Valid() {
		return nil, fmt.Errorf("unknown replicated field %d", field)
	}
	if u.Seq, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("reading Seq: %w", err)
	}
	if u.Value, err = r.ReadDouble(); err != nil {
		return nil, fmt.Errorf("reading Value: %w", err)
	}
	flags, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading life flags: %w", err)
	}
	lifeSeq, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("reading life Seq: %w", err)
	}
	if flags&lifeStamped != 0 {
		u.HasLife = true
		u.Life = replication.LifeStamp{Seq: lifeSeq, Dead: flags&lifeDead != 0}
	}

	return &FieldUpdate{Update: u}, nil
}
