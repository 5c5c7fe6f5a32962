package clientpackets

import (
	"fmt"

	"github.com/udisondev/healthsync/internal/authority"
	"github.com/udisondev/healthsync/internal/gameserver/packet"
)

// OpcodeRequestSetHealth is the C2S opcode 0x10.
// A proxy forwards SetHealthValue (and damage/heal/Die, which reduce to it).
const OpcodeRequestSetHealth byte = 0x10

// RequestSetHealth asks the authority to set an entity's health.
//
// Structure:
// - byte: opcode (0x10)
// - uint32: object ID
// - double: requested health (unclamped)
type RequestSetHealth struct {
	ObjectID uint32
	Value    float64
}

// Write serializes the packet (proxy side).
func (p *RequestSetHealth) Write() ([]byte, error) {
	return writeValueRequest(OpcodeRequestSetHealth, p.ObjectID, p.Value), nil
}

// Request converts the packet into an authority request.
func (p *RequestSetHealth) Request() authority.Request {
	return authority.Request{EntityID: p.ObjectID, Kind: authority.RequestSetHealth, Value: p.Value}
}

// ParseRequestSetHealth parses the packet body (without opcode).
func ParseRequestSetHealth(data []byte) (*RequestSetHealth, error) {
	id, v, err := readValueRequest(data)
	if err != nil {
		return nil, err
	}
	return &RequestSetHealth{ObjectID: id, Value: v}, nil
}

func writeValueRequest(opcode byte, objectID uint32, value float64) []byte {
	w := packet.NewWriter(13) // 1 + 4 + 8
	w.WriteByte(opcode)
	w.WriteUint32(objectID)
	w.WriteDouble(value)
	return w.Bytes()
}

func readValueRequest(data []byte) (uint32, float64, error) {
	r := packet.NewReader(data)

	id, err := r.ReadUint32()
	if err != nil {
		return 0, 0, fmt.Errorf("reading ObjectID: %w", err)
	}
	v, err := r.ReadDouble()
	if err != nil {
		return 0, 0, fmt.Errorf("reading Value: %w", err)
	}
	return id, v, nil
}
