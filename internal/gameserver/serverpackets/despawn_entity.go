package serverpackets

import (
	"fmt"

	"github.com/udisondev/healthsync/internal/gameserver/packet"
)

// OpcodeDespawnEntity is the S2C opcode 0x03.
// Sent when the authority removes an entity from its world.
const OpcodeDespawnEntity byte = 0x03

// DespawnEntity tells the proxy to drop its copy of an entity.
type DespawnEntity struct {
	ObjectID uint32
}

// Write serializes the DespawnEntity packet.
func (p *DespawnEntity) Write() ([]byte, error) {
	return writeObjectID(OpcodeDespawnEntity, p.ObjectID), nil
}

// ParseDespawnEntity parses the DespawnEntity body (without opcode).
func ParseDespawnEntity(data []byte) (*DespawnEntity, error) {
	id, err := readObjectID(data)
	if err != nil {
		return nil, err
	}
	return &DespawnEntity{ObjectID: id}, nil
}

// writeObjectID serializes the opcode + uint32 layout shared by several packets.
func writeObjectID(opcode byte, objectID uint32) []byte {
	w := packet.NewWriter(5) // 1 + 4
	w.WriteByte(opcode)
	w.WriteUint32(objectID)
	return w.Bytes()
}

func readObjectID(data []byte) (uint32, error) {
	id, err := packet.NewReader(data).ReadUint32()
	if err != nil {
		return 0, fmt.Errorf("reading ObjectID: %w", err)
	}
	return id, nil
}
