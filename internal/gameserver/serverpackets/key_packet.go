package serverpackets

import (
	"fmt"

	"github.com/udisondev/healthsync/internal/constants"
	"github.com/udisondev/healthsync/internal/gameserver/packet"
)

const OpcodeKeyPacket = 0x2E

// KeyPacket is the first packet sent to a proxy after TCP connection.
// It travels unencrypted and carries the session key for all later frames.
//
// Structure:
// - byte: opcode (0x2E)
// - int32: protocol revision
// - byte[16]: Blowfish key
//
// Total size: 21 bytes
type KeyPacket struct {
	Protocol    int32
	BlowfishKey []byte // 16 bytes
}

// NewKeyPacket creates a KeyPacket for the current protocol revision.
func NewKeyPacket(blowfishKey []byte) KeyPacket {
	return KeyPacket{
		Protocol:    constants.ProtocolRevision,
		BlowfishKey: blowfishKey,
	}
}

// Write serializes the KeyPacket.
func (p *KeyPacket) Write() ([]byte, error) {
	if len(p.BlowfishKey) != constants.BlowfishKeySize {
		return nil, fmt.Errorf("blowfish key must be %d bytes, got %d", constants.BlowfishKeySize, len(p.BlowfishKey))
	}

	w := packet.NewWriter(1 + 4 + constants.BlowfishKeySize)
	if err := w.WriteByte(OpcodeKeyPacket); err != nil {
		return nil, err
	}
	w.WriteInt(p.Protocol)
	w.WriteBytes(p.BlowfishKey)
	return w.Bytes(), nil
}

// ParseKeyPacket parses the KeyPacket body (without opcode).
func ParseKeyPacket(data []byte) (*KeyPacket, error) {
	r := packet.NewReader(data)

	proto, err := r.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("reading Protocol: %w", err)
	}
	key, err := r.ReadBytes(constants.BlowfishKeySize)
	if err != nil {
		return nil, fmt.Errorf("reading BlowfishKey: %w", err)
	}

	return &KeyPacket{
		Protocol:    proto,
		BlowfishKey: append([]byte(nil), key...),
	}, nil
}
