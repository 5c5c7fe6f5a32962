package serverpackets

// OpcodeRevive is the S2C opcode 0x07.
// Sent when an entity has been brought back to life.
const OpcodeRevive byte = 0x07

// Revive notifies the proxy that an entity has been revived.
type Revive struct {
	ObjectID uint32 // revived entity's objectID
}

// Write serializes the Revive packet.
func (p *Revive) Write() ([]byte, error) {
	return writeObjectID(OpcodeRevive, p.ObjectID), nil
}

// ParseRevive parses the Revive body (without opcode).
func ParseRevive(data []byte) (*Revive, error) {
	id, err := readObjectID(data)
	if err != nil {
		return nil, err
	}
	return &Revive{ObjectID: id}, nil
}
