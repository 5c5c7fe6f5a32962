package serverpackets

// OpcodeDie is the S2C opcode 0x06.
// Sent after the authority observed an alive→dead transition.
// Informational only: proxies derive death from FieldUpdate.
const OpcodeDie byte = 0x06

// Die notifies the proxy that an entity has died.
type Die struct {
	ObjectID uint32 // dying entity's objectID
}

// Write serializes the Die packet.
func (p *Die) Write() ([]byte, error) {
	return writeObjectID(OpcodeDie, p.ObjectID), nil
}

// ParseDie parses the Die body (without opcode).
func ParseDie(data []byte) (*Die, error) {
	id, err := readObjectID(data)
	if err != nil {
		return nil, err
	}
	return &Die{ObjectID: id}, nil
}
