package clientpackets

import "github.com/udisondev/healthsync/internal/authority"

// OpcodeRequestBringToLife is the C2S opcode 0x11.
const OpcodeRequestBringToLife byte = 0x11

// RequestBringToLife asks the authority to revive an entity with the given health.
//
// Structure:
// - byte: opcode (0x11)
// - uint32: object ID
// - double: health after revival (unclamped)
type RequestBringToLife struct {
	ObjectID uint32
	Value    float64
}

// Write serializes the packet (proxy side).
func (p *RequestBringToLife) Write() ([]byte, error) {
	return writeValueRequest(OpcodeRequestBringToLife, p.ObjectID, p.Value), nil
}

// Request converts the packet into an authority request.
func (p *RequestBringToLife) Request() authority.Request {
	return authority.Request{EntityID: p.ObjectID, Kind: authority.RequestBringToLife, Value: p.Value}
}

// ParseRequestBringToLife parses the packet body (without opcode).
func ParseRequestBringToLife(data []byte) (*RequestBringToLife, error) {
	id, v, err := readValueRequest(data)
	if err != nil {
		return nil, err
	}
	return &RequestBringToLife{ObjectID: id, Value: v}, nil
}
