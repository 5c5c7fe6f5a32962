package clientpackets

import (
	"errors"
	"fmt"

	"github.com/udisondev/healthsync/internal/authority"
)

// ErrUnknownOpcode is returned by ParseRequest for opcodes it does not handle.
var ErrUnknownOpcode = errors.New("unknown client opcode")

// FromRequest builds the wire packet for a forwarded authority request.
func FromRequest(req authority.Request) ([]byte, error) {
	switch req.Kind {
	case authority.RequestSetHealth:
		p := RequestSetHealth{ObjectID: req.EntityID, Value: req.Value}
		return p.Write()
	case authority.RequestBringToLife:
		p := RequestBringToLife{ObjectID: req.EntityID, Value: req.Value}
		return p.Write()
	default:
		return nil, fmt.Errorf("unknown request kind %d", req.Kind)
	}
}

// ParseRequest decodes a full client packet (opcode included) into an authority request.
func ParseRequest(data []byte) (authority.Request, error) {
	if len(data) == 0 {
		return authority.Request{}, fmt.Errorf("empty packet data")
	}

	opcode, body := data[0], data[1:]
	switch opcode {
	case OpcodeRequestSetHealth:
		p, err := ParseRequestSetHealth(body)
		if err != nil {
			return authority.Request{}, fmt.Errorf("parsing RequestSetHealth: %w", err)
		}
		return p.Request(), nil
	case OpcodeRequestBringToLife:
		p, err := ParseRequestBringToLife(body)
		if err != nil {
			return authority.Request{}, fmt.Errorf("parsing RequestBringToLife: %w", err)
		}
		return p.Request(), nil
	default:
		return authority.Request{}, fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, opcode)
	}
}
