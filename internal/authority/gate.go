// Package authority decides where a mutation runs: applied in place on the
// authoritative peer, or forwarded to it from a proxy.
package authority

import (
	"errors"
	"fmt"
)

// ErrNoForwarder is returned when a proxy gate has no way to reach the authority.
var ErrNoForwarder = errors.New("authority: proxy has no forwarder")

// Role of the local execution context.
type Role uint8

const (
	RoleAuthority Role = iota + 1
	RoleProxy
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleAuthority:
		return "authority"
	case RoleProxy:
		return "proxy"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// RequestKind is the remote-invocable operation a proxy asks the authority to run.
type RequestKind uint8

const (
	RequestSetHealth RequestKind = iota + 1
	RequestBringToLife
)

// String returns the request name.
func (k RequestKind) String() string {
	switch k {
	case RequestSetHealth:
		return "SetHealth"
	case RequestBringToLife:
		return "BringToLife"
	default:
		return fmt.Sprintf("RequestKind(%d)", uint8(k))
	}
}

// Request is a mutation forwarded from a proxy to the authority.
type Request struct {
	EntityID uint32
	Kind     RequestKind
	Value    float64
}

// Forwarder sends a request to the authoritative peer.
// Fire-and-forget: a nil error only means the request left this peer.
type Forwarder interface {
	Forward(req Request) error
}

// ForwarderFunc adapts a function to Forwarder.
type ForwarderFunc func(req Request) error

// Forward calls f(req).
func (f ForwarderFunc) Forward(req Request) error {
	return f(req)
}

// Gate routes mutation requests according to the local role.
// A Gate is immutable after construction and safe for concurrent use.
type Gate struct {
	role Role
	fwd  Forwarder
}

// NewAuthorityGate returns a gate that applies mutations locally.
func NewAuthorityGate() *Gate {
	return &Gate{role: RoleAuthority}
}

// NewProxyGate returns a gate that forwards every mutation through fwd.
func NewProxyGate(fwd Forwarder) *Gate {
	return &Gate{role: RoleProxy, fwd: fwd}
}

// Role returns the local role.
func (g *Gate) Role() Role {
	return g.role
}

// IsAuthority reports whether mutations are applied locally.
func (g *Gate) IsAuthority() bool {
	return g.role == RoleAuthority
}

// Route runs apply when the local context is authoritative.
// On a proxy apply is never called; req is handed to the forwarder instead
// and its error (if any) is returned.
func (g *Gate) Route(req Request, apply func()) error {
	if g.role == RoleAuthority {
		apply()
		return nil
	}
	if g.fwd == nil {
		return ErrNoForwarder
	}
	if err := g.fwd.Forward(req); err != nil {
		return fmt.Errorf("forwarding %s for entity %d: %w", req.Kind, req.EntityID, err)
	}
	return nil
}
