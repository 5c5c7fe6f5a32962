package gameserver

// ClientConnectionState represents the state machine for a proxy connection.
type ClientConnectionState int32

const (
	ClientStateConnected    ClientConnectionState = iota // TCP connected, KeyPacket sent
	ClientStateInWorld                                   // entity snapshots queued, receives FieldUpdates
	ClientStateDisconnected                              // Connection closed
)

func (s ClientConnectionState) String() string {
	switch s {
	case ClientStateConnected:
		return "CONNECTED"
	case ClientStateInWorld:
		return "IN_WORLD"
	case ClientStateDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}
