package engine

// connState is the engine's connection lifecycle position.
type connState byte

const (
	stateUnconnected    connState = iota // no CONNECT sent/received yet
	stateAwaitingPeer                    // client: CONNECT sent, awaiting CONNACK. server: CONNECT received, CONNACK not yet sent; a successful CONNACK moves either side to Connected
	stateConnected                       // CONNACK exchanged, normal operation
	stateDisconnecting                   // DISCONNECT sent/received, transport close imminent
	stateClosed                          // transport closed, engine inert
)

func (s connState) String() string {
	switch s {
	case stateUnconnected:
		return "Unconnected"
	case stateAwaitingPeer:
		return "AwaitingConnack"
	case stateConnected:
		return "Connected"
	case stateDisconnecting:
		return "Disconnecting"
	case stateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}
