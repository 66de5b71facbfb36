package engine

import (
	"time"

	"github.com/axmq/mqttengine/packet"
)

// TimerKind identifies one of the engine's three keep-alive timers. The
// host owns the actual clock; the engine only arms, cancels, and reacts to
// firings by kind.
type TimerKind byte

const (
	// PingreqSend fires when this side has gone KeepAlive with no
	// outbound traffic and must send a PINGREQ to keep the connection
	// alive (client role).
	PingreqSend TimerKind = iota
	// PingreqRecv fires when a Server-role engine has gone
	// 1.5x-KeepAlive with no inbound PINGREQ (or other traffic) from the
	// client, meaning the connection must be treated as dead.
	PingreqRecv
	// PingrespRecv fires when a Client-role engine has gone KeepAlive with
	// no inbound traffic since its last PINGREQ, meaning the server is not
	// responding and the connection must be treated as dead. An inbound
	// PINGRESP cancels it; other inbound packets after the CONNACK (except
	// DISCONNECT) re-arm it, since any traffic is equally good evidence the
	// link is alive.
	PingrespRecv
)

func (k TimerKind) String() string {
	switch k {
	case PingreqSend:
		return "PingreqSend"
	case PingreqRecv:
		return "PingreqRecv"
	case PingrespRecv:
		return "PingrespRecv"
	default:
		return "Unknown"
	}
}

// Event is one outcome of feeding input to the engine. A single Send,
// Receive, or Fired call returns an ordered slice of Events; the host
// must act on every one, in order.
type Event interface{ isEvent() }

// SendBytes instructs the host to write Data to the transport, in order,
// exactly once.
type SendBytes struct{ Data []byte }

// ArmTimer instructs the host to (re)start the named timer so it fires
// after Duration, replacing any previous arming of the same Timer.
type ArmTimer struct {
	Timer    TimerKind
	Duration time.Duration
}

// CancelTimer instructs the host to stop the named timer if it is armed.
type CancelTimer struct{ Timer TimerKind }

// CloseTransport instructs the host to close the underlying transport.
// No further Send/Receive calls are valid on this engine afterward.
type CloseTransport struct{ Reason error }

// PacketReceived surfaces a fully parsed, validated inbound packet to the
// host for application-level handling (e.g. a received PUBLISH to
// dispatch to a subscriber, or a CONNECT for a server to authenticate).
type PacketReceived struct{ Packet packet.Packet }

// PacketIDReleased tells the host a packet identifier it previously used
// for an outbound QoS>0 PUBLISH (or SUBSCRIBE/UNSUBSCRIBE) has completed
// its handshake and is free to be reused or reported as available.
type PacketIDReleased struct{ ID uint16 }

// ErrorEvent surfaces a condition the engine detected (a malformed
// packet, a protocol violation, an internal invariant failure) without
// necessarily being fatal — Fatal distinguishes errors the engine has
// already reacted to by also emitting CloseTransport from purely
// informational ones (e.g. a dropped duplicate).
type ErrorEvent struct {
	Err   error
	Fatal bool
}

func (SendBytes) isEvent()       {}
func (ArmTimer) isEvent()        {}
func (CancelTimer) isEvent()     {}
func (CloseTransport) isEvent()  {}
func (PacketReceived) isEvent()  {}
func (PacketIDReleased) isEvent() {}
func (ErrorEvent) isEvent()      {}
