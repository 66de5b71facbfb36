package engine

import (
	"time"

	"github.com/axmq/mqttengine/packet"
	"github.com/axmq/mqttengine/property"
)

// Fired reports that the host's timer of the given kind has elapsed. The
// engine reacts per MQTT's keep-alive rules (MQTT 5.0 §3.1.2.10) and
// returns the resulting Events.
func (e *Engine) Fired(kind TimerKind) []Event {
	if e.closed() {
		return nil
	}

	switch kind {
	case PingreqSend:
		return e.firePingreqSend()
	case PingreqRecv:
		return e.fireKeepAliveTimeout()
	case PingrespRecv:
		return e.fireKeepAliveTimeout()
	default:
		return nil
	}
}

func (e *Engine) firePingreqSend() []Event {
	req, err := packet.NewPingreq(e.version)
	if err != nil {
		return e.fatal(err)
	}
	var events []Event
	events = append(events, SendBytes{Data: req.AppendTo(nil)})
	if e.keepAlive > 0 {
		events = append(events, ArmTimer{Timer: PingrespRecv, Duration: e.keepAlive})
	}
	return events
}

// fireKeepAliveTimeout reacts to PingreqRecv or PingrespRecv firing with
// no qualifying traffic observed in time (MQTT 5.0 §3.1.2.10). v5.0
// sends a best-effort DISCONNECT carrying KeepAliveTimeout before
// closing, while connected enough to address one; v3.1.1 has no such
// mechanism, so it simply closes with no packet and no ErrorEvent —
// keep-alive expiry is an expected, silent teardown, not a protocol
// fault worth reporting.
func (e *Engine) fireKeepAliveTimeout() []Event {
	reason := errKeepAliveTimeout()
	wasConnected := e.Connected()
	e.state = stateClosed
	if e.version == packet.V5_0 && wasConnected {
		disc, err := packet.NewDisconnect(e.version, packet.ReasonKeepAliveTimeout, property.Set{})
		if err == nil {
			return []Event{
				SendBytes{Data: disc.AppendTo(nil)},
				CloseTransport{Reason: reason},
			}
		}
	}
	return []Event{CloseTransport{Reason: reason}}
}

func errKeepAliveTimeout() error { return &keepAliveTimeoutError{} }

type keepAliveTimeoutError struct{}

func (e *keepAliveTimeoutError) Error() string { return "engine: keep-alive timeout" }

// serverKeepAliveGrace returns the grace period a Server-role engine
// allows between expected client activity, per pingreqRecvMultiplier.
func serverKeepAliveGrace(keepAlive time.Duration) time.Duration {
	return time.Duration(float64(keepAlive) * pingreqRecvMultiplier)
}
