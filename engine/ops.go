package engine

import (
	"time"

	"github.com/axmq/mqttengine/packet"
)

// SetAutoPubResponse toggles whether the engine automatically emits the
// QoS>0 PUBLISH handshake responses (PUBACK, PUBREC, PUBCOMP) on the
// host's behalf. Disabling it leaves response packets to the host; the
// engine still tracks recv_publish_processing and releases packet
// identifiers exactly the same either way.
func (e *Engine) SetAutoPubResponse(enabled bool) { e.autoPubResponse = enabled }

// SetAutoPingResponse toggles whether a Server-role engine automatically
// answers an inbound PINGREQ with a PINGRESP.
func (e *Engine) SetAutoPingResponse(enabled bool) { e.autoPingResponse = enabled }

// RegisterPacketID marks id as allocated without going through
// NextPacketID, for a host assigning identifiers by some external
// scheme. Fails if id is already in use.
func (e *Engine) RegisterPacketID(id uint16) error { return e.outIDs.UseValue(id) }

// ReleasePacketID deallocates id and emits no event; PacketIDReleased is
// reserved for releases the engine itself observes via an inbound
// response packet (Puback, Pubcomp, Suback, Unsuback).
func (e *Engine) ReleasePacketID(id uint16) error { return e.outIDs.Deallocate(id) }

// SetPingreqSendInterval overrides the client's PINGREQ idle interval
// independent of the value negotiated at CONNECT/CONNACK. While
// Connected, the new interval is armed immediately; an interval of zero
// or less cancels the timer outright. While not yet Connected, the value
// is stored and nothing is emitted; sending a CONNECT or receiving a
// CONNACK resets the interval to the negotiated keep-alive, so a value
// stored before the handshake does not survive it.
func (e *Engine) SetPingreqSendInterval(d time.Duration) []Event {
	e.pingreqSendInterval = d
	if e.role != packet.RoleClient || !e.Connected() {
		return nil
	}
	if d <= 0 {
		return []Event{CancelTimer{Timer: PingreqSend}}
	}
	return []Event{ArmTimer{Timer: PingreqSend, Duration: d}}
}

// AssignedClientID returns the client identifier the peer assigned via
// CONNACK's Assigned Client Identifier property, or "" if none was sent.
func (e *Engine) AssignedClientID() string { return e.assignedClientID }

// NotifyClosed tells the engine the transport has gone away without a
// DISCONNECT having been sent or received (peer reset, I/O error). It
// cancels the keep-alive timers and, on a clean-session connection,
// clears session state exactly as a SessionPresent=false CONNACK would;
// a non-clean session's store, allocator, and alias maps survive for a
// future resumption attempt.
func (e *Engine) NotifyClosed() []Event {
	if e.closed() {
		return nil
	}
	e.state = stateClosed
	if e.cleanSession {
		e.clearSession()
	}
	return []Event{
		CancelTimer{Timer: PingreqSend},
		CancelTimer{Timer: PingreqRecv},
		CancelTimer{Timer: PingrespRecv},
	}
}
