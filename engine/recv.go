package engine

import (
	"github.com/axmq/mqttengine/alias"
	"github.com/axmq/mqttengine/packet"
	"github.com/axmq/mqttengine/property"
)

// Receive feeds inbound transport bytes to the engine and returns the
// Events produced: zero or more fully parsed packets surfaced as
// PacketReceived, plus any timer rearming, acks, or errors those packets
// trigger.
func (e *Engine) Receive(data []byte) []Event {
	if e.closed() {
		return nil
	}

	raws, err := e.framer.Push(data)
	var events []Event
	for _, raw := range raws {
		events = append(events, e.dispatch(raw)...)
		if e.closed() {
			return events
		}
	}
	if err != nil {
		return append(events, e.fatal(err)...)
	}
	return events
}

func (e *Engine) dispatch(raw rawPacket) []Event {
	version := e.version
	if raw.Header.Kind == packet.Connect && e.role == packet.RoleServer {
		v, _, err := packet.PeekProtocolVersion(raw.Body)
		if err != nil {
			return e.fatal(err)
		}
		version = v
	}
	if version == packet.VersionUndetermined {
		return e.fatal(packet.ErrVersionMismatch)
	}

	if err := packet.CheckRole(peerRole(e.role), raw.Header.Kind); err != nil {
		return e.fatal(err)
	}
	if err := packet.CheckVersion(e.version, version); err != nil {
		return e.fatal(err)
	}

	p, err := parseRaw(version, raw)
	if err != nil {
		return e.fatal(err)
	}

	switch pkt := p.(type) {
	case *packet.ConnectPacket:
		return e.recvConnect(pkt)
	case *packet.ConnackPacket:
		return e.recvConnack(pkt)
	case *packet.PublishPacket:
		return e.recvPublish(pkt)
	case *packet.PubackPacket:
		return e.recvPuback(pkt)
	case *packet.PubrecPacket:
		return e.recvPubrec(pkt)
	case *packet.PubrelPacket:
		return e.recvPubrel(pkt)
	case *packet.PubcompPacket:
		return e.recvPubcomp(pkt)
	case *packet.PingreqPacket:
		return e.recvPingreq(pkt)
	case *packet.PingrespPacket:
		return e.recvPingresp(pkt)
	case *packet.DisconnectPacket:
		return e.recvDisconnect(pkt)
	case *packet.SubackPacket:
		return e.recvIDTerminal(pkt, pkt.ID)
	case *packet.UnsubackPacket:
		return e.recvIDTerminal(pkt, pkt.ID)
	default:
		return append([]Event{PacketReceived{Packet: p}}, e.armPeerIdleTimer()...)
	}
}

// peerRole reports the role the far end of the connection occupies, for
// validating which kinds the peer may legally originate.
func peerRole(role packet.Role) packet.Role {
	switch role {
	case packet.RoleClient:
		return packet.RoleServer
	case packet.RoleServer:
		return packet.RoleClient
	default:
		return packet.RoleAny
	}
}

func (e *Engine) recvConnect(pkt *packet.ConnectPacket) []Event {
	if e.state != stateUnconnected {
		return e.fatal(ErrAlreadyConnected)
	}
	e.version = pkt.Version()
	e.keepAlive = serverKeepAliveGrace(secondsToDuration(pkt.KeepAlive))
	e.cleanSession = pkt.CleanStart
	e.learnPeerLimits(pkt.Properties)
	e.state = stateAwaitingPeer

	events := []Event{PacketReceived{Packet: pkt}}
	if e.keepAlive > 0 {
		events = append(events, ArmTimer{Timer: PingreqRecv, Duration: e.keepAlive})
	}
	return events
}

func (e *Engine) recvConnack(pkt *packet.ConnackPacket) []Event {
	if e.state != stateAwaitingPeer {
		return e.fatal(ErrNotConnected)
	}
	if !pkt.ReasonCode.Success() {
		e.state = stateClosed
		return []Event{PacketReceived{Packet: pkt}, CloseTransport{}}
	}

	e.learnPeerLimits(pkt.Properties)
	e.pingreqSendInterval = e.keepAlive
	e.state = stateConnected

	// Arm the client's PINGREQ idle timer before surfacing the CONNACK to
	// the host, so the keep-alive clock is always running by the time the
	// host sees the connection as established.
	var events []Event
	if e.role == packet.RoleClient && e.pingreqSendInterval > 0 {
		events = append(events, ArmTimer{Timer: PingreqSend, Duration: e.pingreqSendInterval})
	}
	events = append(events, PacketReceived{Packet: pkt})

	if pkt.SessionPresent {
		e.resendStore(&events)
	} else {
		e.clearSession()
	}
	e.drainOffline(&events)
	return events
}

// learnPeerLimits updates the peer's advertised Receive Maximum, Topic
// Alias Maximum, Maximum Packet Size, Server Keep Alive, and Assigned
// Client Identifier from a CONNECT or CONNACK's properties (all
// v5.0-only; a v3.1.1 property set is always empty, so every lookup
// below is a harmless no-op on that version).
func (e *Engine) learnPeerLimits(props property.Set) {
	if v, ok := props.Get(property.ReceiveMaximum); ok {
		if rm, ok := v.(uint16); ok && rm > 0 {
			e.peerReceiveMaximum = rm
		}
	}
	if v, ok := props.Get(property.TopicAliasMaximum); ok {
		if tam, ok := v.(uint16); ok {
			e.sendAlias = alias.NewSendMap(tam)
		}
	}
	if v, ok := props.Get(property.MaximumPacketSize); ok {
		if mps, ok := v.(uint32); ok {
			e.peerMaxPacketSize = mps
		}
	}
	if v, ok := props.Get(property.ServerKeepAlive); ok {
		if ka, ok := v.(uint16); ok {
			serverKeepAlive := secondsToDuration(ka)
			if e.keepAlive <= 0 || serverKeepAlive < e.keepAlive {
				e.keepAlive = serverKeepAlive
			}
		}
	}
	if v, ok := props.Get(property.AssignedClientIdentifier); ok {
		if id, ok := v.(string); ok {
			e.assignedClientID = id
		}
	}
}

// resendStore re-emits every entry of the in-flight outbound store after
// a session is resumed (CONNACK SessionPresent=true), in original send
// order, with DUP set on resent Publish packets by Store.Resend itself.
// These are sent directly rather than through Send, since they are
// already tracked in the store and must not be pushed into it again.
func (e *Engine) resendStore(events *[]Event) {
	for _, p := range e.inflight.Resend() {
		*events = append(*events, SendBytes{Data: p.AppendTo(nil)})
	}
}

// drainOffline re-sends everything queued while disconnected, now that a
// session (resumed or clean) has been established.
func (e *Engine) drainOffline(events *[]Event) {
	for _, p := range e.offline.Drain() {
		sent, err := e.Send(p)
		if err != nil {
			*events = append(*events, ErrorEvent{Err: err})
			continue
		}
		*events = append(*events, sent...)
	}
}

func (e *Engine) recvPublish(pkt *packet.PublishPacket) []Event {
	if pkt.Properties.Len() > 0 {
		if v, ok := pkt.Properties.Get(property.TopicAlias); ok {
			aliasValue, _ := v.(uint16)
			if pkt.TopicName != "" {
				if err := e.recvAlias.Learn(aliasValue, pkt.TopicName); err != nil {
					return e.fatal(err)
				}
			} else {
				topic, err := e.recvAlias.Resolve(aliasValue)
				if err != nil {
					return e.fatal(err)
				}
				pkt.TopicName = topic
			}
		}
	}

	if pkt.QoS != packet.QoS0 {
		if e.cfg.ReceiveMaximum > 0 && e.recvProcessing >= e.cfg.ReceiveMaximum {
			return e.fatal(ErrReceiveMaximumExceeded)
		}
		e.recvProcessing++
	}

	var events []Event
	if e.autoPubResponse {
		switch pkt.QoS {
		case packet.QoS1:
			ack, err := packet.NewPuback(e.version, pkt.ID, packet.ReasonSuccess, property.Set{})
			if err != nil {
				return e.fatal(err)
			}
			sent, err := e.Send(ack)
			if err != nil {
				return e.fatal(err)
			}
			events = append(events, sent...)
		case packet.QoS2:
			ack, err := packet.NewPubrec(e.version, pkt.ID, packet.ReasonSuccess, property.Set{})
			if err != nil {
				return e.fatal(err)
			}
			sent, err := e.Send(ack)
			if err != nil {
				return e.fatal(err)
			}
			events = append(events, sent...)
		}
	}
	events = append(events, PacketReceived{Packet: pkt})
	events = append(events, e.armPeerIdleTimer()...)
	return events
}

// completeInboundFlow decrements recv_publish_processing when this side
// sends the final response to an inbound QoS>0 PUBLISH: a PUBACK (QoS 1),
// a PUBCOMP (QoS 2 success path), or a non-success PUBREC (QoS 2
// short-circuit). Called from Send regardless of whether the response
// was auto-emitted or built and sent by the host, since either path must
// replenish the budget the same way.
func (e *Engine) completeInboundFlow() {
	if e.recvProcessing > 0 {
		e.recvProcessing--
	}
}

func (e *Engine) recvPuback(pkt *packet.PubackPacket) []Event {
	id, _ := pkt.PacketID()
	if err := e.inflight.OnPuback(uint16(id)); err != nil {
		return e.fatal(err)
	}
	return e.completeOutbound(uint16(id), pkt)
}

func (e *Engine) recvPubrec(pkt *packet.PubrecPacket) []Event {
	id, _ := pkt.PacketID()
	if _, err := e.inflight.OnPubrec(uint16(id)); err != nil {
		return e.fatal(err)
	}
	rel, err := packet.NewPubrel(e.version, uint16(id), packet.ReasonSuccess, property.Set{})
	if err != nil {
		return e.fatal(err)
	}
	events := append([]Event{PacketReceived{Packet: pkt}}, e.armPeerIdleTimer()...)
	sent, err := e.Send(rel)
	if err != nil {
		return append(events, e.fatal(err)...)
	}
	return append(events, sent...)
}

func (e *Engine) recvPubrel(pkt *packet.PubrelPacket) []Event {
	events := append([]Event{PacketReceived{Packet: pkt}}, e.armPeerIdleTimer()...)
	if !e.autoPubResponse {
		return events
	}
	id, _ := pkt.PacketID()
	comp, err := packet.NewPubcomp(e.version, uint16(id), packet.ReasonSuccess, property.Set{})
	if err != nil {
		return append(events, e.fatal(err)...)
	}
	sent, err := e.Send(comp)
	if err != nil {
		return append(events, e.fatal(err)...)
	}
	return append(events, sent...)
}

func (e *Engine) recvPubcomp(pkt *packet.PubcompPacket) []Event {
	id, _ := pkt.PacketID()
	if err := e.inflight.OnPubcomp(uint16(id)); err != nil {
		return e.fatal(err)
	}
	return e.completeOutbound(uint16(id), pkt)
}

// completeOutbound releases a packet identifier once its QoS>0 handshake
// has fully resolved, replenishing the Receive Maximum budget.
func (e *Engine) completeOutbound(id uint16, p packet.Packet) []Event {
	if e.sentUnacked > 0 {
		e.sentUnacked--
	}
	if err := e.outIDs.Deallocate(id); err != nil {
		return e.fatal(err)
	}
	events := []Event{PacketReceived{Packet: p}, PacketIDReleased{ID: id}}
	return append(events, e.armPeerIdleTimer()...)
}

// recvIDTerminal releases a packet identifier used by an outbound
// SUBSCRIBE or UNSUBSCRIBE once its SUBACK/UNSUBACK arrives.
func (e *Engine) recvIDTerminal(p packet.Packet, id uint16) []Event {
	if err := e.outIDs.Deallocate(id); err != nil {
		return e.fatal(err)
	}
	events := []Event{PacketReceived{Packet: p}, PacketIDReleased{ID: id}}
	return append(events, e.armPeerIdleTimer()...)
}

func (e *Engine) recvPingreq(pkt *packet.PingreqPacket) []Event {
	events := append([]Event{PacketReceived{Packet: pkt}}, e.armPeerIdleTimer()...)
	if !e.autoPingResponse {
		return events
	}
	resp, err := packet.NewPingresp(e.version)
	if err != nil {
		return append(events, e.fatal(err)...)
	}
	sent, err := e.Send(resp)
	if err != nil {
		return append(events, e.fatal(err)...)
	}
	return append(events, sent...)
}

func (e *Engine) recvPingresp(pkt *packet.PingrespPacket) []Event {
	return []Event{CancelTimer{Timer: PingrespRecv}, PacketReceived{Packet: pkt}}
}

func (e *Engine) recvDisconnect(pkt *packet.DisconnectPacket) []Event {
	e.state = stateClosed
	return []Event{
		PacketReceived{Packet: pkt},
		CancelTimer{Timer: PingreqSend},
		CancelTimer{Timer: PingreqRecv},
		CancelTimer{Timer: PingrespRecv},
		CloseTransport{},
	}
}

// armPeerIdleTimer re-arms the timer that tracks the peer's activity after
// any inbound traffic (MQTT 5.0 §3.1.2.10).
func (e *Engine) armPeerIdleTimer() []Event {
	if e.keepAlive <= 0 {
		return nil
	}
	switch e.role {
	case packet.RoleClient:
		return []Event{ArmTimer{Timer: PingrespRecv, Duration: e.keepAlive}}
	case packet.RoleServer:
		return []Event{ArmTimer{Timer: PingreqRecv, Duration: e.keepAlive}}
	default:
		return nil
	}
}
