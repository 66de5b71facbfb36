package engine

import (
	"github.com/axmq/mqttengine/packet"
	"github.com/axmq/mqttengine/property"
)

// Send validates and serializes an outbound typed packet, returning the
// Events the host must act on. Send never itself writes to a transport;
// SendBytes events carry the bytes to write.
func (e *Engine) Send(p packet.Packet) ([]Event, error) {
	if e.closed() {
		return nil, ErrClosed
	}
	if err := packet.CheckRole(e.role, p.Kind()); err != nil {
		return nil, err
	}
	if err := packet.CheckVersion(e.version, p.Version()); err != nil {
		return nil, err
	}
	if e.peerMaxPacketSize > 0 && uint32(p.Size()) > e.peerMaxPacketSize {
		return nil, ErrPacketTooLarge
	}

	switch pkt := p.(type) {
	case *packet.ConnectPacket:
		return e.sendConnect(pkt)
	case *packet.ConnackPacket:
		return e.sendConnack(pkt)
	case *packet.PublishPacket:
		return e.sendPublish(pkt)
	case *packet.DisconnectPacket:
		return e.sendDisconnect(pkt)
	case *packet.PubackPacket:
		e.completeInboundFlow()
		return e.sendEstablished(p)
	case *packet.PubcompPacket:
		e.completeInboundFlow()
		return e.sendEstablished(p)
	case *packet.PubrecPacket:
		if !pkt.ReasonCode.Success() {
			e.completeInboundFlow()
		}
		return e.sendEstablished(p)
	default:
		return e.sendEstablished(p)
	}
}

func (e *Engine) sendConnect(pkt *packet.ConnectPacket) ([]Event, error) {
	if e.state != stateUnconnected {
		return nil, ErrAlreadyConnected
	}
	e.version = pkt.Version()
	e.keepAlive = secondsToDuration(pkt.KeepAlive)
	e.pingreqSendInterval = e.keepAlive
	e.cleanSession = pkt.CleanStart
	e.state = stateAwaitingPeer

	events := []Event{SendBytes{Data: pkt.AppendTo(nil)}}
	events = append(events, e.armIdleTimerIfClient()...)
	return events, nil
}

func (e *Engine) sendConnack(pkt *packet.ConnackPacket) ([]Event, error) {
	if e.state != stateAwaitingPeer {
		return nil, ErrNotConnected
	}
	events := []Event{SendBytes{Data: pkt.AppendTo(nil)}}
	if pkt.ReasonCode.Success() {
		e.state = stateConnected
	} else {
		e.state = stateClosed
		events = append(events, CloseTransport{})
	}
	return events, nil
}

func (e *Engine) sendPublish(pkt *packet.PublishPacket) ([]Event, error) {
	if !e.Connected() {
		if pkt.QoS != packet.QoS0 && !e.cfg.EnqueueOfflineOnZeroReceiveMaximum {
			return nil, ErrNotConnected
		}
		if err := e.offline.Push(pkt); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if pkt.QoS != packet.QoS0 && e.sentUnacked >= e.peerReceiveMaximum {
		return nil, ErrReceiveMaximumExceeded
	}

	e.applySendAlias(pkt)

	if pkt.QoS != packet.QoS0 {
		if err := e.inflight.PutPublish(pkt); err != nil {
			return nil, err
		}
		e.sentUnacked++
	}

	events := []Event{SendBytes{Data: pkt.AppendTo(nil)}}
	events = append(events, e.armIdleTimerIfClient()...)
	return events, nil
}

// applySendAlias opportunistically assigns or reuses a Topic Alias for an
// outbound v5.0 Publish that did not already specify one explicitly,
// shrinking the topic name on the wire on repeat publishes to the same
// topic (MQTT 5.0 §3.3.2.3.4).
func (e *Engine) applySendAlias(pkt *packet.PublishPacket) {
	if e.version != packet.V5_0 || pkt.TopicName == "" {
		return
	}
	if _, has := pkt.Properties.Get(property.TopicAlias); has {
		return
	}
	aliasValue, omit := e.sendAlias.Resolve(pkt.TopicName)
	if aliasValue == 0 {
		return
	}
	if err := pkt.Properties.Add(property.KindPublish, property.TopicAlias, aliasValue); err != nil {
		return
	}
	if omit {
		pkt.TopicName = ""
	}
}

func (e *Engine) sendDisconnect(pkt *packet.DisconnectPacket) ([]Event, error) {
	data := pkt.AppendTo(nil)
	e.state = stateClosed
	return []Event{
		SendBytes{Data: data},
		CancelTimer{Timer: PingreqSend},
		CancelTimer{Timer: PingreqRecv},
		CancelTimer{Timer: PingrespRecv},
		CloseTransport{},
	}, nil
}

func (e *Engine) sendEstablished(p packet.Packet) ([]Event, error) {
	if !e.Connected() {
		return nil, ErrNotConnected
	}
	events := []Event{SendBytes{Data: p.AppendTo(nil)}}
	events = append(events, e.armIdleTimerIfClient()...)
	return events, nil
}

// armIdleTimerIfClient re-arms the client's PINGREQ idle timer after any
// outbound traffic, per MQTT 5.0 §3.1.2.10 ("any Network Traffic sent").
func (e *Engine) armIdleTimerIfClient() []Event {
	if e.role != packet.RoleClient || e.pingreqSendInterval <= 0 {
		return nil
	}
	return []Event{ArmTimer{Timer: PingreqSend, Duration: e.pingreqSendInterval}}
}
