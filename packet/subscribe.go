package packet

import (
	"github.com/axmq/mqttengine/property"
	"github.com/axmq/mqttengine/wire"
)

// RetainHandling controls whether a broker sends retained messages when a
// subscription is established (MQTT 5.0 §3.8.3.1).
type RetainHandling byte

const (
	SendRetainedAlways         RetainHandling = 0
	SendRetainedIfNewSubscribe RetainHandling = 1
	DoNotSendRetained          RetainHandling = 2
)

// Subscription is one Topic-Filter/options pair within a SUBSCRIBE packet.
type Subscription struct {
	Filter            string
	QoS               QoS
	NoLocal           bool // v5.0 only
	RetainAsPublished bool // v5.0 only
	RetainHandling    RetainHandling
}

func (s Subscription) optionsByte() byte {
	b := byte(s.QoS)
	if s.NoLocal {
		b |= 0x04
	}
	if s.RetainAsPublished {
		b |= 0x08
	}
	b |= byte(s.RetainHandling) << 4
	return b
}

// Subscribe is the SUBSCRIBE packet.
type SubscribePacket struct {
	version Version

	ID            uint16
	Properties    property.Set
	Subscriptions []Subscription
}

func NewSubscribe(version Version, id uint16, props property.Set, subs []Subscription) (*SubscribePacket, error) {
	if version != V3_1_1 && version != V5_0 {
		return nil, ErrUnsupportedProtocolVersion
	}
	if id == 0 {
		return nil, ErrZeroPacketID
	}
	if len(subs) == 0 {
		return nil, ErrEmptySubscriptionList
	}
	for _, s := range subs {
		if !s.QoS.Valid() {
			return nil, ErrInvalidQoS
		}
		if err := ValidateTopicFilter(s.Filter); err != nil {
			return nil, err
		}
	}
	return &SubscribePacket{version: version, ID: id, Properties: props, Subscriptions: append([]Subscription(nil), subs...)}, nil
}

func (s *SubscribePacket) Kind() Kind               { return Subscribe }
func (s *SubscribePacket) Version() Version         { return s.version }
func (s *SubscribePacket) PacketID() (uint32, bool) { return uint32(s.ID), true }

func ParseSubscribe(version Version, body []byte) (*SubscribePacket, int, error) {
	id, n, err := decodePacketID(body)
	if err != nil {
		return nil, 0, err
	}
	if id == 0 {
		return nil, 0, ErrZeroPacketID
	}
	offset := n

	var props property.Set
	if version == V5_0 {
		p, m, err := property.Decode(property.KindSubscribe, body[offset:])
		if err != nil {
			return nil, 0, err
		}
		props = p
		offset += m
	}

	var subs []Subscription
	for offset < len(body) {
		filter, m, err := wire.DecodeString(body[offset:])
		if err != nil {
			return nil, 0, err
		}
		offset += m
		if err := ValidateTopicFilter(filter.String()); err != nil {
			return nil, 0, err
		}
		if offset >= len(body) {
			return nil, 0, wire.ErrIncomplete
		}
		opts := body[offset]
		offset++
		if opts&0xC0 != 0 {
			return nil, 0, ErrMalformedPacket
		}
		sub := Subscription{
			Filter:            filter.String(),
			QoS:               QoS(opts & 0x03),
			NoLocal:           opts&0x04 != 0,
			RetainAsPublished: opts&0x08 != 0,
			RetainHandling:    RetainHandling((opts & 0x30) >> 4),
		}
		if !sub.QoS.Valid() {
			return nil, 0, ErrInvalidQoS
		}
		subs = append(subs, sub)
	}
	if len(subs) == 0 {
		return nil, 0, ErrEmptySubscriptionList
	}

	return &SubscribePacket{version: version, ID: id, Properties: props, Subscriptions: subs}, offset, nil
}

func (s *SubscribePacket) body() []byte {
	b := packetIDBytes(s.ID)
	buf := []byte{b[0], b[1]}
	if s.version == V5_0 {
		buf, _ = s.Properties.Encode(buf)
	}
	for _, sub := range s.Subscriptions {
		f, _ := wire.NewString(sub.Filter)
		buf = f.Encode(buf)
		buf = append(buf, sub.optionsByte())
	}
	return buf
}

func (s *SubscribePacket) Size() int {
	body := s.body()
	return fixedHeaderSize(uint32(len(body))) + len(body)
}

func (s *SubscribePacket) AppendTo(dst []byte) []byte {
	body := s.body()
	dst, _ = EncodeFixedHeader(dst, Subscribe, 0x02, uint32(len(body)))
	return append(dst, body...)
}

func (s *SubscribePacket) Buffers() [][]byte { return [][]byte{s.AppendTo(nil)} }

// Suback is the SUBACK packet.
type SubackPacket struct {
	version Version

	ID          uint16
	Properties  property.Set
	ReasonCodes []ReasonCode
}

func NewSuback(version Version, id uint16, props property.Set, reasonCodes []ReasonCode) (*SubackPacket, error) {
	if version != V3_1_1 && version != V5_0 {
		return nil, ErrUnsupportedProtocolVersion
	}
	if id == 0 {
		return nil, ErrZeroPacketID
	}
	if len(reasonCodes) == 0 {
		return nil, ErrEmptySubscriptionList
	}
	return &SubackPacket{version: version, ID: id, Properties: props, ReasonCodes: append([]ReasonCode(nil), reasonCodes...)}, nil
}

func (s *SubackPacket) Kind() Kind               { return Suback }
func (s *SubackPacket) Version() Version         { return s.version }
func (s *SubackPacket) PacketID() (uint32, bool) { return uint32(s.ID), true }

func ParseSuback(version Version, body []byte) (*SubackPacket, int, error) {
	id, n, err := decodePacketID(body)
	if err != nil {
		return nil, 0, err
	}
	if id == 0 {
		return nil, 0, ErrZeroPacketID
	}
	offset := n

	var props property.Set
	if version == V5_0 {
		p, m, err := property.Decode(property.KindSuback, body[offset:])
		if err != nil {
			return nil, 0, err
		}
		props = p
		offset += m
	}

	var codes []ReasonCode
	for offset < len(body) {
		codes = append(codes, ReasonCode(body[offset]))
		offset++
	}
	if len(codes) == 0 {
		return nil, 0, ErrEmptySubscriptionList
	}

	return &SubackPacket{version: version, ID: id, Properties: props, ReasonCodes: codes}, offset, nil
}

func (s *SubackPacket) body() []byte {
	b := packetIDBytes(s.ID)
	buf := []byte{b[0], b[1]}
	if s.version == V5_0 {
		buf, _ = s.Properties.Encode(buf)
	}
	for _, rc := range s.ReasonCodes {
		buf = append(buf, byte(rc))
	}
	return buf
}

func (s *SubackPacket) Size() int {
	body := s.body()
	return fixedHeaderSize(uint32(len(body))) + len(body)
}

func (s *SubackPacket) AppendTo(dst []byte) []byte {
	body := s.body()
	dst, _ = EncodeFixedHeader(dst, Suback, 0, uint32(len(body)))
	return append(dst, body...)
}

func (s *SubackPacket) Buffers() [][]byte { return [][]byte{s.AppendTo(nil)} }
