package packet

import (
	"github.com/axmq/mqttengine/property"
)

// ack is the shared shape of PUBACK, PUBREC, PUBREL and PUBCOMP: a packet
// ID, and on v5.0 (when anything beyond plain success needs saying) a
// reason code and a property set. v3.1.1 variants of these packets carry
// only the packet ID.
type ack struct {
	kind    Kind
	version Version

	ID         uint16
	ReasonCode ReasonCode
	Properties property.Set
}

func newAck(kind Kind, version Version, id uint16, reasonCode ReasonCode, props property.Set) (*ack, error) {
	if version != V3_1_1 && version != V5_0 {
		return nil, ErrUnsupportedProtocolVersion
	}
	if id == 0 {
		return nil, ErrZeroPacketID
	}
	return &ack{kind: kind, version: version, ID: id, ReasonCode: reasonCode, Properties: props}, nil
}

func (a *ack) Kind() Kind               { return a.kind }
func (a *ack) Version() Version         { return a.version }
func (a *ack) PacketID() (uint32, bool) { return uint32(a.ID), true }

func parseAck(kind Kind, version Version, body []byte) (*ack, int, error) {
	id, n, err := decodePacketID(body)
	if err != nil {
		return nil, 0, err
	}
	if id == 0 {
		return nil, 0, ErrZeroPacketID
	}
	offset := n

	a := &ack{kind: kind, version: version, ID: id, ReasonCode: ReasonSuccess}

	// A v5.0 ack may omit the reason code and properties entirely when the
	// reason is Success and there are no properties (MQTT 5.0 §3.4.2.1 and
	// siblings): the variable header then ends at the packet ID.
	if version == V5_0 && len(body) > offset {
		a.ReasonCode = ReasonCode(body[offset])
		offset++
		if len(body) > offset {
			props, m, err := property.Decode(ackPropertyKind(kind), body[offset:])
			if err != nil {
				return nil, 0, err
			}
			a.Properties = props
			offset += m
		}
	}

	return a, offset, nil
}

func ackPropertyKind(k Kind) property.Kind {
	switch k {
	case Puback:
		return property.KindPuback
	case Pubrec:
		return property.KindPubrec
	case Pubrel:
		return property.KindPubrel
	case Pubcomp:
		return property.KindPubcomp
	default:
		return 0
	}
}

func (a *ack) body() []byte {
	b := packetIDBytes(a.ID)
	buf := []byte{b[0], b[1]}
	if a.version != V5_0 {
		return buf
	}
	if a.ReasonCode == ReasonSuccess && a.Properties.Len() == 0 {
		return buf
	}
	buf = append(buf, byte(a.ReasonCode))
	buf, _ = a.Properties.Encode(buf)
	return buf
}

func (a *ack) Size() int {
	body := a.body()
	return fixedHeaderSize(uint32(len(body))) + len(body)
}

func (a *ack) flags() byte {
	if a.kind == Pubrel {
		return 0x02
	}
	return 0
}

func (a *ack) AppendTo(dst []byte) []byte {
	body := a.body()
	dst, _ = EncodeFixedHeader(dst, a.kind, a.flags(), uint32(len(body)))
	return append(dst, body...)
}

func (a *ack) Buffers() [][]byte { return [][]byte{a.AppendTo(nil)} }

// Puback is the PUBACK packet.
type PubackPacket struct{ ack }

func NewPuback(version Version, id uint16, reasonCode ReasonCode, props property.Set) (*PubackPacket, error) {
	a, err := newAck(Puback, version, id, reasonCode, props)
	if err != nil {
		return nil, err
	}
	return &PubackPacket{*a}, nil
}

func ParsePuback(version Version, body []byte) (*PubackPacket, int, error) {
	a, n, err := parseAck(Puback, version, body)
	if err != nil {
		return nil, 0, err
	}
	return &PubackPacket{*a}, n, nil
}

// Pubrec is the PUBREC packet.
type PubrecPacket struct{ ack }

func NewPubrec(version Version, id uint16, reasonCode ReasonCode, props property.Set) (*PubrecPacket, error) {
	a, err := newAck(Pubrec, version, id, reasonCode, props)
	if err != nil {
		return nil, err
	}
	return &PubrecPacket{*a}, nil
}

func ParsePubrec(version Version, body []byte) (*PubrecPacket, int, error) {
	a, n, err := parseAck(Pubrec, version, body)
	if err != nil {
		return nil, 0, err
	}
	return &PubrecPacket{*a}, n, nil
}

// Pubrel is the PUBREL packet. Its fixed-header flags are always 0x02.
type PubrelPacket struct{ ack }

func NewPubrel(version Version, id uint16, reasonCode ReasonCode, props property.Set) (*PubrelPacket, error) {
	a, err := newAck(Pubrel, version, id, reasonCode, props)
	if err != nil {
		return nil, err
	}
	return &PubrelPacket{*a}, nil
}

func ParsePubrel(version Version, flags byte, body []byte) (*PubrelPacket, int, error) {
	if flags != 0x02 {
		return nil, 0, ErrInvalidFlags
	}
	a, n, err := parseAck(Pubrel, version, body)
	if err != nil {
		return nil, 0, err
	}
	return &PubrelPacket{*a}, n, nil
}

// Pubcomp is the PUBCOMP packet.
type PubcompPacket struct{ ack }

func NewPubcomp(version Version, id uint16, reasonCode ReasonCode, props property.Set) (*PubcompPacket, error) {
	a, err := newAck(Pubcomp, version, id, reasonCode, props)
	if err != nil {
		return nil, err
	}
	return &PubcompPacket{*a}, nil
}

func ParsePubcomp(version Version, body []byte) (*PubcompPacket, int, error) {
	a, n, err := parseAck(Pubcomp, version, body)
	if err != nil {
		return nil, 0, err
	}
	return &PubcompPacket{*a}, n, nil
}
