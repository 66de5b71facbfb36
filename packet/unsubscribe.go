package packet

import (
	"github.com/axmq/mqttengine/property"
	"github.com/axmq/mqttengine/wire"
)

// UnsubscribePacket is the UNSUBSCRIBE packet.
type UnsubscribePacket struct {
	version Version

	ID         uint16
	Properties property.Set
	Filters    []string
}

func NewUnsubscribe(version Version, id uint16, props property.Set, filters []string) (*UnsubscribePacket, error) {
	if version != V3_1_1 && version != V5_0 {
		return nil, ErrUnsupportedProtocolVersion
	}
	if id == 0 {
		return nil, ErrZeroPacketID
	}
	if len(filters) == 0 {
		return nil, ErrEmptyUnsubscribeList
	}
	for _, f := range filters {
		if err := ValidateTopicFilter(f); err != nil {
			return nil, err
		}
	}
	return &UnsubscribePacket{version: version, ID: id, Properties: props, Filters: append([]string(nil), filters...)}, nil
}

func (u *UnsubscribePacket) Kind() Kind               { return Unsubscribe }
func (u *UnsubscribePacket) Version() Version         { return u.version }
func (u *UnsubscribePacket) PacketID() (uint32, bool) { return uint32(u.ID), true }

func ParseUnsubscribe(version Version, body []byte) (*UnsubscribePacket, int, error) {
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
		p, m, err := property.Decode(property.KindUnsubscribe, body[offset:])
		if err != nil {
			return nil, 0, err
		}
		props = p
		offset += m
	}

	var filters []string
	for offset < len(body) {
		f, m, err := wire.DecodeString(body[offset:])
		if err != nil {
			return nil, 0, err
		}
		offset += m
		if err := ValidateTopicFilter(f.String()); err != nil {
			return nil, 0, err
		}
		filters = append(filters, f.String())
	}
	if len(filters) == 0 {
		return nil, 0, ErrEmptyUnsubscribeList
	}

	return &UnsubscribePacket{version: version, ID: id, Properties: props, Filters: filters}, offset, nil
}

func (u *UnsubscribePacket) body() []byte {
	b := packetIDBytes(u.ID)
	buf := []byte{b[0], b[1]}
	if u.version == V5_0 {
		buf, _ = u.Properties.Encode(buf)
	}
	for _, f := range u.Filters {
		s, _ := wire.NewString(f)
		buf = s.Encode(buf)
	}
	return buf
}

func (u *UnsubscribePacket) Size() int {
	body := u.body()
	return fixedHeaderSize(uint32(len(body))) + len(body)
}

func (u *UnsubscribePacket) AppendTo(dst []byte) []byte {
	body := u.body()
	dst, _ = EncodeFixedHeader(dst, Unsubscribe, 0x02, uint32(len(body)))
	return append(dst, body...)
}

func (u *UnsubscribePacket) Buffers() [][]byte { return [][]byte{u.AppendTo(nil)} }

// UnsubackPacket is the UNSUBACK packet. On v3.1.1 it carries no reason
// codes at all, just the packet ID.
type UnsubackPacket struct {
	version Version

	ID          uint16
	Properties  property.Set
	ReasonCodes []ReasonCode // v5.0 only
}

func NewUnsuback(version Version, id uint16, props property.Set, reasonCodes []ReasonCode) (*UnsubackPacket, error) {
	if version != V3_1_1 && version != V5_0 {
		return nil, ErrUnsupportedProtocolVersion
	}
	if id == 0 {
		return nil, ErrZeroPacketID
	}
	if version == V5_0 && len(reasonCodes) == 0 {
		return nil, ErrEmptyUnsubscribeList
	}
	return &UnsubackPacket{version: version, ID: id, Properties: props, ReasonCodes: append([]ReasonCode(nil), reasonCodes...)}, nil
}

func (u *UnsubackPacket) Kind() Kind               { return Unsuback }
func (u *UnsubackPacket) Version() Version         { return u.version }
func (u *UnsubackPacket) PacketID() (uint32, bool) { return uint32(u.ID), true }

func ParseUnsuback(version Version, body []byte) (*UnsubackPacket, int, error) {
	id, n, err := decodePacketID(body)
	if err != nil {
		return nil, 0, err
	}
	if id == 0 {
		return nil, 0, ErrZeroPacketID
	}
	offset := n

	u := &UnsubackPacket{version: version, ID: id}

	if version == V5_0 {
		props, m, err := property.Decode(property.KindUnsuback, body[offset:])
		if err != nil {
			return nil, 0, err
		}
		u.Properties = props
		offset += m

		var codes []ReasonCode
		for offset < len(body) {
			codes = append(codes, ReasonCode(body[offset]))
			offset++
		}
		if len(codes) == 0 {
			return nil, 0, ErrEmptyUnsubscribeList
		}
		u.ReasonCodes = codes
	}

	return u, offset, nil
}

func (u *UnsubackPacket) body() []byte {
	b := packetIDBytes(u.ID)
	buf := []byte{b[0], b[1]}
	if u.version != V5_0 {
		return buf
	}
	buf, _ = u.Properties.Encode(buf)
	for _, rc := range u.ReasonCodes {
		buf = append(buf, byte(rc))
	}
	return buf
}

func (u *UnsubackPacket) Size() int {
	body := u.body()
	return fixedHeaderSize(uint32(len(body))) + len(body)
}

func (u *UnsubackPacket) AppendTo(dst []byte) []byte {
	body := u.body()
	dst, _ = EncodeFixedHeader(dst, Unsuback, 0, uint32(len(body)))
	return append(dst, body...)
}

func (u *UnsubackPacket) Buffers() [][]byte { return [][]byte{u.AppendTo(nil)} }
