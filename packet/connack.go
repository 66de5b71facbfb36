package packet

import (
	"github.com/axmq/mqttengine/property"
	"github.com/axmq/mqttengine/wire"
)

// Connack is the CONNACK packet.
type ConnackPacket struct {
	version Version

	SessionPresent bool
	ReasonCode     ReasonCode // V3_1_1 connections use only the legacy subset
	Properties     property.Set
}

// NewConnack builds a Connack tagged with version.
func NewConnack(version Version, sessionPresent bool, reasonCode ReasonCode, props property.Set) (*ConnackPacket, error) {
	if version != V3_1_1 && version != V5_0 {
		return nil, ErrUnsupportedProtocolVersion
	}
	if !reasonCode.Success() && sessionPresent {
		return nil, ErrProtocolError
	}
	return &ConnackPacket{version: version, SessionPresent: sessionPresent, ReasonCode: reasonCode, Properties: props}, nil
}

func (c *ConnackPacket) Kind() Kind               { return Connack }
func (c *ConnackPacket) Version() Version         { return c.version }
func (c *ConnackPacket) PacketID() (uint32, bool) { return 0, false }

func ParseConnack(version Version, body []byte) (*ConnackPacket, int, error) {
	if len(body) < 2 {
		return nil, 0, wire.ErrIncomplete
	}
	ackFlags := body[0]
	if ackFlags&0xFE != 0 {
		return nil, 0, ErrMalformedPacket
	}
	sessionPresent := ackFlags&0x01 != 0
	reasonCode := ReasonCode(body[1])
	offset := 2

	c := &ConnackPacket{version: version, SessionPresent: sessionPresent, ReasonCode: reasonCode}

	if version == V5_0 {
		props, n, err := property.Decode(property.KindConnack, body[offset:])
		if err != nil {
			return nil, 0, err
		}
		c.Properties = props
		offset += n
	}

	if !reasonCode.Success() && sessionPresent {
		return nil, 0, ErrProtocolError
	}

	return c, offset, nil
}

func (c *ConnackPacket) body() []byte {
	var buf []byte
	var flags byte
	if c.SessionPresent {
		flags = 0x01
	}
	buf = append(buf, flags, byte(c.ReasonCode))
	if c.version == V5_0 {
		buf, _ = c.Properties.Encode(buf)
	}
	return buf
}

func (c *ConnackPacket) Size() int {
	body := c.body()
	return fixedHeaderSize(uint32(len(body))) + len(body)
}

func (c *ConnackPacket) AppendTo(dst []byte) []byte {
	body := c.body()
	dst, _ = EncodeFixedHeader(dst, Connack, 0, uint32(len(body)))
	return append(dst, body...)
}

func (c *ConnackPacket) Buffers() [][]byte { return [][]byte{c.AppendTo(nil)} }
