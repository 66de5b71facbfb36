package packet

import (
	"github.com/axmq/mqttengine/property"
	"github.com/axmq/mqttengine/wire"
)

// Connect is the CONNECT packet, shared by both protocol versions; the
// Version field selects which on-wire variant Parse/AppendTo produce.
// Properties is empty and ignored on a V3_1_1 connect.
type ConnectPacket struct {
	version Version

	ProtocolName    string
	CleanStart      bool // "Clean Session" pre-v5.0
	WillFlag        bool
	WillQoS         QoS
	WillRetain      bool
	UsernameFlag    bool
	PasswordFlag    bool
	KeepAlive       uint16
	ClientID        string
	Username        string
	Password        []byte

	Properties     property.Set
	WillProperties property.Set
	WillTopic      string
	WillPayload    []byte
}

// ConnectOptions are the semantic fields a host supplies to build a Connect.
type ConnectOptions struct {
	CleanStart     bool
	WillFlag       bool
	WillQoS        QoS
	WillRetain     bool
	KeepAlive      uint16
	ClientID       string
	Username       string
	HasUsername    bool
	Password       []byte
	HasPassword    bool
	Properties     property.Set
	WillProperties property.Set
	WillTopic      string
	WillPayload    []byte
}

// NewConnect validates a CONNECT's invariants and builds one tagged with
// version.
func NewConnect(version Version, opts ConnectOptions) (*ConnectPacket, error) {
	if version != V3_1_1 && version != V5_0 {
		return nil, ErrUnsupportedProtocolVersion
	}
	if !opts.WillFlag {
		if opts.WillQoS != QoS0 || opts.WillRetain {
			return nil, ErrProtocolError
		}
		if opts.WillTopic != "" || len(opts.WillPayload) != 0 {
			return nil, ErrProtocolError
		}
	} else if !opts.WillQoS.Valid() {
		return nil, ErrInvalidQoS
	}
	if opts.HasPassword && !opts.HasUsername {
		return nil, ErrProtocolError
	}
	if opts.WillTopic != "" {
		if err := ValidateTopicName(opts.WillTopic); err != nil {
			return nil, err
		}
	}

	return &ConnectPacket{
		version:        version,
		ProtocolName:   "MQTT",
		CleanStart:     opts.CleanStart,
		WillFlag:       opts.WillFlag,
		WillQoS:        opts.WillQoS,
		WillRetain:     opts.WillRetain,
		UsernameFlag:   opts.HasUsername,
		PasswordFlag:   opts.HasPassword,
		KeepAlive:      opts.KeepAlive,
		ClientID:       opts.ClientID,
		Username:       opts.Username,
		Password:       opts.Password,
		Properties:     opts.Properties,
		WillProperties: opts.WillProperties,
		WillTopic:      opts.WillTopic,
		WillPayload:    opts.WillPayload,
	}, nil
}

func (c *ConnectPacket) Kind() Kind       { return Connect }
func (c *ConnectPacket) Version() Version { return c.version }
func (c *ConnectPacket) PacketID() (uint32, bool) { return 0, false }

// PeekProtocolVersion parses only the CONNECT variable header's protocol
// name and level, without committing to a full parse. The server-role
// engine uses this to detect the peer's protocol version before parsing
// the remainder of the packet.
func PeekProtocolVersion(body []byte) (Version, int, error) {
	name, n, err := wire.DecodeString(body)
	if err != nil {
		return 0, 0, err
	}
	if name.String() != "MQTT" {
		return 0, 0, ErrInvalidProtocolName
	}
	if len(body) < n+1 {
		return 0, 0, wire.ErrIncomplete
	}
	level := body[n]
	switch level {
	case byte(V3_1_1):
		return V3_1_1, n + 1, nil
	case byte(V5_0):
		return V5_0, n + 1, nil
	default:
		return 0, n + 1, ErrUnsupportedProtocolVersion
	}
}

// ParseConnect parses a CONNECT packet body (the bytes following the fixed
// header) for an already-committed version.
func ParseConnect(version Version, body []byte) (*ConnectPacket, int, error) {
	version2, n, err := PeekProtocolVersion(body)
	if err != nil {
		return nil, 0, err
	}
	if version2 != version {
		return nil, 0, ErrVersionMismatch
	}
	offset := n

	if len(body) < offset+1 {
		return nil, 0, wire.ErrIncomplete
	}
	connectFlags := body[offset]
	offset++
	if connectFlags&0x01 != 0 {
		return nil, 0, ErrMalformedPacket // reserved bit must be 0
	}
	cleanStart := connectFlags&0x02 != 0
	willFlag := connectFlags&0x04 != 0
	willQoS := QoS((connectFlags & 0x18) >> 3)
	willRetain := connectFlags&0x20 != 0
	hasPassword := connectFlags&0x40 != 0
	hasUsername := connectFlags&0x80 != 0

	if !willFlag && (willQoS != QoS0 || willRetain) {
		return nil, 0, ErrMalformedPacket
	}
	if !willQoS.Valid() {
		return nil, 0, ErrMalformedPacket
	}
	if hasPassword && !hasUsername {
		return nil, 0, ErrMalformedPacket
	}

	keepAlive, m, err := decodePacketID(body[offset:]) // reuse: 2-byte big-endian field
	if err != nil {
		return nil, 0, err
	}
	offset += m

	c := &ConnectPacket{
		version:      version,
		ProtocolName: "MQTT",
		CleanStart:   cleanStart,
		WillFlag:     willFlag,
		WillQoS:      willQoS,
		WillRetain:   willRetain,
		UsernameFlag: hasUsername,
		PasswordFlag: hasPassword,
		KeepAlive:    keepAlive,
	}

	if version == V5_0 {
		props, consumed, err := property.Decode(property.KindConnect, body[offset:])
		if err != nil {
			return nil, 0, err
		}
		c.Properties = props
		offset += consumed
	}

	clientID, m, err := wire.DecodeString(body[offset:])
	if err != nil {
		return nil, 0, err
	}
	c.ClientID = clientID.String()
	offset += m

	if willFlag {
		if version == V5_0 {
			props, consumed, err := property.Decode(property.KindConnect, body[offset:])
			if err != nil {
				return nil, 0, err
			}
			c.WillProperties = props
			offset += consumed
		}
		willTopic, m, err := wire.DecodeString(body[offset:])
		if err != nil {
			return nil, 0, err
		}
		if err := ValidateTopicName(willTopic.String()); err != nil {
			return nil, 0, err
		}
		c.WillTopic = willTopic.String()
		offset += m

		willPayload, m, err := wire.DecodeBinary(body[offset:])
		if err != nil {
			return nil, 0, err
		}
		c.WillPayload = append([]byte(nil), willPayload.Bytes()...)
		offset += m
	}

	if hasUsername {
		username, m, err := wire.DecodeString(body[offset:])
		if err != nil {
			return nil, 0, err
		}
		c.Username = username.String()
		offset += m
	}
	if hasPassword {
		password, m, err := wire.DecodeBinary(body[offset:])
		if err != nil {
			return nil, 0, err
		}
		c.Password = append([]byte(nil), password.Bytes()...)
		offset += m
	}

	return c, offset, nil
}

func (c *ConnectPacket) connectFlags() byte {
	var f byte
	if c.CleanStart {
		f |= 0x02
	}
	if c.WillFlag {
		f |= 0x04
		f |= byte(c.WillQoS) << 3
		if c.WillRetain {
			f |= 0x20
		}
	}
	if c.PasswordFlag {
		f |= 0x40
	}
	if c.UsernameFlag {
		f |= 0x80
	}
	return f
}

func (c *ConnectPacket) variableHeaderAndPayload() []byte {
	var buf []byte
	name, _ := wire.NewString(c.ProtocolName)
	buf = name.Encode(buf)
	buf = append(buf, byte(c.version))
	buf = append(buf, c.connectFlags())
	ka := c.KeepAlive
	buf = append(buf, byte(ka>>8), byte(ka))

	if c.version == V5_0 {
		buf, _ = c.Properties.Encode(buf)
	}

	clientID, _ := wire.NewString(c.ClientID)
	buf = clientID.Encode(buf)

	if c.WillFlag {
		if c.version == V5_0 {
			buf, _ = c.WillProperties.Encode(buf)
		}
		willTopic, _ := wire.NewString(c.WillTopic)
		buf = willTopic.Encode(buf)
		willPayload, _ := wire.NewBinary(c.WillPayload)
		buf = willPayload.Encode(buf)
	}
	if c.UsernameFlag {
		username, _ := wire.NewString(c.Username)
		buf = username.Encode(buf)
	}
	if c.PasswordFlag {
		password, _ := wire.NewBinary(c.Password)
		buf = password.Encode(buf)
	}
	return buf
}

func (c *ConnectPacket) Size() int {
	body := c.variableHeaderAndPayload()
	return fixedHeaderSize(uint32(len(body))) + len(body)
}

func (c *ConnectPacket) AppendTo(dst []byte) []byte {
	body := c.variableHeaderAndPayload()
	dst, _ = EncodeFixedHeader(dst, Connect, 0, uint32(len(body)))
	return append(dst, body...)
}

func (c *ConnectPacket) Buffers() [][]byte {
	return [][]byte{c.AppendTo(nil)}
}
