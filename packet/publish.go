package packet

import (
	"github.com/axmq/mqttengine/property"
	"github.com/axmq/mqttengine/wire"
)

// Publish is the PUBLISH packet. Payload is never copied on construction or
// parse, and Buffers references the same backing array the caller or the
// framer supplied, so a single inbound read buffer can back the payload
// for every interested subscriber without a copy; AppendTo copies the
// payload into its destination.
type PublishPacket struct {
	version Version

	Dup        bool
	QoS        QoS
	Retain     bool
	TopicName  string
	ID         uint16
	Properties property.Set
	Payload    []byte
}

// PublishOptions are the semantic fields a host supplies to build a Publish.
type PublishOptions struct {
	Dup        bool
	QoS        QoS
	Retain     bool
	TopicName  string
	ID         uint16
	Properties property.Set
	Payload    []byte
}

// NewPublish validates a PUBLISH's invariants: DUP is only meaningful at
// QoS>0, a packet ID is required iff QoS>0, and a zero-length topic name
// requires a Topic Alias property (v5.0 only).
func NewPublish(version Version, opts PublishOptions) (*PublishPacket, error) {
	if version != V3_1_1 && version != V5_0 {
		return nil, ErrUnsupportedProtocolVersion
	}
	if !opts.QoS.Valid() {
		return nil, ErrInvalidQoS
	}
	if opts.QoS == QoS0 {
		if opts.Dup {
			return nil, ErrDupOnQoS0
		}
		if opts.ID != 0 {
			return nil, ErrUnexpectedPacketID
		}
	} else if opts.ID == 0 {
		return nil, ErrZeroPacketID
	}

	if opts.TopicName == "" {
		if version != V5_0 {
			return nil, ErrEmptyTopicWithoutAlias
		}
		if _, ok := opts.Properties.Get(property.TopicAlias); !ok {
			return nil, ErrEmptyTopicWithoutAlias
		}
	} else if err := ValidateTopicName(opts.TopicName); err != nil {
		return nil, err
	}

	return &PublishPacket{
		version:    version,
		Dup:        opts.Dup,
		QoS:        opts.QoS,
		Retain:     opts.Retain,
		TopicName:  opts.TopicName,
		ID:         opts.ID,
		Properties: opts.Properties,
		Payload:    opts.Payload,
	}, nil
}

func (p *PublishPacket) Kind() Kind       { return Publish }
func (p *PublishPacket) Version() Version { return p.version }

func (p *PublishPacket) PacketID() (uint32, bool) { return uint32(p.ID), p.QoS != QoS0 }

// ParsePublish parses a PUBLISH packet body given the fixed-header flags
// byte (DUP/QoS/RETAIN live there, not in the variable header).
func ParsePublish(version Version, flags byte, body []byte) (*PublishPacket, int, error) {
	dup, qos, retain := PublishFlags(flags)
	if !qos.Valid() {
		return nil, 0, ErrInvalidQoS
	}
	if qos == QoS0 && dup {
		return nil, 0, ErrDupOnQoS0
	}

	topic, n, err := wire.DecodeString(body)
	if err != nil {
		return nil, 0, err
	}
	offset := n

	var pktID uint16
	if qos != QoS0 {
		id, m, err := decodePacketID(body[offset:])
		if err != nil {
			return nil, 0, err
		}
		if id == 0 {
			return nil, 0, ErrZeroPacketID
		}
		pktID = id
		offset += m
	}

	p := &PublishPacket{
		version:   version,
		Dup:       dup,
		QoS:       qos,
		Retain:    retain,
		TopicName: topic.String(),
		ID:        pktID,
	}

	if topic.Len() == 0 {
		if version != V5_0 {
			return nil, 0, ErrEmptyTopicWithoutAlias
		}
	} else if err := ValidateTopicName(p.TopicName); err != nil {
		return nil, 0, err
	}

	if version == V5_0 {
		props, m, err := property.Decode(property.KindPublish, body[offset:])
		if err != nil {
			return nil, 0, err
		}
		if topic.Len() == 0 {
			if _, ok := props.Get(property.TopicAlias); !ok {
				return nil, 0, ErrEmptyTopicWithoutAlias
			}
		}
		p.Properties = props
		offset += m
	}

	p.Payload = body[offset:]
	return p, len(body), nil
}

func (p *PublishPacket) variableHeader() []byte {
	var buf []byte
	topic, _ := wire.NewString(p.TopicName)
	buf = topic.Encode(buf)
	if p.QoS != QoS0 {
		b := packetIDBytes(p.ID)
		buf = append(buf, b[0], b[1])
	}
	if p.version == V5_0 {
		buf, _ = p.Properties.Encode(buf)
	}
	return buf
}

func (p *PublishPacket) Size() int {
	vh := p.variableHeader()
	remaining := len(vh) + len(p.Payload)
	return fixedHeaderSize(uint32(remaining)) + remaining
}

func (p *PublishPacket) flags() byte {
	return EncodePublishFlags(p.Dup, p.QoS, p.Retain)
}

func (p *PublishPacket) AppendTo(dst []byte) []byte {
	vh := p.variableHeader()
	remaining := len(vh) + len(p.Payload)
	dst, _ = EncodeFixedHeader(dst, Publish, p.flags(), uint32(remaining))
	dst = append(dst, vh...)
	return append(dst, p.Payload...)
}

// Buffers returns the variable header and the payload as two separate
// slices, so a host can write the payload directly from the shared
// backing array without copying it into a single contiguous buffer.
func (p *PublishPacket) Buffers() [][]byte {
	vh := p.variableHeader()
	remaining := len(vh) + len(p.Payload)
	header, _ := EncodeFixedHeader(nil, Publish, p.flags(), uint32(remaining))
	return [][]byte{header, vh, p.Payload}
}
