package engine

import (
	"github.com/axmq/mqttengine/frame"
	"github.com/axmq/mqttengine/packet"
)

type rawPacket = frame.RawPacket

// parseRaw decodes a framed packet body into its typed representation,
// given the negotiated (or just-peeked, for a server's first CONNECT)
// protocol version.
func parseRaw(version packet.Version, raw rawPacket) (packet.Packet, error) {
	switch raw.Header.Kind {
	case packet.Connect:
		p, _, err := packet.ParseConnect(version, raw.Body)
		return p, err
	case packet.Connack:
		p, _, err := packet.ParseConnack(version, raw.Body)
		return p, err
	case packet.Publish:
		p, _, err := packet.ParsePublish(version, raw.Header.Flags, raw.Body)
		return p, err
	case packet.Puback:
		p, _, err := packet.ParsePuback(version, raw.Body)
		return p, err
	case packet.Pubrec:
		p, _, err := packet.ParsePubrec(version, raw.Body)
		return p, err
	case packet.Pubrel:
		p, _, err := packet.ParsePubrel(version, raw.Header.Flags, raw.Body)
		return p, err
	case packet.Pubcomp:
		p, _, err := packet.ParsePubcomp(version, raw.Body)
		return p, err
	case packet.Subscribe:
		p, _, err := packet.ParseSubscribe(version, raw.Body)
		return p, err
	case packet.Suback:
		p, _, err := packet.ParseSuback(version, raw.Body)
		return p, err
	case packet.Unsubscribe:
		p, _, err := packet.ParseUnsubscribe(version, raw.Body)
		return p, err
	case packet.Unsuback:
		p, _, err := packet.ParseUnsuback(version, raw.Body)
		return p, err
	case packet.Pingreq:
		p, err := packet.ParsePingreq(version)
		return p, err
	case packet.Pingresp:
		p, err := packet.ParsePingresp(version)
		return p, err
	case packet.Disconnect:
		p, _, err := packet.ParseDisconnect(version, raw.Body)
		return p, err
	case packet.Auth:
		p, _, err := packet.ParseAuth(raw.Body)
		return p, err
	default:
		return nil, packet.ErrInvalidKind
	}
}
