package packet

import "github.com/axmq/mqttengine/wire"

// DecodeFixedHeader parses the fixed header from the front of data: the
// type+flags byte and the Variable Byte Integer remaining length. It
// returns the header and the number of bytes consumed.
func DecodeFixedHeader(data []byte) (FixedHeader, int, error) {
	if len(data) < 1 {
		return FixedHeader{}, 0, wire.ErrIncomplete
	}

	kind := Kind(data[0] >> 4)
	if kind == Reserved {
		return FixedHeader{}, 0, ErrInvalidReservedKind
	}
	if kind > Auth {
		return FixedHeader{}, 0, ErrInvalidKind
	}
	flags := data[0] & 0x0F

	if kind != Publish {
		if want, ok := reservedFlags[kind]; ok && flags != want {
			return FixedHeader{}, 0, ErrInvalidFlags
		}
	}

	length, n, err := wire.DecodeVarInt(data[1:])
	if err != nil {
		if err == wire.ErrIncomplete {
			return FixedHeader{}, 0, wire.ErrIncomplete
		}
		return FixedHeader{}, 0, ErrMalformedPacket
	}

	return FixedHeader{Kind: kind, Flags: flags, RemainingLength: length}, 1 + n, nil
}

// EncodeFixedHeader appends the fixed header (type+flags byte and
// remaining-length Variable Byte Integer) to dst.
func EncodeFixedHeader(dst []byte, kind Kind, flags byte, remainingLength uint32) ([]byte, error) {
	dst = append(dst, byte(kind)<<4|flags)
	return wire.AppendVarInt(dst, remainingLength)
}

func fixedHeaderSize(remainingLength uint32) int {
	return 1 + wire.SizeVarInt(remainingLength)
}

func packetIDBytes(id uint16) [2]byte {
	return [2]byte{byte(id >> 8), byte(id)}
}

func decodePacketID(data []byte) (uint16, int, error) {
	if len(data) < 2 {
		return 0, 0, wire.ErrIncomplete
	}
	return uint16(data[0])<<8 | uint16(data[1]), 2, nil
}
