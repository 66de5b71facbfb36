package packet

// PingreqPacket is the PINGREQ packet: a bare fixed header, no variable
// header or payload, identical on both protocol versions.
type PingreqPacket struct{ version Version }

func NewPingreq(version Version) (*PingreqPacket, error) {
	if version != V3_1_1 && version != V5_0 {
		return nil, ErrUnsupportedProtocolVersion
	}
	return &PingreqPacket{version: version}, nil
}

func (p *PingreqPacket) Kind() Kind               { return Pingreq }
func (p *PingreqPacket) Version() Version         { return p.version }
func (p *PingreqPacket) PacketID() (uint32, bool) { return 0, false }
func (p *PingreqPacket) Size() int                { return 2 }

func (p *PingreqPacket) AppendTo(dst []byte) []byte {
	dst, _ = EncodeFixedHeader(dst, Pingreq, 0, 0)
	return dst
}

func (p *PingreqPacket) Buffers() [][]byte { return [][]byte{p.AppendTo(nil)} }

func ParsePingreq(version Version) (*PingreqPacket, error) {
	return &PingreqPacket{version: version}, nil
}

// PingrespPacket is the PINGRESP packet: also a bare fixed header.
type PingrespPacket struct{ version Version }

func NewPingresp(version Version) (*PingrespPacket, error) {
	if version != V3_1_1 && version != V5_0 {
		return nil, ErrUnsupportedProtocolVersion
	}
	return &PingrespPacket{version: version}, nil
}

func (p *PingrespPacket) Kind() Kind               { return Pingresp }
func (p *PingrespPacket) Version() Version         { return p.version }
func (p *PingrespPacket) PacketID() (uint32, bool) { return 0, false }
func (p *PingrespPacket) Size() int                { return 2 }

func (p *PingrespPacket) AppendTo(dst []byte) []byte {
	dst, _ = EncodeFixedHeader(dst, Pingresp, 0, 0)
	return dst
}

func (p *PingrespPacket) Buffers() [][]byte { return [][]byte{p.AppendTo(nil)} }

func ParsePingresp(version Version) (*PingrespPacket, error) {
	return &PingrespPacket{version: version}, nil
}
