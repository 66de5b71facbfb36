package packet

import "github.com/axmq/mqttengine/property"

// DisconnectPacket is the DISCONNECT packet. A v3.1.1 disconnect carries no
// variable header at all; a v5.0 disconnect may carry a reason code and
// properties, both omittable when the reason is Success and there is
// nothing else to say (MQTT 5.0 §3.14.2.1).
type DisconnectPacket struct {
	version Version

	ReasonCode ReasonCode
	Properties property.Set
}

func NewDisconnect(version Version, reasonCode ReasonCode, props property.Set) (*DisconnectPacket, error) {
	if version != V3_1_1 && version != V5_0 {
		return nil, ErrUnsupportedProtocolVersion
	}
	if version != V5_0 && reasonCode != ReasonSuccess {
		return nil, ErrProtocolError
	}
	return &DisconnectPacket{version: version, ReasonCode: reasonCode, Properties: props}, nil
}

func (d *DisconnectPacket) Kind() Kind               { return Disconnect }
func (d *DisconnectPacket) Version() Version         { return d.version }
func (d *DisconnectPacket) PacketID() (uint32, bool) { return 0, false }

func ParseDisconnect(version Version, body []byte) (*DisconnectPacket, int, error) {
	d := &DisconnectPacket{version: version, ReasonCode: ReasonSuccess}
	if version != V5_0 || len(body) == 0 {
		return d, 0, nil
	}
	d.ReasonCode = ReasonCode(body[0])
	offset := 1
	if len(body) > offset {
		props, n, err := property.Decode(property.KindDisconnect, body[offset:])
		if err != nil {
			return nil, 0, err
		}
		d.Properties = props
		offset += n
	}
	return d, offset, nil
}

func (d *DisconnectPacket) body() []byte {
	if d.version != V5_0 {
		return nil
	}
	if d.ReasonCode == ReasonSuccess && d.Properties.Len() == 0 {
		return nil
	}
	buf := []byte{byte(d.ReasonCode)}
	buf, _ = d.Properties.Encode(buf)
	return buf
}

func (d *DisconnectPacket) Size() int {
	body := d.body()
	return fixedHeaderSize(uint32(len(body))) + len(body)
}

func (d *DisconnectPacket) AppendTo(dst []byte) []byte {
	body := d.body()
	dst, _ = EncodeFixedHeader(dst, Disconnect, 0, uint32(len(body)))
	return append(dst, body...)
}

func (d *DisconnectPacket) Buffers() [][]byte { return [][]byte{d.AppendTo(nil)} }

// AuthPacket is the AUTH packet (MQTT 5.0 only; there is no v3.1.1 AUTH).
type AuthPacket struct {
	ReasonCode ReasonCode
	Properties property.Set
}

func NewAuth(reasonCode ReasonCode, props property.Set) (*AuthPacket, error) {
	switch reasonCode {
	case ReasonSuccess, ReasonContinueAuthentication, ReasonReAuthenticate:
	default:
		return nil, ErrProtocolError
	}
	return &AuthPacket{ReasonCode: reasonCode, Properties: props}, nil
}

func (a *AuthPacket) Kind() Kind               { return Auth }
func (a *AuthPacket) Version() Version         { return V5_0 }
func (a *AuthPacket) PacketID() (uint32, bool) { return 0, false }

func ParseAuth(body []byte) (*AuthPacket, int, error) {
	a := &AuthPacket{ReasonCode: ReasonSuccess}
	if len(body) == 0 {
		return a, 0, nil
	}
	a.ReasonCode = ReasonCode(body[0])
	offset := 1
	if len(body) > offset {
		props, n, err := property.Decode(property.KindAuth, body[offset:])
		if err != nil {
			return nil, 0, err
		}
		a.Properties = props
		offset += n
	}
	return a, offset, nil
}

func (a *AuthPacket) body() []byte {
	if a.ReasonCode == ReasonSuccess && a.Properties.Len() == 0 {
		return nil
	}
	buf := []byte{byte(a.ReasonCode)}
	buf, _ = a.Properties.Encode(buf)
	return buf
}

func (a *AuthPacket) Size() int {
	body := a.body()
	return fixedHeaderSize(uint32(len(body))) + len(body)
}

func (a *AuthPacket) AppendTo(dst []byte) []byte {
	body := a.body()
	dst, _ = EncodeFixedHeader(dst, Auth, 0, uint32(len(body)))
	return append(dst, body...)
}

func (a *AuthPacket) Buffers() [][]byte { return [][]byte{a.AppendTo(nil)} }
