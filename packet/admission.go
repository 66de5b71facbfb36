package packet

// clientForbidden is the set of kinds a Client-role connection may never
// originate.
var clientForbidden = map[Kind]bool{
	Connack: true, Suback: true, Unsuback: true, Pingresp: true,
}

// serverForbidden is the set of kinds a Server-role connection may never
// originate.
var serverForbidden = map[Kind]bool{
	Connect: true, Subscribe: true, Unsubscribe: true, Pingreq: true,
}

// CheckRole reports whether role may send a packet of kind k. RoleAny
// accepts every kind.
//
// Go has no phantom types to make this a compile-time-only check; this is
// a small runtime tag instead, consulted once by the engine's send path
// before dispatch.
func CheckRole(role Role, k Kind) error {
	switch role {
	case RoleClient:
		if clientForbidden[k] {
			return ErrRoleMismatch
		}
	case RoleServer:
		if serverForbidden[k] {
			return ErrRoleMismatch
		}
	}
	return nil
}

// CheckVersion reports whether a packet tagged pktVersion may be sent on a
// connection committed to connVersion.
func CheckVersion(connVersion, pktVersion Version) error {
	if connVersion == VersionUndetermined {
		return nil
	}
	if connVersion != pktVersion {
		return ErrVersionMismatch
	}
	return nil
}

// Packet is implemented by every (version, kind) typed packet. Builders
// validate MQTT well-formedness at construction time; Size/AppendTo/Buffers
// implement a dual serializer contract: both must yield byte-identical
// wire output for the same value.
type Packet interface {
	Kind() Kind
	Version() Version

	// PacketID returns the packet identifier and whether this packet kind
	// carries one at all (Publish QoS 0 reports false).
	PacketID() (id uint32, has bool)

	// Size returns the total encoded size (fixed header + remaining length
	// + body) this packet will occupy on the wire.
	Size() int

	// AppendTo appends the full wire encoding of the packet to dst and
	// returns the extended slice.
	AppendTo(dst []byte) []byte

	// Buffers returns the same encoding as an iovec-style list of byte
	// slices, for hosts with scatter-gather write support. Concatenating
	// Buffers() must equal AppendTo(nil).
	Buffers() [][]byte
}
