package packet

import "errors"

var (
	// ErrMalformedPacket indicates the byte stream is syntactically invalid:
	// bad reserved bits, unknown fixed-header nibble, invalid reason-code
	// byte, truncated fields.
	ErrMalformedPacket = errors.New("packet: malformed packet")

	// ErrProtocolError indicates a syntactically valid but semantically
	// illegal packet (e.g. a Publish invariant violation).
	ErrProtocolError = errors.New("packet: protocol error")

	// ErrUnsupportedProtocolVersion indicates a CONNECT protocol-level byte
	// other than 4 (v3.1.1) or 5 (v5.0).
	ErrUnsupportedProtocolVersion = errors.New("packet: unsupported protocol version")

	// ErrVersionMismatch indicates an attempt to send a packet tagged with
	// a version other than the connection's committed version.
	ErrVersionMismatch = errors.New("packet: protocol version mismatch")

	// ErrRoleMismatch indicates an attempt to send a packet kind the
	// connection's role may not originate.
	ErrRoleMismatch = errors.New("packet: role may not send this packet kind")

	ErrInvalidQoS           = errors.New("packet: invalid QoS level")
	ErrInvalidFlags         = errors.New("packet: invalid fixed-header flags")
	ErrInvalidReservedKind  = errors.New("packet: reserved packet type (0) not allowed")
	ErrInvalidKind          = errors.New("packet: unknown packet type")
	ErrMissingPacketID      = errors.New("packet: missing packet identifier for QoS > 0")
	ErrUnexpectedPacketID   = errors.New("packet: packet identifier present where none is allowed")
	ErrZeroPacketID         = errors.New("packet: packet identifier must be non-zero")
	ErrInvalidTopicName     = errors.New("packet: invalid topic name")
	ErrInvalidTopicFilter   = errors.New("packet: invalid topic filter")
	ErrEmptyTopicWithoutAlias = errors.New("packet: empty topic name requires a Topic Alias property")
	ErrEmptySubscriptionList  = errors.New("packet: SUBSCRIBE must contain at least one subscription")
	ErrEmptyUnsubscribeList   = errors.New("packet: UNSUBSCRIBE must contain at least one topic filter")
	ErrDupOnQoS0              = errors.New("packet: DUP must be 0 on a QoS 0 PUBLISH")
	ErrInvalidProtocolName    = errors.New("packet: invalid protocol name")
)
