// Package xerrors maps the sentinel errors returned by packet/ and engine/
// onto the MQTT 5.0 reason code a host should close the connection with
// (e.g. in a DISCONNECT or a failing CONNACK). It does not introduce new
// error values of its own.
package xerrors

import (
	"errors"

	"github.com/axmq/mqttengine/engine"
	"github.com/axmq/mqttengine/packet"
)

// ReasonCode maps err to the MQTT 5.0 reason code that best describes it.
// Unrecognized errors map to ReasonUnspecifiedError.
func ReasonCode(err error) packet.ReasonCode {
	switch {
	case err == nil:
		return packet.ReasonSuccess
	case errors.Is(err, packet.ErrMalformedPacket),
		errors.Is(err, packet.ErrInvalidFlags),
		errors.Is(err, packet.ErrInvalidReservedKind),
		errors.Is(err, packet.ErrInvalidKind),
		errors.Is(err, packet.ErrMissingPacketID),
		errors.Is(err, packet.ErrUnexpectedPacketID),
		errors.Is(err, packet.ErrZeroPacketID),
		errors.Is(err, packet.ErrInvalidQoS),
		errors.Is(err, packet.ErrInvalidProtocolName),
		errors.Is(err, packet.ErrDupOnQoS0):
		return packet.ReasonMalformedPacket
	case errors.Is(err, packet.ErrProtocolError),
		errors.Is(err, packet.ErrEmptyTopicWithoutAlias),
		errors.Is(err, packet.ErrEmptySubscriptionList),
		errors.Is(err, packet.ErrEmptyUnsubscribeList):
		return packet.ReasonProtocolError
	case errors.Is(err, packet.ErrUnsupportedProtocolVersion):
		return packet.ReasonUnsupportedProtocolVersion
	case errors.Is(err, packet.ErrInvalidTopicName):
		return packet.ReasonTopicNameInvalid
	case errors.Is(err, packet.ErrInvalidTopicFilter):
		return packet.ReasonTopicFilterInvalid
	case errors.Is(err, packet.ErrVersionMismatch), errors.Is(err, packet.ErrRoleMismatch):
		return packet.ReasonProtocolError
	case errors.Is(err, engine.ErrPacketTooLarge):
		return packet.ReasonPacketTooLarge
	case errors.Is(err, engine.ErrReceiveMaximumExceeded):
		return packet.ReasonReceiveMaximumExceeded
	default:
		return packet.ReasonUnspecifiedError
	}
}

// Wrapped carries the reason code alongside the original error, the way a
// host surfaces a close reason without losing the cause for logging.
type Wrapped struct {
	Err    error
	Reason packet.ReasonCode
}

func (w *Wrapped) Error() string { return w.Err.Error() }
func (w *Wrapped) Unwrap() error { return w.Err }

// Wrap annotates err with the reason code a host should close with.
func Wrap(err error) *Wrapped {
	if err == nil {
		return nil
	}
	return &Wrapped{Err: err, Reason: ReasonCode(err)}
}
