package store

import "errors"

var (
	// ErrAlreadyInFlight is returned by PutPublish when the packet
	// identifier is already occupied by another in-flight entry.
	ErrAlreadyInFlight = errors.New("store: packet identifier already in flight")

	// ErrNotInFlight is returned by OnPubrec/OnPuback/OnPubcomp when no
	// entry exists for a packet identifier (Get reports this as false).
	ErrNotInFlight = errors.New("store: packet identifier not in flight")
)
