package property

import "errors"

var (
	// ErrUnknownID indicates a property id byte with no known specification.
	ErrUnknownID = errors.New("property: unknown property id")

	// ErrNotAdmissible indicates a property id is well-known but not legal
	// in the packet kind it was built for or parsed from.
	ErrNotAdmissible = errors.New("property: not admissible in this packet kind")

	// ErrDuplicate indicates a singleton property id appeared twice.
	ErrDuplicate = errors.New("property: singleton property repeated")

	// ErrWrongValueType indicates a value was supplied with a Go type that
	// does not match the property's wire type.
	ErrWrongValueType = errors.New("property: value has the wrong type for this property id")

	// ErrIncomplete indicates the property list was truncated.
	ErrIncomplete = errors.New("property: truncated property list")

	// ErrMalformedVarInt indicates a variable byte integer property value
	// (or the list length itself) was malformed.
	ErrMalformedVarInt = errors.New("property: malformed variable byte integer")
)
