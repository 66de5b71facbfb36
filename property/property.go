package property

import (
	"github.com/axmq/mqttengine/wire"
)

// Property is a single tagged MQTT 5.0 property value. Value holds a Go
// type matching the property's Type: byte, uint16, uint32, uint32 (for
// VarInt), string, [2]string (for UTF8Pair/User Property), or []byte.
type Property struct {
	ID    ID
	Value interface{}
}

// Set is an ordered collection of properties belonging to one packet.
// Add enforces the admissibility and multiplicity rules at build time;
// Decode enforces the same rules at parse time.
type Set struct {
	items []Property
	seen  map[ID]bool
}

// Add appends a property to the set, rejecting it if not admissible for
// kind or if it is a singleton already present.
func (s *Set) Add(kind Kind, id ID, value interface{}) error {
	spc, ok := specs[id]
	if !ok {
		return ErrUnknownID
	}
	if !spc.Kinds.has(kind) {
		return ErrNotAdmissible
	}
	if err := checkValueType(spc.Type, value); err != nil {
		return err
	}
	if !spc.Multiple {
		if s.seen == nil {
			s.seen = make(map[ID]bool)
		}
		if s.seen[id] {
			return ErrDuplicate
		}
		s.seen[id] = true
	}
	s.items = append(s.items, Property{ID: id, Value: value})
	return nil
}

// Items returns the properties in insertion order.
func (s *Set) Items() []Property { return s.items }

// Len returns the number of properties in the set.
func (s *Set) Len() int { return len(s.items) }

// Get returns the first (for singletons, the only) value for id.
func (s *Set) Get(id ID) (interface{}, bool) {
	for _, p := range s.items {
		if p.ID == id {
			return p.Value, true
		}
	}
	return nil, false
}

// All returns every value for id, in order (meaningful for User Property).
func (s *Set) All(id ID) []interface{} {
	var out []interface{}
	for _, p := range s.items {
		if p.ID == id {
			out = append(out, p.Value)
		}
	}
	return out
}

func checkValueType(t Type, value interface{}) error {
	switch t {
	case TypeByte:
		_, ok := value.(byte)
		if !ok {
			return ErrWrongValueType
		}
	case TypeTwoByteInt:
		_, ok := value.(uint16)
		if !ok {
			return ErrWrongValueType
		}
	case TypeFourByteInt:
		_, ok := value.(uint32)
		if !ok {
			return ErrWrongValueType
		}
	case TypeVarInt:
		_, ok := value.(uint32)
		if !ok {
			return ErrWrongValueType
		}
	case TypeUTF8String:
		_, ok := value.(string)
		if !ok {
			return ErrWrongValueType
		}
	case TypeUTF8Pair:
		_, ok := value.([2]string)
		if !ok {
			return ErrWrongValueType
		}
	case TypeBinaryData:
		_, ok := value.([]byte)
		if !ok {
			return ErrWrongValueType
		}
	}
	return nil
}

// Size returns the total encoded size of the set including its own
// variable-byte-integer length prefix.
func (s *Set) Size() int {
	body := s.bodySize()
	return wire.SizeVarInt(uint32(body)) + body
}

func (s *Set) bodySize() int {
	n := 0
	for _, p := range s.items {
		n += 1 // property id byte
		n += valueSize(specs[p.ID].Type, p.Value)
	}
	return n
}

func valueSize(t Type, value interface{}) int {
	switch t {
	case TypeByte:
		return 1
	case TypeTwoByteInt:
		return 2
	case TypeFourByteInt:
		return 4
	case TypeVarInt:
		return wire.SizeVarInt(value.(uint32))
	case TypeUTF8String:
		s, _ := wire.NewString(value.(string))
		return s.Size()
	case TypeUTF8Pair:
		pair := value.([2]string)
		k, _ := wire.NewString(pair[0])
		v, _ := wire.NewString(pair[1])
		return k.Size() + v.Size()
	case TypeBinaryData:
		b, _ := wire.NewBinary(value.([]byte))
		return b.Size()
	default:
		return 0
	}
}

// Encode appends the wire encoding (length prefix + properties) to dst.
func (s *Set) Encode(dst []byte) ([]byte, error) {
	body := s.bodySize()
	dst, err := wire.AppendVarInt(dst, uint32(body))
	if err != nil {
		return dst, err
	}
	for _, p := range s.items {
		dst = append(dst, byte(p.ID))
		dst = encodeValue(dst, specs[p.ID].Type, p.Value)
	}
	return dst, nil
}

func encodeValue(dst []byte, t Type, value interface{}) []byte {
	switch t {
	case TypeByte:
		return append(dst, value.(byte))
	case TypeTwoByteInt:
		v := value.(uint16)
		return append(dst, byte(v>>8), byte(v))
	case TypeFourByteInt:
		v := value.(uint32)
		return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	case TypeVarInt:
		dst, _ = wire.AppendVarInt(dst, value.(uint32))
		return dst
	case TypeUTF8String:
		s, _ := wire.NewString(value.(string))
		return s.Encode(dst)
	case TypeUTF8Pair:
		pair := value.([2]string)
		k, _ := wire.NewString(pair[0])
		v, _ := wire.NewString(pair[1])
		dst = k.Encode(dst)
		return v.Encode(dst)
	case TypeBinaryData:
		b, _ := wire.NewBinary(value.([]byte))
		return b.Encode(dst)
	default:
		return dst
	}
}

// Decode parses a property list for the given packet kind from the front
// of data, enforcing admissibility and multiplicity exactly as Add does.
func Decode(kind Kind, data []byte) (Set, int, error) {
	length, n, err := wire.DecodeVarInt(data)
	if err != nil {
		if err == wire.ErrIncomplete {
			return Set{}, 0, ErrIncomplete
		}
		return Set{}, 0, ErrMalformedVarInt
	}
	offset := n
	end := offset + int(length)
	if len(data) < end {
		return Set{}, 0, ErrIncomplete
	}

	var out Set
	for offset < end {
		id := ID(data[offset])
		offset++

		spc, ok := specs[id]
		if !ok {
			return Set{}, 0, ErrUnknownID
		}

		value, consumed, err := decodeValue(spc.Type, data[offset:end])
		if err != nil {
			return Set{}, 0, err
		}
		offset += consumed

		if err := out.Add(kind, id, value); err != nil {
			return Set{}, 0, err
		}
	}

	return out, end, nil
}

func decodeValue(t Type, data []byte) (interface{}, int, error) {
	switch t {
	case TypeByte:
		if len(data) < 1 {
			return nil, 0, ErrIncomplete
		}
		return data[0], 1, nil
	case TypeTwoByteInt:
		if len(data) < 2 {
			return nil, 0, ErrIncomplete
		}
		return uint16(data[0])<<8 | uint16(data[1]), 2, nil
	case TypeFourByteInt:
		if len(data) < 4 {
			return nil, 0, ErrIncomplete
		}
		v := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
		return v, 4, nil
	case TypeVarInt:
		v, n, err := wire.DecodeVarInt(data)
		if err != nil {
			if err == wire.ErrIncomplete {
				return nil, 0, ErrIncomplete
			}
			return nil, 0, ErrMalformedVarInt
		}
		return v, n, nil
	case TypeUTF8String:
		s, n, err := wire.DecodeString(data)
		if err != nil {
			return nil, 0, err
		}
		return s.String(), n, nil
	case TypeUTF8Pair:
		k, n1, err := wire.DecodeString(data)
		if err != nil {
			return nil, 0, err
		}
		v, n2, err := wire.DecodeString(data[n1:])
		if err != nil {
			return nil, 0, err
		}
		return [2]string{k.String(), v.String()}, n1 + n2, nil
	case TypeBinaryData:
		b, n, err := wire.DecodeBinary(data)
		if err != nil {
			return nil, 0, err
		}
		return append([]byte(nil), b.Bytes()...), n, nil
	default:
		return nil, 0, ErrWrongValueType
	}
}
