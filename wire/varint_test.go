package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeVarInt(t *testing.T) {
	tests := []struct {
		name     string
		input    uint32
		expected []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one", 1, []byte{0x01}},
		{"max_single_byte", 127, []byte{0x7F}},
		{"min_two_byte", 128, []byte{0x80, 0x01}},
		{"max_two_byte", 16383, []byte{0xFF, 0x7F}},
		{"min_three_byte", 16384, []byte{0x80, 0x80, 0x01}},
		{"max_three_byte", 2097151, []byte{0xFF, 0xFF, 0x7F}},
		{"min_four_byte", 2097152, []byte{0x80, 0x80, 0x80, 0x01}},
		{"max_four_byte", 268435455, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeVarInt(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEncodeVarIntTooLarge(t *testing.T) {
	_, err := EncodeVarInt(MaxVarInt + 1)
	assert.ErrorIs(t, err, ErrVarIntTooLarge)
}

func TestDecodeVarIntRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 16383, 16384, 2097151, 2097152, 268435455} {
		encoded, err := EncodeVarInt(v)
		require.NoError(t, err)

		decoded, n, err := DecodeVarInt(encoded)
		require.NoError(t, err)
		assert.Equal(t, v, decoded)
		assert.Equal(t, len(encoded), n)
	}
}

func TestDecodeVarIntIncomplete(t *testing.T) {
	_, _, err := DecodeVarInt([]byte{0x80})
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestDecodeVarIntMalformedFifthByte(t *testing.T) {
	_, _, err := DecodeVarInt([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F})
	assert.ErrorIs(t, err, ErrVarIntMalformed)
}

func TestDecodeVarIntIgnoresTrailingBytes(t *testing.T) {
	v, n, err := DecodeVarInt([]byte{0x7F, 0xAA, 0xBB})
	require.NoError(t, err)
	assert.Equal(t, uint32(127), v)
	assert.Equal(t, 1, n)
}

func TestSizeVarInt(t *testing.T) {
	assert.Equal(t, 1, SizeVarInt(0))
	assert.Equal(t, 1, SizeVarInt(127))
	assert.Equal(t, 2, SizeVarInt(128))
	assert.Equal(t, 2, SizeVarInt(16383))
	assert.Equal(t, 3, SizeVarInt(16384))
	assert.Equal(t, 4, SizeVarInt(2097152))
	assert.Equal(t, 0, SizeVarInt(MaxVarInt+1))
}
