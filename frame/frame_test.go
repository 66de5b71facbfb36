package frame

import (
	"testing"

	"github.com/axmq/mqttengine/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedPingreq(t *testing.T) []byte {
	t.Helper()
	p, err := packet.NewPingreq(packet.V5_0)
	require.NoError(t, err)
	return p.AppendTo(nil)
}

func TestPushWholePacketInOneCall(t *testing.T) {
	f := New()
	raws, err := f.Push(encodedPingreq(t))
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, packet.Pingreq, raws[0].Header.Kind)
	assert.Equal(t, uint32(0), raws[0].Header.RemainingLength)
	assert.Equal(t, 0, f.Pending())
}

func TestPushPacketSplitAcrossCalls(t *testing.T) {
	p, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
		TopicName: "a/b", Payload: []byte("hello world"),
	})
	require.NoError(t, err)
	encoded := p.AppendTo(nil)

	f := New()
	mid := len(encoded) / 2
	raws, err := f.Push(encoded[:mid])
	require.NoError(t, err)
	assert.Empty(t, raws)
	assert.True(t, f.Pending() > 0)

	raws, err = f.Push(encoded[mid:])
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, packet.Publish, raws[0].Header.Kind)
	assert.Equal(t, 0, f.Pending())
}

func TestPushMultiplePacketsInOneCall(t *testing.T) {
	req, err := packet.NewPingreq(packet.V5_0)
	require.NoError(t, err)
	resp, err := packet.NewPingresp(packet.V5_0)
	require.NoError(t, err)

	var buf []byte
	buf = req.AppendTo(buf)
	buf = resp.AppendTo(buf)

	f := New()
	raws, err := f.Push(buf)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, packet.Pingreq, raws[0].Header.Kind)
	assert.Equal(t, packet.Pingresp, raws[1].Header.Kind)
}

func TestPushRejectsOversizedPacket(t *testing.T) {
	p, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
		TopicName: "a/b", Payload: make([]byte, 100),
	})
	require.NoError(t, err)
	encoded := p.AppendTo(nil)

	f := &Framer{MaxSize: 16}
	_, err = f.Push(encoded)
	assert.ErrorIs(t, err, ErrPacketTooLarge)
}

func TestResetDiscardsPartialPacket(t *testing.T) {
	f := New()
	_, err := f.Push([]byte{0xC0}) // PINGREQ fixed-header byte, length missing
	require.NoError(t, err)
	assert.Equal(t, 1, f.Pending())

	f.Reset()
	assert.Equal(t, 0, f.Pending())
}
