package store

import (
	"testing"

	"github.com/axmq/mqttengine/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPublish(t *testing.T, id uint16, qos packet.QoS) *packet.PublishPacket {
	t.Helper()
	p, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
		QoS: qos, TopicName: "a/b", ID: id, Payload: []byte("x"),
	})
	require.NoError(t, err)
	return p
}

func TestQoS1Lifecycle(t *testing.T) {
	s := New()
	p := mustPublish(t, 1, packet.QoS1)
	require.NoError(t, s.PutPublish(p))
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.OnPuback(1))
	assert.Equal(t, 0, s.Len())
	_, ok := s.Get(1)
	assert.False(t, ok)
}

func TestQoS2Lifecycle(t *testing.T) {
	s := New()
	p := mustPublish(t, 2, packet.QoS2)
	require.NoError(t, s.PutPublish(p))

	e, err := s.OnPubrec(2)
	require.NoError(t, err)
	assert.Equal(t, StagePubrelSent, e.Stage)

	require.NoError(t, s.OnPubcomp(2))
	assert.Equal(t, 0, s.Len())
}

func TestPutPublishRejectsDuplicateID(t *testing.T) {
	s := New()
	p := mustPublish(t, 5, packet.QoS1)
	require.NoError(t, s.PutPublish(p))
	assert.ErrorIs(t, s.PutPublish(p), ErrAlreadyInFlight)
}

func TestOnPubrecRejectsUnknownID(t *testing.T) {
	s := New()
	_, err := s.OnPubrec(9)
	assert.ErrorIs(t, err, ErrNotInFlight)
}

func TestResendSetsDupOnPendingPublish(t *testing.T) {
	s := New()
	p := mustPublish(t, 1, packet.QoS1)
	require.NoError(t, s.PutPublish(p))

	resent := s.Resend()
	require.Len(t, resent, 1)
	pub, ok := resent[0].(*packet.PublishPacket)
	require.True(t, ok)
	assert.True(t, pub.Dup)
	assert.Equal(t, uint16(1), pub.ID)
}

func TestResendReportsPendingPubrelAsPubrel(t *testing.T) {
	s := New()
	p := mustPublish(t, 3, packet.QoS2)
	require.NoError(t, s.PutPublish(p))
	_, err := s.OnPubrec(3)
	require.NoError(t, err)

	resent := s.Resend()
	require.Len(t, resent, 1)
	_, ok := resent[0].(*packet.PubrelPacket)
	assert.True(t, ok)
}

func TestResendPreservesSendOrder(t *testing.T) {
	s := New()
	require.NoError(t, s.PutPublish(mustPublish(t, 1, packet.QoS1)))
	require.NoError(t, s.PutPublish(mustPublish(t, 2, packet.QoS1)))
	require.NoError(t, s.PutPublish(mustPublish(t, 3, packet.QoS1)))

	resent := s.Resend()
	require.Len(t, resent, 3)
	for i, want := range []uint16{1, 2, 3} {
		id, _ := resent[i].PacketID()
		assert.Equal(t, uint32(want), id)
	}
}

func TestClearDropsAllEntries(t *testing.T) {
	s := New()
	require.NoError(t, s.PutPublish(mustPublish(t, 1, packet.QoS1)))
	s.Clear()
	assert.Equal(t, 0, s.Len())
	_, ok := s.Get(1)
	assert.False(t, ok)
}
