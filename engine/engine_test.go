package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axmq/mqttengine/engine"
	"github.com/axmq/mqttengine/packet"
	"github.com/axmq/mqttengine/property"
)

// deliver feeds every SendBytes payload in events to dst and returns the
// Events dst produced in response, in order.
func deliver(t *testing.T, dst *engine.Engine, events []engine.Event) []engine.Event {
	t.Helper()
	var out []engine.Event
	for _, ev := range events {
		if sb, ok := ev.(engine.SendBytes); ok {
			out = append(out, dst.Receive(sb.Data)...)
		}
	}
	return out
}

func findSendBytes(events []engine.Event) [][]byte {
	var out [][]byte
	for _, ev := range events {
		if sb, ok := ev.(engine.SendBytes); ok {
			out = append(out, sb.Data)
		}
	}
	return out
}

func findPacketReceived(events []engine.Event) []packet.Packet {
	var out []packet.Packet
	for _, ev := range events {
		if pr, ok := ev.(engine.PacketReceived); ok {
			out = append(out, pr.Packet)
		}
	}
	return out
}

func hasCloseTransport(events []engine.Event) bool {
	for _, ev := range events {
		if _, ok := ev.(engine.CloseTransport); ok {
			return true
		}
	}
	return false
}

func mustConnect(t *testing.T, version packet.Version, clientID string, keepAlive uint16) *packet.ConnectPacket {
	t.Helper()
	c, err := packet.NewConnect(version, packet.ConnectOptions{
		CleanStart: true,
		ClientID:   clientID,
		KeepAlive:  keepAlive,
	})
	require.NoError(t, err)
	return c
}

// handshake drives a full CONNECT/CONNACK exchange between freshly created
// client and server engines and returns both, connected.
func handshake(t *testing.T, version packet.Version, keepAlive uint16) (*engine.Engine, *engine.Engine) {
	t.Helper()
	client := engine.New(engine.DefaultConfig(packet.RoleClient))
	server := engine.New(engine.DefaultConfig(packet.RoleServer))

	connectEvents, err := client.Send(mustConnect(t, version, "client-1", keepAlive))
	require.NoError(t, err)

	serverEvents := deliver(t, server, connectEvents)
	received := findPacketReceived(serverEvents)
	require.Len(t, received, 1)
	_, ok := received[0].(*packet.ConnectPacket)
	require.True(t, ok)

	connack, err := packet.NewConnack(version, false, packet.ReasonSuccess, property.Set{})
	require.NoError(t, err)
	connackEvents, err := server.Send(connack)
	require.NoError(t, err)
	require.True(t, server.Connected())

	clientEvents := deliver(t, client, connackEvents)
	received = findPacketReceived(clientEvents)
	require.Len(t, received, 1)
	require.True(t, client.Connected())

	return client, server
}

func TestHandshakeEstablishesConnectedState(t *testing.T) {
	client, server := handshake(t, packet.V5_0, 30)
	assert.Equal(t, "Connected", client.State())
	assert.Equal(t, "Connected", server.State())
	assert.Equal(t, packet.V5_0, client.Version())
	assert.Equal(t, packet.V5_0, server.Version())
}

func TestHandshakeRejectsSecondConnect(t *testing.T) {
	client, _ := handshake(t, packet.V3_1_1, 30)
	_, err := client.Send(mustConnect(t, packet.V3_1_1, "client-1", 30))
	assert.ErrorIs(t, err, engine.ErrAlreadyConnected)
}

func TestQoS1PublishIsAckedAndReleasesPacketID(t *testing.T) {
	client, server := handshake(t, packet.V5_0, 30)

	id, err := client.NextPacketID()
	require.NoError(t, err)
	pub, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
		QoS:       packet.QoS1,
		TopicName: "sensors/temp",
		ID:        id,
		Payload:   []byte("21.5"),
	})
	require.NoError(t, err)

	sendEvents, err := client.Send(pub)
	require.NoError(t, err)
	assert.Equal(t, 1, client.InFlightLen())

	serverEvents := deliver(t, server, sendEvents)
	pubEvents := findPacketReceived(serverEvents)
	require.Len(t, pubEvents, 1)
	gotPub, ok := pubEvents[0].(*packet.PublishPacket)
	require.True(t, ok)
	assert.Equal(t, "sensors/temp", gotPub.TopicName)

	// server auto-acked with PUBACK as part of recvPublish
	clientEvents := deliver(t, client, serverEvents)
	var released bool
	for _, ev := range clientEvents {
		if _, ok := ev.(engine.PacketIDReleased); ok {
			released = true
		}
	}
	assert.True(t, released)
	assert.Equal(t, 0, client.InFlightLen())
}

func TestQoS2PublishCompletesFourPacketHandshake(t *testing.T) {
	client, server := handshake(t, packet.V5_0, 30)

	id, err := client.NextPacketID()
	require.NoError(t, err)
	pub, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
		QoS:       packet.QoS2,
		TopicName: "sensors/temp",
		ID:        id,
		Payload:   []byte("21.5"),
	})
	require.NoError(t, err)

	sendEvents, err := client.Send(pub)
	require.NoError(t, err)

	// client -> server: PUBLISH; server replies PUBREC
	serverEvents := deliver(t, server, sendEvents)
	// server -> client: PUBREC; client replies PUBREL
	clientEvents := deliver(t, client, serverEvents)
	assert.Equal(t, 1, client.InFlightLen(), "still awaiting PUBCOMP after PUBREL")

	// client -> server: PUBREL; server replies PUBCOMP
	serverEvents2 := deliver(t, server, clientEvents)
	// server -> client: PUBCOMP
	clientEvents2 := deliver(t, client, serverEvents2)

	var released bool
	for _, ev := range clientEvents2 {
		if _, ok := ev.(engine.PacketIDReleased); ok {
			released = true
		}
	}
	assert.True(t, released)
	assert.Equal(t, 0, client.InFlightLen())
}

func TestPublishWhileDisconnectedQueuesOffline(t *testing.T) {
	client := engine.New(engine.DefaultConfig(packet.RoleClient))

	id, err := client.NextPacketID()
	require.NoError(t, err)
	pub, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
		QoS:       packet.QoS1,
		TopicName: "a/b",
		ID:        id,
		Payload:   []byte("x"),
	})
	require.NoError(t, err)

	events, err := client.Send(pub)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 1, client.OfflineQueueLen())
}

func TestOfflineQueueDrainsOnCleanConnack(t *testing.T) {
	client := engine.New(engine.DefaultConfig(packet.RoleClient))
	server := engine.New(engine.DefaultConfig(packet.RoleServer))

	id, err := client.NextPacketID()
	require.NoError(t, err)
	pub, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
		QoS:       packet.QoS1,
		TopicName: "a/b",
		ID:        id,
		Payload:   []byte("x"),
	})
	require.NoError(t, err)
	_, err = client.Send(pub)
	require.NoError(t, err)
	require.Equal(t, 1, client.OfflineQueueLen())

	connectEvents, err := client.Send(mustConnect(t, packet.V5_0, "client-1", 30))
	require.NoError(t, err)
	serverEvents := deliver(t, server, connectEvents)
	require.Len(t, findPacketReceived(serverEvents), 1)

	connack, err := packet.NewConnack(packet.V5_0, false, packet.ReasonSuccess, property.Set{})
	require.NoError(t, err)
	connackEvents, err := server.Send(connack)
	require.NoError(t, err)

	clientEvents := deliver(t, client, connackEvents)
	assert.Equal(t, 0, client.OfflineQueueLen())
	assert.NotEmpty(t, findSendBytes(clientEvents), "the queued publish should have been replayed")
}

func TestTopicAliasShrinksRepeatPublishOfSameTopic(t *testing.T) {
	client := engine.New(engine.DefaultConfig(packet.RoleClient))
	server := engine.New(engine.DefaultConfig(packet.RoleServer))

	connectEvents, err := client.Send(mustConnect(t, packet.V5_0, "client-1", 30))
	require.NoError(t, err)
	deliver(t, server, connectEvents)

	var ackProps property.Set
	require.NoError(t, ackProps.Add(property.KindConnack, property.TopicAliasMaximum, uint16(10)))
	connack, err := packet.NewConnack(packet.V5_0, false, packet.ReasonSuccess, ackProps)
	require.NoError(t, err)
	connackEvents, err := server.Send(connack)
	require.NoError(t, err)
	deliver(t, client, connackEvents)
	require.True(t, client.Connected())

	first, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
		QoS:       packet.QoS0,
		TopicName: "sensors/temp",
		Payload:   []byte("1"),
	})
	require.NoError(t, err)
	firstEvents, err := client.Send(first)
	require.NoError(t, err)
	firstBytes := findSendBytes(firstEvents)
	require.Len(t, firstBytes, 1)

	second, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
		QoS:       packet.QoS0,
		TopicName: "sensors/temp",
		Payload:   []byte("2"),
	})
	require.NoError(t, err)
	secondEvents, err := client.Send(second)
	require.NoError(t, err)
	secondBytes := findSendBytes(secondEvents)
	require.Len(t, secondBytes, 1)

	assert.Less(t, len(secondBytes[0]), len(firstBytes[0]), "repeat publish should shrink once an alias is assigned")

	fh, n, err := packet.DecodeFixedHeader(secondBytes[0])
	require.NoError(t, err)
	parsed, _, err := packet.ParsePublish(packet.V5_0, fh.Flags, secondBytes[0][n:])
	require.NoError(t, err)
	assert.Empty(t, parsed.TopicName, "topic name should be omitted in favor of the alias")
	aliasValue, ok := parsed.Properties.Get(property.TopicAlias)
	require.True(t, ok)
	assert.Equal(t, uint16(1), aliasValue)
}

func TestKeepAliveFiringSendsPingreqAndArmsPingrespWatchdog(t *testing.T) {
	client := engine.New(engine.DefaultConfig(packet.RoleClient))
	_, err := client.Send(mustConnect(t, packet.V3_1_1, "client-1", 15))
	require.NoError(t, err)

	events := client.Fired(engine.PingreqSend)
	require.Len(t, findSendBytes(events), 1)

	var armed bool
	for _, ev := range events {
		if at, ok := ev.(engine.ArmTimer); ok && at.Timer == engine.PingrespRecv {
			armed = true
		}
	}
	assert.True(t, armed)
}

func TestServerKeepAliveTimeoutClosesConnection(t *testing.T) {
	client, server := handshake(t, packet.V3_1_1, 10)
	_ = client

	events := server.Fired(engine.PingreqRecv)
	assert.True(t, hasCloseTransport(events))
	assert.Equal(t, "Closed", server.State())

	for _, ev := range events {
		_, isErr := ev.(engine.ErrorEvent)
		assert.False(t, isErr, "keep-alive expiry is a silent teardown, not a reported error")
	}
}

// v3.1.1 has no DISCONNECT reason codes, so a keep-alive timeout firing
// while connected closes the transport outright with no other event,
// regardless of which watchdog timer fired.
func TestV311KeepAliveTimeoutClosesWithNoOtherEvents(t *testing.T) {
	client, _ := handshake(t, packet.V3_1_1, 10)

	events := client.Fired(engine.PingrespRecv)
	require.Len(t, events, 1)
	_, ok := events[0].(engine.CloseTransport)
	assert.True(t, ok)
}

// On v5.0, a keep-alive timeout while Connected sends a best-effort
// DISCONNECT carrying KeepAliveTimeout before closing the transport.
func TestV5KeepAliveTimeoutSendsDisconnectBeforeClose(t *testing.T) {
	client, _ := handshake(t, packet.V5_0, 10)

	events := client.Fired(engine.PingrespRecv)
	sent := findSendBytes(events)
	require.Len(t, sent, 1)

	fh, n, err := packet.DecodeFixedHeader(sent[0])
	require.NoError(t, err)
	assert.Equal(t, packet.Disconnect, fh.Kind)
	disc, _, err := packet.ParseDisconnect(packet.V5_0, sent[0][n:])
	require.NoError(t, err)
	assert.Equal(t, packet.ReasonKeepAliveTimeout, disc.ReasonCode)

	assert.True(t, hasCloseTransport(events))
	assert.Equal(t, "Closed", client.State())
}

// Mirrors the keep-alive negotiation scenario: a v5.0 CONNACK carrying a
// ServerKeepAlive override must arm PingreqSend using that value before
// the CONNACK is surfaced to the host as PacketReceived.
func TestConnackServerKeepAliveArmsPingreqBeforePacketReceived(t *testing.T) {
	client := engine.New(engine.DefaultConfig(packet.RoleClient))
	server := engine.New(engine.DefaultConfig(packet.RoleServer))

	connectEvents, err := client.Send(mustConnect(t, packet.V5_0, "client-1", 30))
	require.NoError(t, err)
	deliver(t, server, connectEvents)

	var ackProps property.Set
	require.NoError(t, ackProps.Add(property.KindConnack, property.ServerKeepAlive, uint16(1)))
	connack, err := packet.NewConnack(packet.V5_0, false, packet.ReasonSuccess, ackProps)
	require.NoError(t, err)
	connackEvents, err := server.Send(connack)
	require.NoError(t, err)

	clientEvents := deliver(t, client, connackEvents)

	var armedIdx, receivedIdx = -1, -1
	for i, ev := range clientEvents {
		if at, ok := ev.(engine.ArmTimer); ok && at.Timer == engine.PingreqSend {
			armedIdx = i
			assert.Equal(t, time.Second, at.Duration)
		}
		if _, ok := ev.(engine.PacketReceived); ok {
			receivedIdx = i
		}
	}
	require.GreaterOrEqual(t, armedIdx, 0, "PingreqSend must be armed")
	require.GreaterOrEqual(t, receivedIdx, 0)
	assert.Less(t, armedIdx, receivedIdx, "PingreqSend must be armed before CONNACK is surfaced")
}

// Mirrors the QoS2 auto-response ordering scenario: the auto-emitted
// PUBREC's SendBytes event precedes the inbound PUBLISH's PacketReceived
// event.
func TestRecvPublishEmitsAutoResponseBeforePacketReceived(t *testing.T) {
	client, server := handshake(t, packet.V3_1_1, 30)

	id, err := client.NextPacketID()
	require.NoError(t, err)
	pub, err := packet.NewPublish(packet.V3_1_1, packet.PublishOptions{
		QoS:       packet.QoS2,
		TopicName: "a/b",
		ID:        id,
		Payload:   []byte("x"),
	})
	require.NoError(t, err)

	sendEvents, err := client.Send(pub)
	require.NoError(t, err)

	serverEvents := deliver(t, server, sendEvents)
	var sendIdx, receivedIdx = -1, -1
	for i, ev := range serverEvents {
		if _, ok := ev.(engine.SendBytes); ok && sendIdx == -1 {
			sendIdx = i
		}
		if _, ok := ev.(engine.PacketReceived); ok {
			receivedIdx = i
		}
	}
	require.GreaterOrEqual(t, sendIdx, 0)
	require.GreaterOrEqual(t, receivedIdx, 0)
	assert.Less(t, sendIdx, receivedIdx, "auto-response must be emitted before PacketReceived")
}

// Mirrors the outbound Maximum Packet Size enforcement scenario: once the
// peer's MaximumPacketSize has been learned from CONNACK, an oversized
// outbound Publish is rejected before any SendBytes is produced.
func TestSendRejectsPublishExceedingPeerMaximumPacketSize(t *testing.T) {
	client := engine.New(engine.DefaultConfig(packet.RoleClient))
	server := engine.New(engine.DefaultConfig(packet.RoleServer))

	connectEvents, err := client.Send(mustConnect(t, packet.V5_0, "client-1", 30))
	require.NoError(t, err)
	deliver(t, server, connectEvents)

	var ackProps property.Set
	require.NoError(t, ackProps.Add(property.KindConnack, property.MaximumPacketSize, uint32(50)))
	connack, err := packet.NewConnack(packet.V5_0, false, packet.ReasonSuccess, ackProps)
	require.NoError(t, err)
	connackEvents, err := server.Send(connack)
	require.NoError(t, err)
	deliver(t, client, connackEvents)
	require.True(t, client.Connected())

	pub, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
		QoS:       packet.QoS0,
		TopicName: "a/b",
		Payload:   make([]byte, 60),
	})
	require.NoError(t, err)

	events, err := client.Send(pub)
	assert.ErrorIs(t, err, engine.ErrPacketTooLarge)
	assert.Empty(t, events)
}

// Mirrors the inbound receive-maximum flow-control scenario: once
// recv_publish_processing reaches the configured ReceiveMaximum, a further
// inbound QoS>0 Publish is rejected with ReceiveMaximumExceeded and the
// connection is closed. Auto responses are off so the first Publish's
// flow-control slot stays held.
func TestRecvPublishRejectsOnceReceiveMaximumExceeded(t *testing.T) {
	cfg := engine.DefaultConfig(packet.RoleServer)
	cfg.ReceiveMaximum = 1
	server := engine.New(cfg)
	server.SetAutoPubResponse(false)
	client := engine.New(engine.DefaultConfig(packet.RoleClient))

	connectEvents, err := client.Send(mustConnect(t, packet.V5_0, "client-1", 30))
	require.NoError(t, err)
	deliver(t, server, connectEvents)
	connack, err := packet.NewConnack(packet.V5_0, false, packet.ReasonSuccess, property.Set{})
	require.NoError(t, err)
	connackEvents, err := server.Send(connack)
	require.NoError(t, err)
	deliver(t, client, connackEvents)
	require.True(t, server.Connected())

	firstID, err := client.NextPacketID()
	require.NoError(t, err)
	first, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
		QoS:       packet.QoS1,
		TopicName: "a/b",
		ID:        firstID,
		Payload:   []byte("x"),
	})
	require.NoError(t, err)
	firstSend, err := client.Send(first)
	require.NoError(t, err)
	firstServerEvents := server.Receive(firstSend[0].(engine.SendBytes).Data)
	assert.False(t, hasCloseTransport(firstServerEvents))

	secondID, err := client.NextPacketID()
	require.NoError(t, err)
	second, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
		QoS:       packet.QoS1,
		TopicName: "a/b",
		ID:        secondID,
		Payload:   []byte("y"),
	})
	require.NoError(t, err)
	secondSend, err := client.Send(second)
	require.NoError(t, err)
	secondServerEvents := server.Receive(secondSend[0].(engine.SendBytes).Data)

	assert.True(t, hasCloseTransport(secondServerEvents))
	var fatal bool
	for _, ev := range secondServerEvents {
		if ee, ok := ev.(engine.ErrorEvent); ok && ee.Fatal {
			fatal = true
		}
	}
	assert.True(t, fatal)
}

// A disabled auto_pub_response leaves the inbound QoS1 Publish unacked by
// the engine, and its packet-id flow-control slot held open, until the
// host sends the PUBACK itself.
func TestAutoPubResponseDisabledLeavesResponseToHost(t *testing.T) {
	cfg := engine.DefaultConfig(packet.RoleServer)
	server := engine.New(cfg)
	server.SetAutoPubResponse(false)
	client := engine.New(engine.DefaultConfig(packet.RoleClient))

	connectEvents, err := client.Send(mustConnect(t, packet.V5_0, "client-1", 30))
	require.NoError(t, err)
	deliver(t, server, connectEvents)
	connack, err := packet.NewConnack(packet.V5_0, false, packet.ReasonSuccess, property.Set{})
	require.NoError(t, err)
	connackEvents, err := server.Send(connack)
	require.NoError(t, err)
	deliver(t, client, connackEvents)

	id, err := client.NextPacketID()
	require.NoError(t, err)
	pub, err := packet.NewPublish(packet.V5_0, packet.PublishOptions{
		QoS:       packet.QoS1,
		TopicName: "a/b",
		ID:        id,
		Payload:   []byte("x"),
	})
	require.NoError(t, err)
	sendEvents, err := client.Send(pub)
	require.NoError(t, err)

	serverEvents := server.Receive(sendEvents[0].(engine.SendBytes).Data)
	assert.Empty(t, findSendBytes(serverEvents), "no auto PUBACK should be emitted")
	require.Len(t, findPacketReceived(serverEvents), 1)
}

func TestMalformedFixedHeaderClosesConnectionWithError(t *testing.T) {
	server := engine.New(engine.DefaultConfig(packet.RoleServer))
	events := server.Receive([]byte{0x00, 0x00}) // reserved kind nibble

	assert.True(t, hasCloseTransport(events))
	assert.Equal(t, "Closed", server.State())
}

func TestClientCannotOriginateServerOnlyPacketKind(t *testing.T) {
	client := engine.New(engine.DefaultConfig(packet.RoleClient))
	_, err := client.Send(mustConnect(t, packet.V5_0, "client-1", 30))
	require.NoError(t, err)

	connack, err := packet.NewConnack(packet.V5_0, false, packet.ReasonSuccess, property.Set{})
	require.NoError(t, err)
	_, err = client.Send(connack)
	assert.ErrorIs(t, err, packet.ErrRoleMismatch)
}

func TestSendAfterDisconnectIsRejected(t *testing.T) {
	client, _ := handshake(t, packet.V3_1_1, 30)

	disc, err := packet.NewDisconnect(packet.V3_1_1, packet.ReasonSuccess, property.Set{})
	require.NoError(t, err)
	events, err := client.Send(disc)
	require.NoError(t, err)
	assert.True(t, hasCloseTransport(events))
	assert.Equal(t, "Closed", client.State())

	_, err = client.Send(mustConnect(t, packet.V3_1_1, "client-1", 30))
	assert.ErrorIs(t, err, engine.ErrClosed)
}
