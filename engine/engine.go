// Package engine implements the MQTT connection engine: a Sans-I/O state
// machine that consumes inbound bytes and outbound typed packets and
// produces an ordered list of Events. The engine owns no socket, no
// timer, and no goroutine — see Send, Receive, and Fired.
package engine

import (
	"time"

	"github.com/axmq/mqttengine/alias"
	"github.com/axmq/mqttengine/frame"
	"github.com/axmq/mqttengine/idalloc"
	"github.com/axmq/mqttengine/packet"
	"github.com/axmq/mqttengine/queue"
	"github.com/axmq/mqttengine/store"
)

const defaultReceiveMaximum = 65535

// Engine is one MQTT connection's protocol state, independent of any
// transport or runtime. Create one with New per connection attempt.
type Engine struct {
	cfg   Config
	role  packet.Role
	state connState

	version packet.Version // VersionUndetermined until a CONNECT commits it

	framer *frame.Framer

	outIDs    *idalloc.Allocator[uint16]
	sendAlias *alias.SendMap
	recvAlias *alias.RecvMap
	inflight  *store.Store
	offline   *queue.Queue

	peerReceiveMaximum uint16 // this side's budget for sending QoS>0 Publish to the peer
	sentUnacked        uint16 // count of QoS>0 Publish currently awaiting ack, against peerReceiveMaximum
	peerMaxPacketSize  uint32 // peer's advertised Maximum Packet Size (v5.0); 0 means unbounded

	recvProcessing uint16 // inbound QoS>0 Publish awaiting our final response, bounded by cfg.ReceiveMaximum

	autoPubResponse  bool // auto-emit Puback/Pubrec/Pubcomp for inbound QoS>0 Publish/Pubrel
	autoPingResponse bool // auto-emit Pingresp for an inbound Pingreq (server role)

	keepAlive           time.Duration
	pingreqSendInterval time.Duration // client PingreqSend arming interval; overridable via SetPingreqSendInterval

	cleanSession    bool   // learned from the committing CONNECT's CleanStart/"Clean Session" flag
	assignedClientID string // peer-assigned client id (CONNACK AssignedClientIdentifier, v5.0)
}

// New creates an Engine ready to begin a connection per cfg. A
// Client-role engine must send a CONNECT first; a Server-role engine must
// receive one.
func New(cfg Config) *Engine {
	if cfg.ReceiveMaximum == 0 {
		cfg.ReceiveMaximum = defaultReceiveMaximum
	}
	e := &Engine{
		cfg:                cfg,
		role:               cfg.Role,
		state:              stateUnconnected,
		version:            cfg.Version,
		framer:             &frame.Framer{MaxSize: cfg.MaxPacketSize},
		outIDs:             idalloc.New[uint16](65535),
		sendAlias:          alias.NewSendMap(0), // learned from the peer's Topic Alias Maximum once CONNECT/CONNACK arrives
		recvAlias:          alias.NewRecvMap(cfg.TopicAliasMaximum),
		inflight:           store.New(),
		offline:            queue.New(cfg.OfflineQueueCapacity),
		peerReceiveMaximum: defaultReceiveMaximum,
		keepAlive:          cfg.KeepAlive,
		pingreqSendInterval: cfg.KeepAlive,
		autoPubResponse:     true,
		autoPingResponse:    true,
	}
	return e
}

// clearSession discards in-flight store, packet-id allocator, and
// topic-alias map state, for a fresh (non-resumed) session — either a
// CONNACK carrying SessionPresent=false or a transport loss on a
// clean-session connection (see NotifyClosed).
func (e *Engine) clearSession() {
	e.inflight.Clear()
	e.outIDs.Clear()
	e.sendAlias.Clear()
	e.recvAlias.Clear()
	e.sentUnacked = 0
	e.recvProcessing = 0
}

// State reports a human-readable connection lifecycle position, for
// diagnostics and tests.
func (e *Engine) State() string { return e.state.String() }

// Version reports the negotiated protocol version, or
// packet.VersionUndetermined before a CONNECT has been exchanged.
func (e *Engine) Version() packet.Version { return e.version }

// Role reports this engine's connection role.
func (e *Engine) Role() packet.Role { return e.role }

// Connected reports whether a successful CONNACK (received client-side,
// sent server-side) has completed the handshake.
func (e *Engine) Connected() bool { return e.state == stateConnected }

func (e *Engine) closed() bool { return e.state == stateClosed }

// OfflineQueueLen reports how many outbound packets are currently
// buffered because no connection is established.
func (e *Engine) OfflineQueueLen() int { return e.offline.Len() }

// InFlightLen reports how many outbound QoS>0 Publish/Pubrel are awaiting
// acknowledgement.
func (e *Engine) InFlightLen() int { return e.inflight.Len() }

// NextPacketID allocates a packet identifier for an outbound QoS>0
// PUBLISH, SUBSCRIBE, or UNSUBSCRIBE. Packet construction in package
// packet rejects a zero ID for these kinds, so a host builds one of these
// packets by calling NextPacketID first and passing the result in.
func (e *Engine) NextPacketID() (uint16, error) { return e.outIDs.Allocate() }

// secondsToDuration converts a wire KeepAlive (seconds) to a time.Duration.
func secondsToDuration(seconds uint16) time.Duration {
	return time.Duration(seconds) * time.Second
}

// fatal closes the engine and reports err, for conditions the engine
// cannot recover from (malformed outbound packet construction, a
// protocol violation observed on the wire).
func (e *Engine) fatal(err error) []Event {
	e.state = stateClosed
	return []Event{
		ErrorEvent{Err: err, Fatal: true},
		CloseTransport{Reason: err},
	}
}
