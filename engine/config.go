package engine

import (
	"time"

	"github.com/axmq/mqttengine/packet"
)

// Config parameterizes a connection engine. Fields that only one role
// consults are ignored by the other (e.g. a Server-role engine takes its
// keep-alive from the peer's CONNECT rather than from KeepAlive).
type Config struct {
	Role    packet.Role
	Version packet.Version // VersionUndetermined lets a Server-role engine learn it from the peer's CONNECT

	KeepAlive time.Duration // client: interval between PINGREQ sends if idle

	ReceiveMaximum    uint16 // this side's advertised Receive Maximum (v5.0); 0 selects the default of 65535
	TopicAliasMaximum uint16 // this side's advertised Topic Alias Maximum (v5.0)
	MaxPacketSize     uint32 // 0 means unbounded

	OfflineQueueCapacity int // 0 means unbounded

	// EnqueueOfflineOnZeroReceiveMaximum decides what happens to an
	// outbound QoS>0 PUBLISH sent while not Connected, before any peer
	// Receive Maximum is in force. When true (the default), such publishes
	// are queued for later delivery; when false, Send rejects them with
	// ErrNotConnected. QoS 0 publishes are always queued while not
	// Connected.
	EnqueueOfflineOnZeroReceiveMaximum bool

	// pingreqRecvMultiplier (below) scales the CONNECT's KeepAlive to produce the grace period
	// a Server-role engine allows between expected client PINGREQs before
	// treating the connection as dead (MQTT 5.0 §3.1.2.10 permits but does
	// not mandate a specific multiplier). Fixed at 1.5, matching common
	// broker practice, rather than exposed as a tunable.
}

const pingreqRecvMultiplier = 1.5

// DefaultConfig returns a Config with the engine's baseline defaults.
func DefaultConfig(role packet.Role) Config {
	return Config{
		Role:                               role,
		KeepAlive:                          60 * time.Second,
		ReceiveMaximum:                     65535,
		OfflineQueueCapacity:               0,
		EnqueueOfflineOnZeroReceiveMaximum: true,
	}
}
