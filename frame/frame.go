// Package frame implements the streaming packet framer: it turns an
// arbitrary sequence of byte chunks (as delivered by a transport with no
// message boundaries of its own) into a sequence of complete, whole
// control packets, buffering any partial packet between calls.
package frame

import (
	"errors"

	"github.com/axmq/mqttengine/packet"
	"github.com/axmq/mqttengine/wire"
)

// ErrPacketTooLarge is returned by Push when a fixed header announces a
// remaining length that would make the whole packet exceed MaxSize. The
// framer reports this before buffering the oversized body, so a host
// enforcing Maximum Packet Size never has to hold attacker-controlled
// amounts of data.
var ErrPacketTooLarge = errors.New("frame: packet exceeds configured maximum size")

// RawPacket is one complete, still-undecoded control packet lifted off the
// wire: the parsed fixed header plus the exact remaining-length body that
// follows it. Body aliases the Framer's internal buffer; the typed
// packet parsers in package packet slice it further (topic names,
// payload, property values) without copying, so the only copy a PUBLISH
// payload ever incurs end to end is the one Push makes when a chunk
// arrives. Body is never mutated in place, so it stays valid for as long
// as the caller keeps a reference to it.
type RawPacket struct {
	Header packet.FixedHeader
	Body   []byte
}

// Framer accumulates bytes fed to it via Push and yields complete raw
// packets as soon as they are fully buffered.
type Framer struct {
	// MaxSize, if non-zero, bounds the total encoded size (fixed header +
	// remaining length) of any single packet. Zero means unbounded.
	MaxSize uint32

	buf []byte
}

// New creates an empty Framer.
func New() *Framer {
	return &Framer{}
}

// Push appends data to the framer's internal buffer and returns every
// packet that is now complete, in wire order. A partial trailing packet,
// if any, is retained internally for the next call. Push returns an error
// and stops as soon as it observes malformed framing (a reserved-kind
// byte, an oversized Variable Byte Integer, or a packet exceeding
// MaxSize); the caller should treat that as a protocol error and close
// the connection.
func (f *Framer) Push(data []byte) ([]RawPacket, error) {
	f.buf = append(f.buf, data...)

	var out []RawPacket
	for len(f.buf) > 0 {
		fh, n, err := packet.DecodeFixedHeader(f.buf)
		if err != nil {
			if errors.Is(err, wire.ErrIncomplete) {
				break
			}
			return out, err
		}

		total := n + int(fh.RemainingLength)
		if f.MaxSize != 0 && uint32(total) > f.MaxSize {
			return out, ErrPacketTooLarge
		}
		if len(f.buf) < total {
			break
		}

		out = append(out, RawPacket{Header: fh, Body: f.buf[n:total]})
		f.buf = f.buf[total:]
	}

	if len(f.buf) == 0 {
		f.buf = nil
	}
	return out, nil
}

// Pending reports how many bytes of a not-yet-complete packet are
// currently buffered.
func (f *Framer) Pending() int { return len(f.buf) }

// Reset discards any partially buffered packet. Used when a connection is
// abandoned and its Framer is about to be reused for a new one.
func (f *Framer) Reset() { f.buf = nil }
