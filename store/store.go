// Package store implements the in-flight outbound store: the set of
// QoS-1/QoS-2 PUBLISH and PUBREL packets this side has sent but not yet
// had acknowledged, keyed by packet identifier. On session resumption the
// engine walks the store in send order and resends every entry, setting DUP
// on PUBLISH packets (MQTT 5.0 §4.4, 3.1.1 §4.4).
package store

import (
	"github.com/axmq/mqttengine/packet"
	"github.com/axmq/mqttengine/property"
)

// Stage is the QoS-2 handshake position of an in-flight outbound entry.
type Stage byte

const (
	StagePublishSent Stage = iota // awaiting PUBACK (QoS1) or PUBREC (QoS2)
	StagePubrelSent               // PUBREC received, PUBREL sent, awaiting PUBCOMP
)

// Entry is one in-flight outbound packet.
type Entry struct {
	ID      uint16
	Stage   Stage
	Publish *packet.PublishPacket // always set; is the original message being delivered
}

// Store is the ordered in-flight outbound table for one connection.
type Store struct {
	entries map[uint16]*Entry
	order   []uint16 // insertion order, for deterministic resend
}

// New creates an empty Store.
func New() *Store {
	return &Store{entries: make(map[uint16]*Entry)}
}

// PutPublish records a freshly sent QoS-1/QoS-2 PUBLISH as in flight.
func (s *Store) PutPublish(p *packet.PublishPacket) error {
	if _, exists := s.entries[p.ID]; exists {
		return ErrAlreadyInFlight
	}
	e := &Entry{ID: p.ID, Stage: StagePublishSent, Publish: p}
	s.entries[p.ID] = e
	s.order = append(s.order, p.ID)
	return nil
}

// OnPuback removes a QoS-1 entry once it is acknowledged.
func (s *Store) OnPuback(id uint16) error {
	return s.remove(id)
}

// OnPubrec advances a QoS-2 entry from StagePublishSent to StagePubrelSent.
// The caller is responsible for emitting the corresponding PUBREL.
func (s *Store) OnPubrec(id uint16) (*Entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotInFlight
	}
	e.Stage = StagePubrelSent
	return e, nil
}

// OnPubcomp removes a QoS-2 entry once its PUBREL is acknowledged.
func (s *Store) OnPubcomp(id uint16) error {
	return s.remove(id)
}

func (s *Store) remove(id uint16) error {
	if _, ok := s.entries[id]; !ok {
		return ErrNotInFlight
	}
	delete(s.entries, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the in-flight entry for id, if any.
func (s *Store) Get(id uint16) (*Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Len reports the number of in-flight entries.
func (s *Store) Len() int { return len(s.order) }

// Resend returns, in original send order, the packets that must be
// re-emitted after a session is resumed: a PUBLISH-stage entry is
// reported as a PUBLISH with DUP set (unless it is QoS 2's first send
// attempt is irrelevant here — resumption always implies a prior send, so
// DUP is always set); a PUBREL-stage entry is reported as a bare PUBREL.
func (s *Store) Resend() []packet.Packet {
	out := make([]packet.Packet, 0, len(s.order))
	for _, id := range s.order {
		e := s.entries[id]
		switch e.Stage {
		case StagePublishSent:
			resent := *e.Publish
			resent.Dup = true
			out = append(out, &resent)
		case StagePubrelSent:
			rel, err := packet.NewPubrel(e.Publish.Version(), id, packet.ReasonSuccess, property.Set{})
			if err != nil {
				continue
			}
			out = append(out, rel)
		}
	}
	return out
}

// Clear discards every in-flight entry, for a clean-start/clean-session
// connection where prior in-flight state must not survive.
func (s *Store) Clear() {
	s.entries = make(map[uint16]*Entry)
	s.order = nil
}
