// Package alias implements the two MQTT 5.0 Topic Alias maps: the
// send-side map a client or server consults before emitting a PUBLISH, and
// the receive-side map it consults (and updates) on an inbound PUBLISH.
package alias

import (
	"container/list"
	"errors"
)

// ErrAliasOutOfRange is returned when an alias value of 0 or greater than
// the negotiated maximum is used.
var ErrAliasOutOfRange = errors.New("alias: value out of negotiated range")

// ErrAliasUnmapped is returned by Resolve when an inbound alias-only
// PUBLISH refers to an alias the receive-side map has never seen a topic
// name for (MQTT 5.0 §3.3.2.3.4 — a protocol error the caller must close
// the connection over).
var ErrAliasUnmapped = errors.New("alias: no topic name mapped for alias")

// SendMap is the send-side Topic Alias table: given a topic name, it
// decides whether to aliase it on the wire, reusing a prior mapping,
// allocating a free alias, or evicting the least-recently-used mapping
// once the negotiated maximum is reached.
type SendMap struct {
	max     uint16
	byTopic map[string]*list.Element
	order   *list.List // front = most recently used
}

type sendEntry struct {
	topic string
	alias uint16
}

// NewSendMap creates a send-side map honoring the peer's advertised Topic
// Alias Maximum. A max of 0 means the peer does not support topic
// aliasing at all; every Resolve call then reports no alias available.
func NewSendMap(max uint16) *SendMap {
	return &SendMap{max: max, byTopic: make(map[string]*list.Element), order: list.New()}
}

// Resolve decides how to emit topic on the wire: if the topic already has
// an alias mapped, it returns (alias, topic name omitted = true);
// otherwise, if room remains (or an LRU entry can be evicted), it assigns
// a new alias and reports that the full topic name must still be sent
// this once; otherwise it reports no alias (alias == 0), meaning send the
// topic name only, as on a connection with no aliasing.
func (m *SendMap) Resolve(topic string) (assignedAlias uint16, omitTopicName bool) {
	if m.max == 0 {
		return 0, false
	}
	if el, ok := m.byTopic[topic]; ok {
		m.order.MoveToFront(el)
		return el.Value.(*sendEntry).alias, true
	}

	var newAlias uint16
	if uint16(m.order.Len()) < m.max {
		newAlias = uint16(m.order.Len()) + 1
	} else {
		oldest := m.order.Back()
		entry := oldest.Value.(*sendEntry)
		newAlias = entry.alias
		delete(m.byTopic, entry.topic)
		m.order.Remove(oldest)
	}

	el := m.order.PushFront(&sendEntry{topic: topic, alias: newAlias})
	m.byTopic[topic] = el
	return newAlias, false
}

// Clear discards every mapping, for session reset.
func (m *SendMap) Clear() {
	m.byTopic = make(map[string]*list.Element)
	m.order = list.New()
}

// Len reports the number of topics currently mapped.
func (m *SendMap) Len() int { return m.order.Len() }

// RecvMap is the receive-side Topic Alias table: a simple one-way alias
// to topic-name map, updated whenever an inbound PUBLISH carries both a
// Topic Alias and a non-empty topic name.
type RecvMap struct {
	max   uint16
	topic map[uint16]string
}

// NewRecvMap creates a receive-side map honoring the Topic Alias Maximum
// this side has advertised to the peer.
func NewRecvMap(max uint16) *RecvMap {
	return &RecvMap{max: max, topic: make(map[uint16]string)}
}

// Learn records that inbound alias now refers to topic. Call this whenever
// an inbound PUBLISH carries a Topic Alias property alongside a non-empty
// topic name.
func (m *RecvMap) Learn(aliasValue uint16, topic string) error {
	if aliasValue == 0 || aliasValue > m.max {
		return ErrAliasOutOfRange
	}
	m.topic[aliasValue] = topic
	return nil
}

// Resolve returns the topic name previously learned for aliasValue. Call
// this when an inbound PUBLISH carries a Topic Alias property with an
// empty topic name.
func (m *RecvMap) Resolve(aliasValue uint16) (string, error) {
	if aliasValue == 0 || aliasValue > m.max {
		return "", ErrAliasOutOfRange
	}
	topic, ok := m.topic[aliasValue]
	if !ok {
		return "", ErrAliasUnmapped
	}
	return topic, nil
}

// Clear discards every learned mapping, for session reset.
func (m *RecvMap) Clear() { m.topic = make(map[uint16]string) }
