package alias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMapAssignsThenReuses(t *testing.T) {
	m := NewSendMap(2)

	a, omit := m.Resolve("a/b")
	assert.Equal(t, uint16(1), a)
	assert.False(t, omit)

	a2, omit2 := m.Resolve("a/b")
	assert.Equal(t, uint16(1), a2)
	assert.True(t, omit2)
}

func TestSendMapEvictsLeastRecentlyUsed(t *testing.T) {
	m := NewSendMap(2)
	aliasA, _ := m.Resolve("a")
	_, _ = m.Resolve("b")

	// touch "b" so "a" becomes the LRU entry
	_, _ = m.Resolve("b")

	aliasC, omit := m.Resolve("c")
	assert.False(t, omit)
	assert.Equal(t, aliasA, aliasC, "c should reuse a's evicted alias value")

	// "a" must now be unmapped
	_, omitA := m.Resolve("a")
	assert.False(t, omitA)
}

func TestSendMapWithZeroMaxNeverAliases(t *testing.T) {
	m := NewSendMap(0)
	a, omit := m.Resolve("a/b")
	assert.Equal(t, uint16(0), a)
	assert.False(t, omit)
}

func TestSendMapClear(t *testing.T) {
	m := NewSendMap(2)
	_, _ = m.Resolve("a")
	assert.Equal(t, 1, m.Len())
	m.Clear()
	assert.Equal(t, 0, m.Len())
}

func TestRecvMapLearnThenResolve(t *testing.T) {
	m := NewRecvMap(5)
	require.NoError(t, m.Learn(3, "sensor/temp"))

	topic, err := m.Resolve(3)
	require.NoError(t, err)
	assert.Equal(t, "sensor/temp", topic)
}

func TestRecvMapResolveUnmappedAlias(t *testing.T) {
	m := NewRecvMap(5)
	_, err := m.Resolve(1)
	assert.ErrorIs(t, err, ErrAliasUnmapped)
}

func TestRecvMapRejectsOutOfRange(t *testing.T) {
	m := NewRecvMap(2)
	assert.ErrorIs(t, m.Learn(0, "x"), ErrAliasOutOfRange)
	assert.ErrorIs(t, m.Learn(3, "x"), ErrAliasOutOfRange)
	_, err := m.Resolve(3)
	assert.ErrorIs(t, err, ErrAliasOutOfRange)
}

func TestRecvMapClear(t *testing.T) {
	m := NewRecvMap(5)
	require.NoError(t, m.Learn(1, "x"))
	m.Clear()
	_, err := m.Resolve(1)
	assert.ErrorIs(t, err, ErrAliasUnmapped)
}
