package dedup

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeySetAddAndHas(t *testing.T) {
	s := NewKeySet(3)
	assert.False(t, s.Has("a"))

	s.Add("a")
	s.Add("b")
	assert.True(t, s.Has("a"))
	assert.True(t, s.Has("b"))
	assert.Equal(t, 2, s.Len())

	// Re-adding an existing member is a no-op.
	s.Add("a")
	assert.Equal(t, 2, s.Len())
}

func TestKeySetEvictsOldestAtCapacity(t *testing.T) {
	s := NewKeySet(2)
	s.Add("first")
	s.Add("second")
	s.Add("third") // evicts "first"

	assert.False(t, s.Has("first"))
	assert.True(t, s.Has("second"))
	assert.True(t, s.Has("third"))
	assert.Equal(t, 2, s.Len())
}

func TestKeySetNonPositiveCapacityFallsBackToDefault(t *testing.T) {
	s := NewKeySet(0)
	for i := 0; i < 100; i++ {
		s.Add(strconv.Itoa(i))
	}
	assert.Equal(t, 100, s.Len())
}

func TestKeySetBoundedAt10000(t *testing.T) {
	s := NewKeySet(DefaultKeySetCap)
	for i := 0; i < DefaultKeySetCap+10; i++ {
		s.Add(strconv.Itoa(i))
	}
	assert.Equal(t, DefaultKeySetCap, s.Len())
	assert.False(t, s.Has("0"), "oldest key should have been evicted")
	assert.True(t, s.Has(strconv.Itoa(DefaultKeySetCap+9)))
}
