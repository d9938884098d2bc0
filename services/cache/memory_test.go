package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryService(t *testing.T) {
	m := NewMemoryService()

	_, err := m.Get("missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, m.Set("seen:RR100001", []byte("1"), 0))

	value, err := m.Get("seen:RR100001")
	require.NoError(t, err)
	assert.Equal(t, "1", string(value))

	require.NoError(t, m.Delete("seen:RR100001"))
	_, err = m.Get("seen:RR100001")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryServiceExpiry(t *testing.T) {
	m := NewMemoryService()

	require.NoError(t, m.Set("seen:RR100001", []byte("1"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := m.Get("seen:RR100001")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
