package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := New(time.Minute)
	c.now = func() time.Time { return now }

	_, ok := c.Get()
	assert.False(t, ok)

	c.Set(&Entry{LoadID: "one", FetchedAt: now})
	e, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, "one", e.LoadID)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get()
	assert.False(t, ok)

	e, ok = c.Latest()
	require.True(t, ok)
	assert.Equal(t, "one", e.LoadID)

	c.Invalidate()
	_, ok = c.Latest()
	assert.False(t, ok)
}

func TestCacheWithoutTTLNeverExpires(t *testing.T) {
	c := New(0)
	c.Set(&Entry{LoadID: "old", FetchedAt: time.Unix(0, 0)})
	e, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, "old", e.LoadID)
}
