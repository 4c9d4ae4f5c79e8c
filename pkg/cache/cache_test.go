package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/advisor/core"
)

func TestKeyFor_DeterministicAndOrderSensitive(t *testing.T) {
	turns := []core.DialogTurn{
		{Role: core.RoleSystem, Content: "you are an advisor"},
		{Role: core.RoleUser, Content: "round one"},
	}
	assert.Equal(t, KeyFor(turns), KeyFor(turns))

	reversed := []core.DialogTurn{turns[1], turns[0]}
	assert.NotEqual(t, KeyFor(turns), KeyFor(reversed))
}

func TestKeyFor_FieldBoundariesMatter(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must not collide.
	a := KeyFor([]core.DialogTurn{{Role: "ab", Content: "c"}})
	b := KeyFor([]core.DialogTurn{{Role: "a", Content: "bc"}})
	assert.NotEqual(t, a, b)
}

func TestResponseCache_PutGet(t *testing.T) {
	c, err := New(4, time.Minute)
	require.NoError(t, err)

	key := KeyFor([]core.DialogTurn{{Role: core.RoleUser, Content: "hello"}})
	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Put(key, `{"suggestions":[]}`)
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, `{"suggestions":[]}`, got)
	assert.Equal(t, 1, c.Len())
}

func TestResponseCache_TTLExpiry(t *testing.T) {
	c, err := New(4, time.Minute)
	require.NoError(t, err)

	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	key := KeyFor([]core.DialogTurn{{Role: core.RoleUser, Content: "hello"}})
	c.Put(key, "fresh")

	current = current.Add(59 * time.Second)
	_, ok := c.Get(key)
	assert.True(t, ok)

	current = current.Add(2 * time.Second)
	_, ok = c.Get(key)
	assert.False(t, ok)
	assert.Zero(t, c.Len(), "expired entries are evicted on read")
}

func TestResponseCache_ZeroTTLNeverExpires(t *testing.T) {
	c, err := New(4, 0)
	require.NoError(t, err)

	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	key := KeyFor(nil)
	c.Put(key, "forever")

	current = current.Add(24 * time.Hour)
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "forever", got)
}

func TestResponseCache_EvictsOldest(t *testing.T) {
	c, err := New(2, time.Minute)
	require.NoError(t, err)

	k1 := KeyFor([]core.DialogTurn{{Role: core.RoleUser, Content: "1"}})
	k2 := KeyFor([]core.DialogTurn{{Role: core.RoleUser, Content: "2"}})
	k3 := KeyFor([]core.DialogTurn{{Role: core.RoleUser, Content: "3"}})

	c.Put(k1, "one")
	c.Put(k2, "two")
	c.Put(k3, "three")

	_, ok := c.Get(k1)
	assert.False(t, ok)
	_, ok = c.Get(k3)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestResponseCache_InvalidSize(t *testing.T) {
	_, err := New(0, time.Minute)
	assert.Error(t, err)
}
