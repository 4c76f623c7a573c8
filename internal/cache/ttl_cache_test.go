package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsStoredValue(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("k", "v")

	val, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", val)
}

func TestGetMissesUnknownKey(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestExpiredEntryIsMiss(t *testing.T) {
	c := New(10 * time.Millisecond)
	defer c.Close()

	c.Set("k", "v")
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCloseIsIdempotent(t *testing.T) {
	c := New(time.Minute)

	c.Close()
	assert.NotPanics(t, c.Close)
}

func TestDeleteRemovesEntry(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	c.Set("k", "v")
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}
