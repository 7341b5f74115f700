// ABOUTME: Tests for the response cache used by the Grafana client.
// ABOUTME: Validates TTL expiration, size limits, eviction, cleanup, and concurrency safety.

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_Get_Missing(t *testing.T) {
	c := New(5*time.Minute, 100)
	defer c.Close()

	_, ok := c.Get("never-set")
	assert.False(t, ok)
}

func TestCache_SetGet(t *testing.T) {
	c := New(5*time.Minute, 100)
	defer c.Close()

	c.Set("k", []byte(`{"a":1}`))
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(v))
}

func TestCache_ValuesAreCopied(t *testing.T) {
	c := New(5*time.Minute, 100)
	defer c.Close()

	buf := []byte("original")
	c.Set("k", buf)
	buf[0] = 'X'

	v, _ := c.Get("k")
	assert.Equal(t, "original", string(v))

	v[0] = 'Y'
	again, _ := c.Get("k")
	assert.Equal(t, "original", string(again))
}

func TestCache_Expired(t *testing.T) {
	c := New(10*time.Millisecond, 100)
	defer c.Close()

	c.Set("expiring", []byte("v"))
	_, ok := c.Get("expiring")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("expiring")
	assert.False(t, ok)
}

func TestCache_EvictsOldest(t *testing.T) {
	c := New(5*time.Minute, 2)
	defer c.Close()

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("c", []byte("3"))

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestCache_SetRefreshesOrder(t *testing.T) {
	c := New(5*time.Minute, 2)
	defer c.Close()

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("a", []byte("1b"))
	c.Set("c", []byte("3"))

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1b", string(v))
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestCache_DeleteAndPurge(t *testing.T) {
	c := New(5*time.Minute, 10)
	defer c.Close()

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestCache_Stats(t *testing.T) {
	c := New(5*time.Minute, 10)
	defer c.Close()

	c.Set("a", []byte("1"))
	c.Get("a")
	c.Get("a")
	c.Get("b")

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestCache_RunCleanup(t *testing.T) {
	c := New(10*time.Millisecond, 10)
	defer c.Close()

	c.Set("a", []byte("1"))
	time.Sleep(20 * time.Millisecond)
	c.runCleanup()

	assert.Equal(t, 0, c.Stats().Entries)
}

func TestCache_CloseTwice(t *testing.T) {
	c := New(time.Minute, 10)
	c.Close()
	assert.NotPanics(t, c.Close)
}

func TestCache_Concurrent(t *testing.T) {
	c := New(time.Minute, 50)
	defer c.Close()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				key := fmt.Sprintf("k-%d-%d", i, j%10)
				c.Set(key, []byte("v"))
				c.Get(key)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Stats().Entries, 50)
}
