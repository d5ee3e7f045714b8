package viewer

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/pnl-workbook/internal/xlsxparser"
)

func TestCacheEvictsOldestStored(t *testing.T) {
	c := NewCache(2)
	now := time.Now()
	a, b, d := &xlsxparser.Snapshot{Book: "a"}, &xlsxparser.Snapshot{Book: "b"}, &xlsxparser.Snapshot{Book: "d"}

	c.Put("a.xlsx", now, a)
	c.Put("b.xlsx", now, b)

	got, ok := c.Get("a.xlsx", now)
	require.True(t, ok)
	assert.Same(t, a, got)

	// Storing a again makes it the most recent entry.
	c.Put("a.xlsx", now, a)
	c.Put("d.xlsx", now, d)
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get("b.xlsx", now)
	assert.False(t, ok, "b was least recently stored")
	_, ok = c.Get("a.xlsx", now)
	assert.True(t, ok)
	_, ok = c.Get("d.xlsx", now)
	assert.True(t, ok)
}

func TestCacheCapacityIsTen(t *testing.T) {
	c := NewCache(0)
	assert.Equal(t, DefaultCacheSize, c.capacity)

	now := time.Now()
	for i := 0; i < 15; i++ {
		c.Put(fmt.Sprintf("%02d.xlsx", i), now, &xlsxparser.Snapshot{})
	}
	assert.Equal(t, 10, c.Len())
	_, ok := c.Get("04.xlsx", now)
	assert.False(t, ok)
	_, ok = c.Get("05.xlsx", now)
	assert.True(t, ok)
}

func TestCacheDropsStaleVersions(t *testing.T) {
	c := NewCache(5)
	first := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	c.Put("a.xlsx", first, &xlsxparser.Snapshot{Book: "v1"})
	_, ok := c.Get("a.xlsx", second)
	assert.False(t, ok, "a newer file misses")

	c.Put("a.xlsx", second, &xlsxparser.Snapshot{Book: "v2"})
	assert.Equal(t, 1, c.Len())

	_, ok = c.Get("a.xlsx", first)
	assert.False(t, ok)
	got, ok := c.Get("a.xlsx", second)
	require.True(t, ok)
	assert.Equal(t, "v2", got.Book)
}

func TestCacheConcurrentReaders(t *testing.T) {
	c := NewCache(DefaultCacheSize)
	now := time.Now()
	c.Put("a.xlsx", now, &xlsxparser.Snapshot{Book: "a"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, ok := c.Get("a.xlsx", now)
			assert.True(t, ok)
			assert.Equal(t, "a", got.Book)
		}()
	}
	wg.Wait()
}
