package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacheRoundTrip(t *testing.T) {
	c := New(t.TempDir(), time.Hour)

	require.NoError(t, c.Put("members:https://example.com", payload{Name: "roster", Count: 42}))

	var got payload
	hit, err := c.Get("members:https://example.com", &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, payload{Name: "roster", Count: 42}, got)
}

func TestCacheMiss(t *testing.T) {
	c := New(t.TempDir(), time.Hour)

	var got payload
	hit, err := c.Get("absent", &got)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCacheExpiry(t *testing.T) {
	c := New(t.TempDir(), time.Nanosecond)

	require.NoError(t, c.Put("key", payload{Name: "stale"}))
	time.Sleep(time.Millisecond)

	var got payload
	hit, err := c.Get("key", &got)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCacheOverwrite(t *testing.T) {
	c := New(t.TempDir(), time.Hour)

	require.NoError(t, c.Put("key", payload{Count: 1}))
	require.NoError(t, c.Put("key", payload{Count: 2}))

	var got payload
	hit, err := c.Get("key", &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 2, got.Count)
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, time.Hour)

	require.NoError(t, c.Put("key", payload{Count: 1}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("not json"), 0o644))

	var got payload
	hit, err := c.Get("key", &got)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCacheClear(t *testing.T) {
	c := New(t.TempDir(), time.Hour)
	require.NoError(t, c.Put("a", payload{}))
	require.NoError(t, c.Put("b", payload{}))

	require.NoError(t, c.Clear())

	var got payload
	hit, err := c.Get("a", &got)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCacheClearMissingDir(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "never-created"), time.Hour)
	require.NoError(t, c.Clear())
}

func TestCacheDistinctKeysDistinctFiles(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, time.Hour)
	require.NoError(t, c.Put("one", payload{Count: 1}))
	require.NoError(t, c.Put("two", payload{Count: 2}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
