package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// both embedded providers satisfy the same contract
func providers(t *testing.T) map[string]Provider {
	t.Helper()
	sqlite, err := NewSQLiteCache("file:" + t.TempDir() + "/cache.db")
	require.NoError(t, err)
	return map[string]Provider{
		"memory": NewMemCache(),
		"sqlite": sqlite,
	}
}

func TestPutGet(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Put("k", time.Now().Add(time.Minute), []byte("v")))

			got, ok, err := p.Get("k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("v"), got)
		})
	}
}

func TestMissOnAbsentKey(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := p.Get("absent")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestExpiredEntryReadsAsMiss(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Put("k", time.Now().Add(-time.Minute), []byte("v")))

			_, ok, err := p.Get("k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestPurge(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Put("k", time.Now().Add(time.Minute), []byte("v")))
			require.NoError(t, p.Purge("k"))

			_, ok, err := p.Get("k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestPutOverwrites(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Put("k", time.Now().Add(time.Minute), []byte("old")))
			require.NoError(t, p.Put("k", time.Now().Add(time.Minute), []byte("new")))

			got, _, err := p.Get("k")
			require.NoError(t, err)
			assert.Equal(t, []byte("new"), got)
		})
	}
}
