package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	entries map[string][]byte
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	payload, ok := m.entries[key]
	return payload, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, payload []byte, _ time.Duration) error {
	m.entries[key] = payload
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := &memoryCache{entries: map[string][]byte{}}

	require.NoError(t, SetJSON(ctx, c, PublicProfileKey(" Ada-Lovelace "), map[string]string{"username": "ada-lovelace"}, time.Minute))
	assert.Contains(t, c.entries, "profile:public:ada-lovelace")

	var got map[string]string
	ok, err := GetJSON(ctx, c, PublicProfileKey("ada-lovelace"), &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ada-lovelace", got["username"])

	c.entries["bad"] = []byte("{")
	_, err = GetJSON(ctx, c, "bad", &got)
	assert.Error(t, err)
}

func TestNilCacheHelpersAreNoops(t *testing.T) {
	ok, err := GetJSON(context.Background(), nil, "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, SetJSON(context.Background(), nil, "k", 1, time.Minute))
}

func TestOpenResolvesBackends(t *testing.T) {
	c, closer, err := Open(context.Background(), Config{Backend: "none"}, nil)
	require.NoError(t, err)
	assert.IsType(t, Nop{}, c)
	assert.NoError(t, closer.Close())

	mem := &memoryCache{entries: map[string][]byte{}}
	c, _, err = Open(context.Background(), Config{Backend: "SQLite"}, map[string]Opener{
		BackendSQLite: func(context.Context, Config) (Cache, io.Closer, error) { return mem, Nop{}, nil },
	})
	require.NoError(t, err)
	assert.Same(t, mem, c)

	_, _, err = Open(context.Background(), Config{Backend: "memcached"}, nil)
	assert.Error(t, err)
}

func TestORCIDWorksKey(t *testing.T) {
	assert.Equal(t, "orcid:works:0000-0002-1825-0097", ORCIDWorksKey(" 0000-0002-1825-0097 "))
}
