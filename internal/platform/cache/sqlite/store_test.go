package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/louisbranch/scholarflow/internal/platform/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
}

func TestSetGetDeleteRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	key := cache.ORCIDWorksKey("0000-0002-1825-0097")

	require.NoError(t, store.Set(ctx, key, []byte(`[{"title":"On Computable Numbers"}]`), time.Minute))

	payload, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"title":"On Computable Numbers"}]`, string(payload))

	require.NoError(t, store.Set(ctx, key, []byte(`[]`), time.Minute))
	payload, _, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(payload))

	require.NoError(t, store.Delete(ctx, key, "missing"))
	_, ok, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpiredEntriesReadAsMisses(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "profile:public:ada", []byte(`{}`), time.Minute))
	require.NoError(t, store.Set(ctx, "profile:public:grace", []byte(`{}`), 0))

	now = now.Add(2 * time.Minute)
	_, ok, err := store.Get(ctx, "profile:public:ada")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Get(ctx, "profile:public:grace")
	require.NoError(t, err)
	assert.True(t, ok, "entries without ttl never expire")

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestSetValidatesInput(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.Set(ctx, " ", []byte("x"), time.Minute))
	assert.Error(t, store.Set(ctx, "k", nil, time.Minute))
	_, _, err := store.Get(ctx, "")
	assert.Error(t, err)
}

func TestGetWrapsQueryErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT payload_json, expires_at FROM cache_entries").
		WithArgs("orcid:works:x").
		WillReturnError(assert.AnError)

	_, _, err = NewWithDB(db).Get(context.Background(), "orcid:works:x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get cache entry")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScopeOf(t *testing.T) {
	assert.Equal(t, "orcid:works", scopeOf("orcid:works:0000-0001"))
	assert.Equal(t, "default", scopeOf("plain"))
}
