package watchlist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/divcal/pkg/config"
	"github.com/wonny/divcal/pkg/database"
	"github.com/wonny/divcal/pkg/logger"
)

func TestSet(t *testing.T) {
	s := NewSet("2330", "0056", "2330")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("2330"))
	assert.False(t, s.Has("2317"))
	assert.Equal(t, []string{"0056", "2330"}, s.Codes())

	var empty Set
	assert.False(t, empty.Has("2330"))
	assert.Empty(t, empty.Codes())
}

// storeContract runs the behaviour every Store must share
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	codes, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, codes)

	require.NoError(t, store.Add(ctx, "alice", "2330"))
	require.NoError(t, store.Add(ctx, "alice", "0056"))
	require.NoError(t, store.Add(ctx, "alice", "2330"))
	require.NoError(t, store.Add(ctx, "bob", "2317"))

	codes, err = store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"2330", "0056"}, codes)

	require.NoError(t, store.Remove(ctx, "alice", "2330"))
	require.NoError(t, store.Remove(ctx, "alice", "9999"))

	codes, err = store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"0056"}, codes)

	codes, err = store.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"2317"}, codes)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Add(ctx, "alice", "2330"))

	codes, _ := store.Load(ctx, "alice")
	codes[0] = "XXXX"

	again, _ := store.Load(ctx, "alice")
	assert.Equal(t, []string{"2330"}, again)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.db")

	store, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer store.Close()

	storeContract(t, store)
}

func TestSQLiteStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "watchlist.db")

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, "alice", "2330"))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	codes, err := reopened.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"2330"}, codes)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping postgres watchlist test")
	}

	cfg := &config.Config{Database: config.DatabaseConfig{URL: url, MaxConns: 2, MinConns: 1}}
	ctx := context.Background()
	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, EnsureSchema(ctx, db))
	require.NoError(t, EnsureSchema(ctx, db), "idempotent")
	store := NewPostgresStore(db.Pool)

	_, err = db.Pool.Exec(ctx, `DELETE FROM watchlist_items WHERE owner_id IN ('alice', 'bob')`)
	require.NoError(t, err)

	storeContract(t, store)
}

func TestService(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), logger.Nop())

	code, err := svc.Add(ctx, "alice", " 2330 ")
	require.NoError(t, err)
	assert.Equal(t, "2330", code)

	_, err = svc.Add(ctx, "alice", "bad code")
	assert.ErrorIs(t, err, ErrInvalidCode)

	tracked, err := svc.Toggle(ctx, "alice", "0056")
	require.NoError(t, err)
	assert.True(t, tracked)

	tracked, err = svc.Toggle(ctx, "alice", "2330")
	require.NoError(t, err)
	assert.False(t, tracked)

	set, err := svc.Set(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"0056"}, set.Codes())

	_, err = svc.Remove(ctx, "alice", "x")
	assert.ErrorIs(t, err, ErrInvalidCode)
}
