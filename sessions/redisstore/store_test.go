package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/lead-dashboard/agents"
	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/sessions"
	"github.com/jrsteele09/lead-dashboard/sessions/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T, ttl time.Duration) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redisstore.Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return redisstore.New(client, ttl), mr
}

func TestKey(t *testing.T) {
	require.Equal(t, "dashboard:session:browser-1:agentId", redisstore.Key("browser-1", sessions.KeyAgentID))
}

func TestStore_ValidatesLocation(t *testing.T) {
	store := redisstore.New(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, "", sessions.KeyAgentID)
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	require.ErrorIs(t, store.Set(ctx, "ns", "", "v"), apperrors.ErrInvalidRequest)
	require.ErrorIs(t, store.Delete(ctx, "", "k"), apperrors.ErrInvalidRequest)
}

func TestStore_UnreachableIsNotNotFound(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	store := redisstore.New(client, time.Hour)

	_, err := store.Get(context.Background(), "ns", sessions.KeyAgentID)
	require.Error(t, err)
	require.NotErrorIs(t, err, apperrors.ErrSessionNotFound)

	// The session store treats the failure as logged out.
	session := sessions.NewStore(store, "ns").Initialize(context.Background())
	require.False(t, session.Authenticated())
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := redisstore.Connect(context.Background(), "redis://:bad url")
	require.Error(t, err)
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestStore(t, time.Hour)

	_, err := store.Get(ctx, "ns", sessions.KeyAgentID)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	require.NoError(t, store.Set(ctx, "ns", sessions.KeyAgentID, "a1"))
	require.NoError(t, store.Set(ctx, "ns", sessions.KeyAgentID, "a2"))
	value, err := store.Get(ctx, "ns", sessions.KeyAgentID)
	require.NoError(t, err)
	require.Equal(t, "a2", value)

	raw, err := mr.Get(redisstore.Key("ns", sessions.KeyAgentID))
	require.NoError(t, err)
	require.Equal(t, "a2", raw)

	// Namespaces do not see each other's values.
	_, err = store.Get(ctx, "other", sessions.KeyAgentID)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "ns", sessions.KeyAgentID))
	require.NoError(t, store.Delete(ctx, "ns", sessions.KeyAgentID))
	_, err = store.Get(ctx, "ns", sessions.KeyAgentID)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	require.False(t, mr.Exists(redisstore.Key("ns", sessions.KeyAgentID)))
}

func TestStore_ExpiryIsSetOnWrite(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestStore(t, time.Hour)
	key := redisstore.Key("ns", sessions.KeyAgentID)

	require.NoError(t, store.Set(ctx, "ns", sessions.KeyAgentID, "a1"))
	require.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(30 * time.Minute)
	_, err := store.Get(ctx, "ns", sessions.KeyAgentID)
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, mr.TTL(key))

	mr.FastForward(31 * time.Minute)
	_, err = store.Get(ctx, "ns", sessions.KeyAgentID)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestStore_DefaultTTL(t *testing.T) {
	store, mr := setupTestStore(t, 0)

	require.NoError(t, store.Set(context.Background(), "ns", sessions.KeyAgentName, "Alice"))
	require.Equal(t, 24*time.Hour, mr.TTL(redisstore.Key("ns", sessions.KeyAgentName)))
}

func TestStore_SessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := setupTestStore(t, time.Hour)
	identity := agents.Identity{ID: "a1", Name: "Alice", Email: "a@x.com"}

	require.NoError(t, sessions.NewStore(store, "browser").Login(ctx, identity))
	require.Len(t, mr.Keys(), 3)

	session := sessions.NewStore(store, "browser").Initialize(ctx)
	require.Equal(t, identity, session.Identity)

	sessions.NewStore(store, "browser").Logout(ctx)
	require.Empty(t, mr.Keys())
}

func TestStore_ServerErrorIsNotNotFound(t *testing.T) {
	store, mr := setupTestStore(t, time.Hour)
	mr.SetError("ERR injected failure")

	_, err := store.Get(context.Background(), "ns", sessions.KeyAgentID)
	require.Error(t, err)
	require.NotErrorIs(t, err, apperrors.ErrSessionNotFound)

	mr.SetError("")
	require.NoError(t, store.Set(context.Background(), "ns", sessions.KeyAgentID, "a1"))
}

func TestConnect_HostPort(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redisstore.Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
