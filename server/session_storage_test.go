package server_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/lead-dashboard/internal/config"
	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/server"
	"github.com/jrsteele09/lead-dashboard/sessions"
	"github.com/jrsteele09/lead-dashboard/sessions/sqlitestore"
	"github.com/stretchr/testify/require"
)

func TestOpenSessionStorage(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		t.Setenv("SESSION_STORE", "memory")
		storage, closeFn, err := server.OpenSessionStorage(context.Background(), config.New())
		require.NoError(t, err)
		require.IsType(t, &sessions.InMemoryStorage{}, storage)
		require.NoError(t, closeFn())
	})

	t.Run("sqlite", func(t *testing.T) {
		t.Setenv("SESSION_STORE", "sqlite")
		t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "sessions.db"))
		storage, closeFn, err := server.OpenSessionStorage(context.Background(), config.New())
		require.NoError(t, err)
		require.IsType(t, &sqlitestore.Store{}, storage)
		require.NoError(t, closeFn())
	})

	t.Run("unknown", func(t *testing.T) {
		t.Setenv("SESSION_STORE", "etcd")
		_, _, err := server.OpenSessionStorage(context.Background(), config.New())
		require.Error(t, err)
	})
}

func TestRunSessionJanitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage := sessions.NewInMemoryStorage()
	require.NoError(t, storage.Set(ctx, "browser-1", sessions.KeyAgentID, "a1"))

	done := make(chan struct{})
	go func() {
		server.RunSessionJanitor(ctx, storage, 0, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, err := storage.Get(ctx, "browser-1", sessions.KeyAgentID)
		return apperrors.Is(err, apperrors.ErrSessionNotFound)
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
