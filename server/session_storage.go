package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/lead-dashboard/internal/config"
	"github.com/jrsteele09/lead-dashboard/sessions"
	"github.com/jrsteele09/lead-dashboard/sessions/redisstore"
	"github.com/jrsteele09/lead-dashboard/sessions/sqlitestore"
	"github.com/rs/zerolog/log"
)

// OpenSessionStorage opens the storage selected by SESSION_STORE. The
// returned close func releases it.
func OpenSessionStorage(ctx context.Context, cfg config.SessionConfig) (sessions.Storage, func() error, error) {
	switch cfg.GetSessionStore() {
	case config.SessionStoreMemory:
		return sessions.NewInMemoryStorage(), func() error { return nil }, nil

	case config.SessionStoreSQLite:
		store, err := sqlitestore.Open(ctx, cfg.GetSQLitePath())
		if err != nil {
			return nil, nil, fmt.Errorf("[server OpenSessionStorage] %w", err)
		}
		log.Info().Str("path", cfg.GetSQLitePath()).Msg("Sessions stored in SQLite")
		return store, store.Close, nil

	case config.SessionStoreRedis:
		client, err := redisstore.Connect(ctx, cfg.GetRedisURL())
		if err != nil {
			return nil, nil, fmt.Errorf("[server OpenSessionStorage] %w", err)
		}
		log.Info().Msg("Sessions stored in Redis")
		return redisstore.New(client, cfg.GetSessionMaxAge()), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("[server OpenSessionStorage] unknown session store %q", cfg.GetSessionStore())
	}
}

// RunSessionJanitor drops sessions written more than maxAge ago until ctx is
// done. Expiry is absolute: reading a session does not extend it. Storages
// that expire entries themselves are left alone.
func RunSessionJanitor(ctx context.Context, storage sessions.Storage, maxAge, interval time.Duration) {
	expirer, ok := storage.(sessions.Expirer)
	if !ok {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := expirer.DeleteExpired(ctx, now.Add(-maxAge))
			if err != nil {
				log.Err(err).Msg("Failed to expire sessions")
				continue
			}
			if removed > 0 {
				log.Info().Int64("removed", removed).Msg("Expired sessions")
			}
		}
	}
}
