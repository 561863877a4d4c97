package config

import "time"

const (
	sessionStoreVar  = "SESSION_STORE"
	sqlitePathVar    = "SQLITE_PATH"
	redisURLVar      = "REDIS_URL"
	sessionSecretVar = "SESSION_SECRET"
	sessionMaxAgeVar = "SESSION_MAX_AGE"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"
)

type Session struct {
	src source
}

var _ SessionConfig = Session{}

// GetSessionStore is one of memory, sqlite or redis.
func (s Session) GetSessionStore() string {
	return s.src.get(sessionStoreVar, SessionStoreMemory)
}

func (s Session) GetSQLitePath() string {
	return s.src.get(sqlitePathVar, "./data/sessions.db")
}

func (s Session) GetRedisURL() string {
	return s.src.get(redisURLVar, "localhost:6379")
}

func (s Session) GetSessionSecret() string {
	return s.src.get(sessionSecretVar, "dev-session-secret-change-me")
}

func (s Session) GetSessionMaxAge() time.Duration {
	return s.src.duration(sessionMaxAgeVar, 7*24*time.Hour)
}
