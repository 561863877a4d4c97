package sessions

import (
	"context"
	"time"
)

// Storage is the durable key/value store backing agent sessions. Each browser
// (or headless client) owns one namespace; keys inside it are the fixed
// session keys. Get returns errors.ErrSessionNotFound for absent keys.
type Storage interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
}

// Expirer is implemented by storages that can drop namespaces not written
// since a given time. The count reports how many stored entries went away.
type Expirer interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
