package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
)

var (
	_ Storage = (*InMemoryStorage)(nil)
	_ Expirer = (*InMemoryStorage)(nil)
)

type inMemoryNamespace struct {
	values    map[string]string
	updatedAt time.Time
}

// InMemoryStorage is an in-memory implementation of Storage
type InMemoryStorage struct {
	mu         sync.RWMutex
	namespaces map[string]*inMemoryNamespace
	now        func() time.Time
}

// NewInMemoryStorage creates a new in-memory session storage
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		namespaces: make(map[string]*inMemoryNamespace),
		now:        time.Now,
	}
}

// Set creates or updates a session value
func (r *InMemoryStorage) Set(_ context.Context, namespace, key, value string) error {
	if err := ValidateLocation(namespace, key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.namespaces[namespace]
	if !ok {
		ns = &inMemoryNamespace{values: make(map[string]string)}
		r.namespaces[namespace] = ns
	}
	ns.values[key] = value
	ns.updatedAt = r.now()
	return nil
}

// Get retrieves a session value
func (r *InMemoryStorage) Get(_ context.Context, namespace, key string) (string, error) {
	if err := ValidateLocation(namespace, key); err != nil {
		return "", err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ns, ok := r.namespaces[namespace]
	if !ok {
		return "", apperrors.ErrSessionNotFound
	}
	value, ok := ns.values[key]
	if !ok {
		return "", apperrors.ErrSessionNotFound
	}
	return value, nil
}

// Delete removes a session value
func (r *InMemoryStorage) Delete(_ context.Context, namespace, key string) error {
	if err := ValidateLocation(namespace, key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.namespaces[namespace]
	if !ok {
		return nil // Already doesn't exist, no error
	}
	delete(ns.values, key)

	// Clean up empty namespaces
	if len(ns.values) == 0 {
		delete(r.namespaces, namespace)
	}
	return nil
}

// DeleteExpired drops namespaces last written before the given time. Reads do
// not count as writes.
func (r *InMemoryStorage) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for name, ns := range r.namespaces {
		if ns.updatedAt.Before(before) {
			delete(r.namespaces, name)
			removed++
		}
	}
	return removed, nil
}

// ValidateLocation is shared by the durable Storage implementations.
func ValidateLocation(namespace, key string) error {
	if namespace == "" {
		return fmt.Errorf("%w: namespace is required", apperrors.ErrInvalidRequest)
	}
	if key == "" {
		return fmt.Errorf("%w: key is required", apperrors.ErrInvalidRequest)
	}
	return nil
}
