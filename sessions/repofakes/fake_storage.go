package repofakes

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/lead-dashboard/sessions"
)

var _ sessions.Storage = (*FakeStorage)(nil)

// ErrInjected is returned by FakeStorage for operations configured to fail.
var ErrInjected = errors.New("injected storage failure")

// FakeStorage wraps the in-memory storage and can be told to fail reads,
// writes to particular keys, or deletes.
type FakeStorage struct {
	inner *sessions.InMemoryStorage

	lock        sync.RWMutex
	failGet     bool
	failSetKeys map[string]bool
	failDelete  bool
	calls       []string
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		inner:       sessions.NewInMemoryStorage(),
		failSetKeys: make(map[string]bool),
	}
}

func (f *FakeStorage) FailGet(fail bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.failGet = fail
}

func (f *FakeStorage) FailSet(key string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.failSetKeys[key] = true
}

func (f *FakeStorage) FailDelete(fail bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.failDelete = fail
}

// Calls returns the operations seen so far, e.g. "set:agentId".
func (f *FakeStorage) Calls() []string {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeStorage) record(call string) {
	f.lock.Lock()
	f.calls = append(f.calls, call)
	f.lock.Unlock()
}

func (f *FakeStorage) Get(ctx context.Context, namespace, key string) (string, error) {
	f.record("get:" + key)
	f.lock.RLock()
	fail := f.failGet
	f.lock.RUnlock()
	if fail {
		return "", ErrInjected
	}
	return f.inner.Get(ctx, namespace, key)
}

func (f *FakeStorage) Set(ctx context.Context, namespace, key, value string) error {
	f.record("set:" + key)
	f.lock.RLock()
	fail := f.failSetKeys[key]
	f.lock.RUnlock()
	if fail {
		return ErrInjected
	}
	return f.inner.Set(ctx, namespace, key, value)
}

func (f *FakeStorage) Delete(ctx context.Context, namespace, key string) error {
	f.record("delete:" + key)
	f.lock.RLock()
	fail := f.failDelete
	f.lock.RUnlock()
	if fail {
		return ErrInjected
	}
	return f.inner.Delete(ctx, namespace, key)
}
