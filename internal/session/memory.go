package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryStore vive en el proceso: sirve para un único nodo y para tests.
type memoryStore struct {
	prefix string
	c      *gocache.Cache
}

func NewMemory(prefix string) Store {
	return &memoryStore{prefix: prefix, c: gocache.New(gocache.NoExpiration, time.Minute)}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(prefixed(m.prefix, key))
	if !ok {
		return "", ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

func (m *memoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(prefixed(m.prefix, key), value, ttl)
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.c.Delete(prefixed(m.prefix, key))
	return nil
}

func (m *memoryStore) Ping(context.Context) error { return nil }

func (m *memoryStore) Close() error {
	m.c.Flush()
	return nil
}
