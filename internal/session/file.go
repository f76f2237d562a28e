package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/farmasanti/tienda/internal/util/atomicwrite"
)

// fileStore persiste en un JSON local (la CLI guarda ahí el token entre ejecuciones).
type fileStore struct {
	path string
	mu   sync.Mutex
}

type fileEntry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func NewFile(path string) Store {
	return &fileStore{path: path}
}

func (f *fileStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return "", err
	}
	e, ok := data[key]
	if !ok || (!e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)) {
		return "", ErrNotFound
	}
	return e.Value, nil
}

func (f *fileStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return err
	}
	e := fileEntry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl).UTC()
	}
	data[key] = e
	return f.write(data)
}

func (f *fileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.write(data)
}

func (f *fileStore) Ping(context.Context) error { return nil }
func (f *fileStore) Close() error { return nil }

func (f *fileStore) read() (map[string]fileEntry, error) {
	data := map[string]fileEntry{}
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", f.path, err)
	}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("session: parse %s: %w", f.path, err)
	}
	return data, nil
}

func (f *fileStore) write(data map[string]fileEntry) error {
	if err := atomicwrite.WriteJSON(f.path, data, 0o600); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}
