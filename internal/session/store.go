// Package session guarda el token del backend de cada usuario.
//
// Session es el holder que lee el cliente HTTP en cada request; Store es
// donde se persiste entre requests (web) o entre ejecuciones (CLI).
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound: la key no existe o expiró.
var ErrNotFound = errors.New("session: key not found")

// Store persiste valores por key con TTL opcional (0 = no expira).
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Driver string // memory | redis | file
	Prefix string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	FilePath string
}

// NewStore crea el store según cfg.Driver. Un driver vacío es memory.
func NewStore(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "memory", "":
		return NewMemory(cfg.Prefix), nil
	case "redis":
		return NewRedis(cfg)
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("session: file driver requires a path")
		}
		return NewFile(cfg.FilePath), nil
	default:
		return nil, fmt.Errorf("session: unknown driver %q", cfg.Driver)
	}
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
