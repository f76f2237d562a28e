package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TokenKey es la key fija con la que la CLI guarda su único token.
const TokenKey = "token"

// Session es el token de un usuario. Hay a lo sumo un token por sesión; es
// opaco (no se valida firma ni expiración) y se descarta cuando el backend
// responde 401.
type Session struct {
	id    string
	store Store
	ttl   time.Duration

	mu    sync.RWMutex
	token string
}

// New crea una sesión vacía persistida en store bajo id.
func New(store Store, id string, ttl time.Duration) *Session {
	return &Session{id: id, store: store, ttl: ttl}
}

// Open carga la sesión id desde el store. Si no existe queda vacía (invitado).
func Open(ctx context.Context, store Store, id string, ttl time.Duration) (*Session, error) {
	s := New(store, id, ttl)
	tok, err := store.Get(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return s, fmt.Errorf("session: load: %w", err)
	default:
		s.token = tok
	}
	return s, nil
}

// NewID genera un id de sesión para la cookie del storefront.
func NewID() string { return uuid.NewString() }

// ValidID descarta cookies manipuladas antes de usarlas como clave del store.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Rotate pasa el token a un id nuevo y borra la key anterior. Se llama al
// iniciar sesión: un id conocido antes del login no queda autenticado.
// Devuelve el id nuevo.
func (s *Session) Rotate(ctx context.Context) (string, error) {
	s.mu.RLock()
	old, tok := s.id, s.token
	s.mu.RUnlock()

	id := NewID()
	if s.store != nil {
		if tok != "" {
			if err := s.store.Set(ctx, id, tok, s.ttl); err != nil {
				return "", fmt.Errorf("session: rotate: %w", err)
			}
		}
		if err := s.store.Delete(ctx, old); err != nil {
			return "", fmt.Errorf("session: rotate: %w", err)
		}
	}

	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
	return id, nil
}

// Token devuelve el token vigente o "" si no hay sesión.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) LoggedIn() bool { return s.Token() != "" }

// SetToken reemplaza el token y lo persiste.
func (s *Session) SetToken(ctx context.Context, tok string) error {
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.Set(ctx, s.ID(), tok, s.ttl); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// Clear borra el token en memoria y en el store.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(ctx, s.ID()); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}
