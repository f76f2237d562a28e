package services

import (
	"context"
	"net/http"

	"github.com/farmasanti/tienda/internal/apierr"
	"github.com/farmasanti/tienda/internal/domain"
)

const (
	msgLoginGoogle    = "Error al loguear con Google"
	msgLoginEmail     = "Error al loguear con correo"
	msgRegistrarEmail = "Error al registrar con correo"
)

// AuthService canjea un ID token del proveedor de identidad por el token del backend.
type AuthService interface {
	LoginGoogle(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error)
	LoginEmail(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error)
	RegistrarEmail(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error)
}

type authService struct{ c Doer }

func NewAuthService(c Doer) AuthService { return &authService{c: c} }

func (s *authService) LoginGoogle(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	return s.post(ctx, "/auth/google/login", req, msgLoginGoogle)
}

func (s *authService) LoginEmail(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	return s.post(ctx, "/auth/email/login", req, msgLoginEmail)
}

func (s *authService) RegistrarEmail(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	return s.post(ctx, "/auth/email/register", req, msgRegistrarEmail)
}

func (s *authService) post(ctx context.Context, path string, req domain.LoginRequest, fallback string) (*domain.TokenResponse, error) {
	var out domain.TokenResponse
	if err := s.c.Do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, apierr.Normalize(err, fallback)
	}
	return &out, nil
}
