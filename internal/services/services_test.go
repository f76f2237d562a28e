package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farmasanti/tienda/internal/apiclient"
	"github.com/farmasanti/tienda/internal/apierr"
	"github.com/farmasanti/tienda/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServices(t *testing.T, h http.HandlerFunc) Services {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api/shared"}, nil))
}

func TestProductos_ListarAppendsFilterVerbatim(t *testing.T) {
	var gotURI string
	svc := newServices(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		_, _ = w.Write([]byte(`[{"id":"p1","nombreComercial":"ASPIRINA","precioVenta":"3.5","stock":4,"stockMin":5}]`))
	})

	out, err := svc.Productos.Listar(context.Background(), "categorias=10&laboratorios=5&search=aspirin")
	require.NoError(t, err)
	assert.Equal(t, "/api/shared/productos?categorias=10&laboratorios=5&search=aspirin", gotURI)
	require.Len(t, out, 1)
	assert.Equal(t, domain.ProductoID("p1"), out[0].ID)

	_, err = svc.Productos.Listar(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "/api/shared/productos", gotURI)
}

func TestServices_Paths(t *testing.T) {
	var seen []string
	svc := newServices(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/api/shared/productos/p/1", "/api/shared/mis-compras/7":
			_, _ = w.Write([]byte(`{}`))
		case "/api/shared/auth/google/login", "/api/shared/auth/email/login", "/api/shared/auth/email/register":
			var req domain.LoginRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(domain.TokenResponse{Token: "b-" + req.Token})
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})
	ctx := context.Background()

	_, err := svc.Productos.Obtener(ctx, "p/1")
	require.NoError(t, err)
	_, err = svc.Productos.FormasFarmaceuticas(ctx)
	require.NoError(t, err)
	_, err = svc.Productos.UnidadesMedida(ctx)
	require.NoError(t, err)
	_, err = svc.Categorias.Listar(ctx)
	require.NoError(t, err)
	_, err = svc.Laboratorios.Listar(ctx)
	require.NoError(t, err)
	_, err = svc.Compras.Listar(ctx)
	require.NoError(t, err)
	_, err = svc.Compras.Obtener(ctx, 7)
	require.NoError(t, err)

	tok, err := svc.Auth.LoginGoogle(ctx, domain.LoginRequest{Token: "g"})
	require.NoError(t, err)
	assert.Equal(t, "b-g", tok.Token)
	tok, err = svc.Auth.LoginEmail(ctx, domain.LoginRequest{Token: "e"})
	require.NoError(t, err)
	assert.Equal(t, "b-e", tok.Token)
	tok, err = svc.Auth.RegistrarEmail(ctx, domain.LoginRequest{Token: "r"})
	require.NoError(t, err)
	assert.Equal(t, "b-r", tok.Token)

	assert.Equal(t, []string{
		"GET /api/shared/productos/p/1",
		"GET /api/shared/productos/formas-farmaceuticas",
		"GET /api/shared/productos/unidades-medida",
		"GET /api/shared/categorias",
		"GET /api/shared/laboratorios",
		"GET /api/shared/mis-compras",
		"GET /api/shared/mis-compras/7",
		"POST /api/shared/auth/google/login",
		"POST /api/shared/auth/email/login",
		"POST /api/shared/auth/email/register",
	}, seen)
}

// failingDoer simula un backend caído.
type failingDoer struct{ err error }

func (f failingDoer) Do(context.Context, string, string, any, any) error { return f.err }

func TestServices_FallbackMessages(t *testing.T) {
	svc := New(failingDoer{err: errors.New("dial tcp: connection refused")})
	ctx := context.Background()
	req := domain.LoginRequest{Token: "x"}

	cases := []struct {
		name string
		call func() error
		want string
	}{
		{"productos", func() error { _, err := svc.Productos.Listar(ctx, ""); return err }, "Error al obtener lista de productos"},
		{"producto", func() error { _, err := svc.Productos.Obtener(ctx, "1"); return err }, "Error al obtener producto"},
		{"formas", func() error { _, err := svc.Productos.FormasFarmaceuticas(ctx); return err }, "Error al obtener lista de formas farmaceuticas"},
		{"unidades", func() error { _, err := svc.Productos.UnidadesMedida(ctx); return err }, "Error al obtener lista de unidades de medida"},
		{"categorias", func() error { _, err := svc.Categorias.Listar(ctx); return err }, "Error al listar categorías"},
		{"laboratorios", func() error { _, err := svc.Laboratorios.Listar(ctx); return err }, "Error al obtener lista de laboratorios"},
		{"compras", func() error { _, err := svc.Compras.Listar(ctx); return err }, "Error al listar compras realizadas"},
		{"compra", func() error { _, err := svc.Compras.Obtener(ctx, 1); return err }, "Error al obtener compra"},
		{"google", func() error { _, err := svc.Auth.LoginGoogle(ctx, req); return err }, "Error al loguear con Google"},
		{"email", func() error { _, err := svc.Auth.LoginEmail(ctx, req); return err }, "Error al loguear con correo"},
		{"registro", func() error { _, err := svc.Auth.RegistrarEmail(ctx, req); return err }, "Error al registrar con correo"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			var ne *apierr.Error
			require.ErrorAs(t, err, &ne)
			assert.Equal(t, 500, ne.Status)
			assert.Equal(t, tc.want, ne.Message)
		})
	}
}

func TestServices_BackendMessageWins(t *testing.T) {
	svc := newServices(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"El filtro de categorías es inválido"}`))
	})

	_, err := svc.Productos.Listar(context.Background(), "categorias=abc")
	var ne *apierr.Error
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, 400, ne.Status)
	assert.Equal(t, "El filtro de categorías es inválido", ne.Message)
}

func TestCompras_401KeepsAuthExpired(t *testing.T) {
	svc := newServices(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token expirado"}`))
	})

	_, err := svc.Compras.Listar(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrAuthExpired)
	assert.Equal(t, 401, apierr.StatusOf(err))
}
