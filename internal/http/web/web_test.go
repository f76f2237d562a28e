package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/farmasanti/tienda/internal/apiclient"
	"github.com/farmasanti/tienda/internal/catalogo"
	"github.com/farmasanti/tienda/internal/domain"
	"github.com/farmasanti/tienda/internal/firebase"
	"github.com/farmasanti/tienda/internal/http/middlewares"
	"github.com/farmasanti/tienda/internal/query"
	"github.com/farmasanti/tienda/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "tienda_sid"

type stubIdentity struct{}

func (stubIdentity) SignInWithPassword(_ context.Context, email, _ string) (*firebase.Credential, error) {
	return &firebase.Credential{IDToken: "fb-" + email, Email: email}, nil
}
func (stubIdentity) SignUp(_ context.Context, email, _ string) (*firebase.Credential, error) {
	return &firebase.Credential{IDToken: "fb-" + email, Email: email}, nil
}
func (stubIdentity) SignInWithIdp(context.Context, string, string, string) (*firebase.Credential, error) {
	return &firebase.Credential{IDToken: "fb-google"}, nil
}
func (stubIdentity) SendEmailVerification(context.Context, string) error { return nil }
func (stubIdentity) SendPasswordReset(context.Context, string) error     { return nil }
func (stubIdentity) Lookup(context.Context, string) (*firebase.User, error) {
	return &firebase.User{EmailVerified: true}, nil
}

// backend simula la API de la farmacia: path -> (status, body).
type backend struct {
	mu      sync.Mutex
	routes  map[string]reply
	queries map[string]string
	auth    []string
}

type reply struct {
	status int
	body   string
}

func newBackend(t *testing.T, routes map[string]reply) (*backend, *apiclient.Client) {
	t.Helper()
	b := &backend{routes: routes, queries: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/shared")
		b.mu.Lock()
		b.queries[path] = r.URL.RawQuery
		b.auth = append(b.auth, r.Header.Get("Authorization"))
		rep, ok := b.routes[r.Method+" "+path]
		b.mu.Unlock()
		if !ok {
			rep = reply{http.StatusOK, `[]`}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rep.status)
		_, _ = w.Write([]byte(rep.body))
	}))
	t.Cleanup(srv.Close)
	return b, apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api/shared"}, nil)
}

func (b *backend) query(path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[path]
}

func newSite(t *testing.T, client *apiclient.Client, store session.Store) http.Handler {
	t.Helper()
	site, err := New(Deps{Client: client, Identity: stubIdentity{}, Store: store, SearchDebounce: time.Millisecond})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middlewares.WithSession(store, middlewares.CookieConfig{Name: cookieName, TTL: time.Hour}))
	site.Register(r)
	return r
}

// loggedIn deja un token guardado para el sid y devuelve la cookie.
func loggedIn(t *testing.T, store session.Store, tok string) *http.Cookie {
	t.Helper()
	sid := session.NewID()
	require.NoError(t, store.Set(context.Background(), sid, tok, time.Hour))
	return &http.Cookie{Name: cookieName, Value: sid}
}

// countingWriter cuenta cuántas veces se escribió el status.
type countingWriter struct {
	*httptest.ResponseRecorder
	headers atomic.Int32
}

func (c *countingWriter) WriteHeader(code int) {
	c.headers.Add(1)
	c.ResponseRecorder.WriteHeader(code)
}

func do(h http.Handler, req *http.Request) *countingWriter {
	w := &countingWriter{ResponseRecorder: httptest.NewRecorder()}
	h.ServeHTTP(w, req)
	return w
}

func TestHome_RendersProductsAndCategories(t *testing.T) {
	be, client := newBackend(t, map[string]reply{
		"GET /productos":  {200, `[{"id":"p1","nombreComercial":"ASPIRINA 500","precioVenta":3.5,"stock":4,"stockMin":5,"laboratorio":"Bayer"}]`},
		"GET /categorias": {200, `[{"id":3,"nombre":"Analgésicos"}]`},
	})
	h := newSite(t, client, session.NewMemory(""))

	w := do(h, httptest.NewRequest(http.MethodGet, "/?categoriaId=3&search=%20aspi%20", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "ASPIRINA 500")
	assert.Contains(t, body, "Bs 3.50")
	assert.Contains(t, body, "Stock bajo")
	assert.Contains(t, body, "Analgésicos")
	assert.Equal(t, "categoriaId=3&search=aspi", be.query("/productos"))
}

func TestSession_CookieIssuedAndGuestHasNoAuthHeader(t *testing.T) {
	be, client := newBackend(t, nil)
	h := newSite(t, client, session.NewMemory(""))

	w := do(h, httptest.NewRequest(http.MethodGet, "/catalogo", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var sid string
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			sid = c.Value
		}
	}
	assert.NotEmpty(t, sid)
	be.mu.Lock()
	defer be.mu.Unlock()
	require.NotEmpty(t, be.auth)
	for _, a := range be.auth {
		assert.Empty(t, a)
	}
}

func TestMisCompras_SendsBearerToken(t *testing.T) {
	be, client := newBackend(t, map[string]reply{
		"GET /mis-compras": {200, `[{"id":7,"codigo":"V-0007","fecha":"2025-03-05T10:00:00","estado":"PAGADO","total":"25.5"}]`},
	})
	store := session.NewMemory("")
	h := newSite(t, client, store)

	req := httptest.NewRequest(http.MethodGet, "/mis-compras", nil)
	req.AddCookie(loggedIn(t, store, "tok-1"))
	w := do(h, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "V-0007")
	assert.Contains(t, w.Body.String(), "05 mar 2025")
	assert.Contains(t, w.Body.String(), "Bs 25.50")
	be.mu.Lock()
	assert.Equal(t, []string{"Bearer tok-1"}, be.auth)
	be.mu.Unlock()
}

func TestAuthExpired_RedirectsToLoginOnceAndClearsToken(t *testing.T) {
	_, client := newBackend(t, map[string]reply{
		"GET /productos":  {401, `{"message":"Token expirado"}`},
		"GET /categorias": {401, `{"message":"Token expirado"}`},
	})
	store := session.NewMemory("")
	h := newSite(t, client, store)

	ck := loggedIn(t, store, "viejo")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	w := do(h, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, int32(1), w.headers.Load())

	_, err := store.Get(context.Background(), ck.Value)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestAuthExpired_OnLoginRendersInline(t *testing.T) {
	_, client := newBackend(t, map[string]reply{
		"POST /auth/email/login": {401, `{"message":"No autorizado"}`},
	})
	h := newSite(t, client, session.NewMemory(""))

	form := url.Values{"email": {"ana@farmasanti.bo"}, "password": {"secreta"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(h, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	assert.Contains(t, w.Body.String(), "Error en login del backend.")
}

func TestLogin_StoresTokenAndRedirectsHome(t *testing.T) {
	_, client := newBackend(t, map[string]reply{
		"POST /auth/email/login": {200, `{"token":"backend-tok"}`},
	})
	store := session.NewMemory("")
	h := newSite(t, client, store)

	ck := &http.Cookie{Name: cookieName, Value: session.NewID()}
	form := url.Values{"email": {"ana@farmasanti.bo"}, "password": {"secreta"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(ck)
	w := do(h, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	var sid string
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			sid = c.Value
		}
	}
	require.NotEmpty(t, sid, "login debe emitir una cookie nueva")
	assert.NotEqual(t, ck.Value, sid)

	tok, err := store.Get(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, "backend-tok", tok)
}

func TestLogin_PresetSessionIDIsNotAuthenticated(t *testing.T) {
	_, client := newBackend(t, map[string]reply{
		"POST /auth/email/login": {200, `{"token":"victim-tok"}`},
	})
	store := session.NewMemory("")
	h := newSite(t, client, store)

	preset := "11111111-2222-4333-8444-555555555555"
	form := url.Values{"email": {"ana@farmasanti.bo"}, "password": {"secreta"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: cookieName, Value: preset})
	w := do(h, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	_, err := store.Get(context.Background(), preset)
	assert.ErrorIs(t, err, session.ErrNotFound)

	// Con la cookie vieja se sigue siendo invitado.
	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: preset})
	w = do(h, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginForm_RedirectsWhenLoggedIn(t *testing.T) {
	_, client := newBackend(t, nil)
	store := session.NewMemory("")
	h := newSite(t, client, store)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(loggedIn(t, store, "tok"))
	w := do(h, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = do(h, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Iniciar sesión")
	assert.NotContains(t, w.Body.String(), "/auth/google")
}

func TestLogout_ClearsToken(t *testing.T) {
	_, client := newBackend(t, nil)
	store := session.NewMemory("")
	h := newSite(t, client, store)

	ck := loggedIn(t, store, "tok")
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(ck)
	w := do(h, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	_, err := store.Get(context.Background(), ck.Value)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRecuperar_AntiEnumerationMessage(t *testing.T) {
	_, client := newBackend(t, nil)
	h := newSite(t, client, session.NewMemory(""))

	form := url.Values{"email": {"quien@sea.bo"}}
	req := httptest.NewRequest(http.MethodPost, "/recuperar", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := do(h, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Si el correo está registrado, se ha enviado un enlace para restablecer tu contraseña.")
}

func TestProducto_BackendMessageAndStatus(t *testing.T) {
	_, client := newBackend(t, map[string]reply{
		"GET /productos/p9": {404, `{"message":"Producto no encontrado"}`},
		"GET /productos/p1": {200, `{"id":"p1","nombreComercial":"IBUPROFENO","precioVenta":"12.5","stock":3,
			"principiosActivos":[{"concentracion":400,"unidadMedida":{"nombre":"miligramo","abreviatura":"mg"},"principioActivo":{"nombre":"Ibuprofeno"}}]}`},
	})
	h := newSite(t, client, session.NewMemory(""))

	w := do(h, httptest.NewRequest(http.MethodGet, "/productos/p9", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Producto no encontrado")

	w = do(h, httptest.NewRequest(http.MethodGet, "/productos/p1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "IBUPROFENO")
	assert.Contains(t, body, "3 en stock")
	assert.Contains(t, body, "400 mg")
}

func TestCompra_InvalidID(t *testing.T) {
	_, client := newBackend(t, nil)
	h := newSite(t, client, session.NewMemory(""))

	w := do(h, httptest.NewRequest(http.MethodGet, "/mis-compras/abc", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogo_ForwardsSelection(t *testing.T) {
	be, client := newBackend(t, map[string]reply{
		"GET /categorias": {200, `[{"id":1,"nombre":"Analgésicos"},{"id":2,"nombre":"Antibióticos"}]`},
	})
	h := newSite(t, client, session.NewMemory(""))

	w := do(h, httptest.NewRequest(http.MethodGet, "/catalogo?categorias=1&laboratorios=x,5&search=ibu%20400", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "categorias=1&laboratorios=5&search=ibu%20400", be.query("/productos"))
	assert.Contains(t, w.Body.String(), "Analgésicos ✕")
}

func TestBuildCatalogoData_Links(t *testing.T) {
	v := catalogo.View{
		Selection: catalogo.FilterSelection{Categorias: []domain.CategoriaID{1}, Search: "ibu"},
		Categorias: query.State[[]domain.Categoria]{Data: []domain.Categoria{
			{ID: 1, Nombre: "Analgésicos"}, {ID: 2, Nombre: "Antibióticos"},
		}},
		Chips: []catalogo.Chip{{Kind: "categoria", ID: 1, Label: "Analgésicos"}},
	}

	d := buildCatalogoData(v)

	require.Len(t, d.Groups, 3)
	opts := d.Groups[0].Options
	require.Len(t, opts, 2)
	assert.True(t, opts[0].Checked)
	assert.Equal(t, "/catalogo?search=ibu", opts[0].Href)
	assert.False(t, opts[1].Checked)
	assert.Equal(t, "/catalogo?categorias=1,2&search=ibu", opts[1].Href)

	require.Len(t, d.Chips, 1)
	assert.Equal(t, "/catalogo?search=ibu", d.Chips[0].Href)
	assert.Equal(t, "/catalogo?search=ibu", d.ClearFiltersHref)
	assert.Equal(t, map[string]string{"categorias": "1"}, d.Hidden)
}
