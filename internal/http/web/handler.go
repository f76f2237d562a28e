// Package web es el storefront HTML: páginas del catálogo, ficha de producto,
// compras del usuario y formularios de acceso.
package web

import (
	"html/template"
	"net/http"
	"time"

	"github.com/farmasanti/tienda/internal/apiclient"
	"github.com/farmasanti/tienda/internal/auth"
	"github.com/farmasanti/tienda/internal/http/middlewares"
	"github.com/farmasanti/tienda/internal/oauth/google"
	"github.com/farmasanti/tienda/internal/rate"
	"github.com/farmasanti/tienda/internal/session"
	"github.com/go-chi/chi/v5"
)

// Deps del storefront. Google puede ser nil (login con Google deshabilitado).
type Deps struct {
	Client   *apiclient.Client
	Identity auth.Identity
	Google   *google.Provider
	Store    session.Store

	// Limiter frena intentos en los formularios de acceso (nil = sin límite).
	Limiter rate.Limiter

	// RequestURI es la URL pública informada a Firebase en signInWithIdp.
	RequestURI     string
	SearchDebounce time.Duration
}

type Handler struct {
	client     *apiclient.Client
	idp        auth.Identity
	google     *google.Provider
	store      session.Store
	limiter    rate.Limiter
	requestURI string
	debounce   time.Duration

	tmpl map[string]*template.Template
}

func New(d Deps) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Handler{
		client:     d.Client,
		idp:        d.Identity,
		google:     d.Google,
		store:      d.Store,
		limiter:    d.Limiter,
		requestURI: d.RequestURI,
		debounce:   d.SearchDebounce,
		tmpl:       tmpl,
	}, nil
}

// Register monta las rutas del storefront. El router debe haber instalado
// antes el middleware de sesión.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.home)
	r.Get("/catalogo", h.catalogo)
	r.Get("/productos/{id}", h.producto)
	r.Get("/mis-compras", h.compras)
	r.Get("/mis-compras/{id}", h.compra)

	r.Get("/login", h.loginForm)
	r.Group(func(r chi.Router) {
		r.Use(middlewares.WithRateLimit(h.limiter))
		r.Post("/login", h.login)
		r.Post("/registro", h.registro)
		r.Post("/recuperar", h.recuperar)
	})
	r.Post("/logout", h.logout)

	r.Get("/auth/google", h.googleStart)
	r.Get("/auth/google/callback", h.googleCallback)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.renderError(h.begin(w, r), http.StatusNotFound, "Página no encontrada")
	})
}

func (h *Handler) flows(rq *request) *auth.Flows {
	return auth.NewFlows(h.idp, rq.svc.Auth, h.requestURI)
}
