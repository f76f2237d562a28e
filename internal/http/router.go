// Package http arma el servidor del storefront: middlewares, métricas y rutas.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/farmasanti/tienda/internal/apiclient"
	"github.com/farmasanti/tienda/internal/auth"
	"github.com/farmasanti/tienda/internal/config"
	"github.com/farmasanti/tienda/internal/http/helpers"
	"github.com/farmasanti/tienda/internal/http/middlewares"
	"github.com/farmasanti/tienda/internal/http/web"
	"github.com/farmasanti/tienda/internal/oauth/google"
	"github.com/farmasanti/tienda/internal/rate"
	"github.com/farmasanti/tienda/internal/session"
	"github.com/go-chi/chi/v5"
)

// Deps contiene lo que el router necesita. Google, Limiter y Metrics son opcionales.
type Deps struct {
	Config   *config.Config
	Client   *apiclient.Client
	Store    session.Store
	Identity auth.Identity
	Google   *google.Provider
	Limiter  rate.Limiter
	Metrics  http.Handler
}

// NewRouter construye el handler raíz del storefront.
func NewRouter(d Deps) (http.Handler, error) {
	cfg := d.Config

	requestURI := cfg.Server.PublicURL
	if requestURI == "" {
		requestURI = "http://localhost" + cfg.Server.Addr
	}
	site, err := web.New(web.Deps{
		Client:         d.Client,
		Identity:       d.Identity,
		Google:         d.Google,
		Store:          d.Store,
		Limiter:        d.Limiter,
		RequestURI:     requestURI,
		SearchDebounce: cfg.Catalog.SearchDebounce,
	})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middlewares.Std(
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
		middlewares.WithRecover(),
	)...)

	r.Get("/healthz", healthz(d.Store))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middlewares.Std(
			middlewares.WithSecurityHeaders(),
			middlewares.WithSession(d.Store, middlewares.CookieConfig{
				Name:     cfg.Session.CookieName,
				Domain:   cfg.Session.Domain,
				SameSite: cfg.Session.SameSite,
				Secure:   cfg.Session.Secure,
				TTL:      cfg.Session.TTL,
			}),
		)...)
		site.Register(r)
	})

	return WithMetrics(r), nil
}

// healthz responde 200 si el store de sesiones contesta.
func healthz(store session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			helpers.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "unavailable",
				"session": err.Error(),
			})
			return
		}
		helpers.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": config.Version,
		})
	}
}
