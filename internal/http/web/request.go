package web

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/farmasanti/tienda/internal/apierr"
	"github.com/farmasanti/tienda/internal/http/middlewares"
	"github.com/farmasanti/tienda/internal/observability/logger"
	"github.com/farmasanti/tienda/internal/services"
	"github.com/farmasanti/tienda/internal/session"
)

const loginPath = "/login"

// request agrupa lo que un handler necesita durante un request: la sesión del
// visitante, los servicios ligados a su token y el coordinador de navegación.
type request struct {
	w    http.ResponseWriter
	r    *http.Request
	sess *session.Session
	svc  services.Services

	once       sync.Once
	redirected atomic.Bool
}

func (h *Handler) begin(w http.ResponseWriter, r *http.Request) *request {
	sess := middlewares.GetSession(r.Context())
	if sess == nil {
		sess = session.New(nil, "", 0)
	}
	return &request{
		w:    w,
		r:    r,
		sess: sess,
		svc:  services.New(h.client.WithSession(sess)),
	}
}

// authExpired es el único lugar que reacciona a un 401 del backend. Si alguno
// de errs es ErrAuthExpired y no estamos en /login, borra el token y redirige a
// /login una sola vez por request. Devuelve true si el request ya se respondió.
// En /login devuelve false y el handler muestra el error en el formulario.
func (rq *request) authExpired(errs ...error) bool {
	for _, err := range errs {
		if err == nil || !errors.Is(err, apierr.ErrAuthExpired) {
			continue
		}
		if rq.r.URL.Path == loginPath {
			return false
		}
		rq.once.Do(func() {
			ctx := rq.r.Context()
			if cerr := rq.sess.Clear(ctx); cerr != nil {
				logger.From(ctx).Warn("session clear failed", logger.Layer("web"), logger.Err(cerr))
			}
			logger.From(ctx).Info("backend session expired, redirecting to login",
				logger.Layer("web"), logger.SessionID(rq.sess.ID()))
			http.Redirect(rq.w, rq.r, loginPath, http.StatusSeeOther)
			rq.redirected.Store(true)
		})
		return true
	}
	return false
}

func (rq *request) done() bool { return rq.redirected.Load() }

// stateErrs pasa los errores de estados de query a []error sin nils tipados.
func stateErrs(list ...*apierr.Error) []error {
	out := make([]error, 0, len(list))
	for _, e := range list {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}
