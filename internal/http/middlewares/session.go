package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/farmasanti/tienda/internal/http/helpers"
	"github.com/farmasanti/tienda/internal/observability/logger"
	"github.com/farmasanti/tienda/internal/session"
)

// CookieConfig describe la cookie que lleva el id de sesión.
type CookieConfig = helpers.CookieOpts

// WithSession carga la sesión del visitante desde el store usando el id de la
// cookie. Si no hay cookie (o el id no es válido) se genera uno nuevo y se
// emite la cookie; el visitante queda como invitado hasta que inicie sesión.
func WithSession(store session.Store, ck CookieConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(ck.Name); err == nil {
				sid = c.Value
			}
			if !session.ValidID(sid) {
				sid = session.NewID()
				http.SetCookie(w, helpers.SessionCookie(ck, sid))
			}

			sess, err := session.Open(r.Context(), store, sid, ck.TTL)
			if err != nil {
				// Store caído: seguimos como invitado.
				logger.From(r.Context()).Warn("session load failed",
					logger.SessionID(sid), logger.Err(err))
			}
			ctx := WithSessionContext(r.Context(), sess)
			ctx = context.WithValue(ctx, ctxCookieKey, ck)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RotateSession cambia el id de la sesión del request y emite la cookie nueva.
// Se usa después de un login exitoso, antes de escribir la respuesta.
func RotateSession(w http.ResponseWriter, r *http.Request) error {
	sess := GetSession(r.Context())
	ck, ok := r.Context().Value(ctxCookieKey).(CookieConfig)
	if sess == nil || !ok {
		return errors.New("session middleware not installed")
	}
	sid, err := sess.Rotate(r.Context())
	if err != nil {
		return err
	}
	http.SetCookie(w, helpers.SessionCookie(ck, sid))
	return nil
}
