package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/farmasanti/tienda/internal/auth"
	"github.com/farmasanti/tienda/internal/http/middlewares"
	"github.com/farmasanti/tienda/internal/observability/logger"
	"github.com/google/uuid"
)

const (
	oidcStatePrefix = "oidc:"
	oidcStateTTL    = 10 * time.Minute
)

type loginData struct {
	Email         string
	GoogleEnabled bool
}

func (h *Handler) renderLogin(rq *request, status int, email, errMsg, flash string) {
	h.render(rq, status, "login", page{
		Title: "Iniciar sesión",
		Error: errMsg,
		Flash: flash,
		Data:  loginData{Email: email, GoogleEnabled: h.google != nil},
	})
}

// GET /login. Con sesión iniciada no tiene sentido: vuelve a la portada.
func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if rq.sess.LoggedIn() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(rq, http.StatusOK, "", "", "")
}

// Los formularios de acceso se muestran en la vista de login, así que sus
// errores (incluido un 401 del backend) van inline y nunca redirigen.

// POST /login
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	email := strings.TrimSpace(r.PostFormValue("email"))

	if err := h.flows(rq).LoginEmail(r.Context(), rq.sess, email, r.PostFormValue("password")); err != nil {
		h.renderLogin(rq, http.StatusUnprocessableEntity, email, auth.MessageOf(err), "")
		return
	}
	h.loggedIn(rq)
}

// POST /registro
func (h *Handler) registro(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	email := strings.TrimSpace(r.PostFormValue("email"))

	msg, err := h.flows(rq).Register(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		h.renderLogin(rq, http.StatusUnprocessableEntity, email, auth.MessageOf(err), "")
		return
	}
	h.renderLogin(rq, http.StatusOK, email, "", msg)
}

// POST /recuperar
func (h *Handler) recuperar(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	email := strings.TrimSpace(r.PostFormValue("email"))

	msg, err := h.flows(rq).ForgotPassword(r.Context(), email)
	if err != nil {
		h.renderLogin(rq, http.StatusUnprocessableEntity, email, auth.MessageOf(err), "")
		return
	}
	h.renderLogin(rq, http.StatusOK, email, "", msg)
}

// POST /logout
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if err := h.flows(rq).Logout(r.Context(), rq.sess); err != nil {
		logger.From(r.Context()).Warn("logout failed", logger.Layer("web"), logger.Err(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GET /auth/google: guarda state→(sesión, nonce) y redirige a Google.
func (h *Handler) googleStart(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if h.google == nil {
		h.renderError(rq, http.StatusNotFound, "Página no encontrada")
		return
	}
	ctx := r.Context()
	state, nonce := uuid.NewString(), uuid.NewString()

	if err := h.store.Set(ctx, oidcStatePrefix+state, rq.sess.ID()+"|"+nonce, oidcStateTTL); err != nil {
		logger.From(ctx).Error("oidc state save failed", logger.Layer("web"), logger.Err(err))
		h.renderLogin(rq, http.StatusInternalServerError, "", auth.MsgErrorGoogle, "")
		return
	}
	u, err := h.google.AuthURL(ctx, state, nonce)
	if err != nil {
		logger.From(ctx).Warn("google discovery failed", logger.Layer("web"), logger.Err(err))
		h.renderLogin(rq, http.StatusBadGateway, "", auth.MsgErrorGoogle, "")
		return
	}
	http.Redirect(w, r, u, http.StatusFound)
}

// GET /auth/google/callback?state=&code=
func (h *Handler) googleCallback(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	if h.google == nil {
		h.renderError(rq, http.StatusNotFound, "Página no encontrada")
		return
	}
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("web"), logger.Provider("google"))
	q := r.URL.Query()

	fail := func(msg string, err error) {
		log.Info(msg, logger.Err(err))
		h.renderLogin(rq, http.StatusUnauthorized, "", auth.MsgErrorGoogle, "")
	}

	if e := q.Get("error"); e != "" {
		fail("google returned error", nil)
		return
	}
	state := q.Get("state")
	if state == "" {
		fail("missing state", nil)
		return
	}
	key := oidcStatePrefix + state
	saved, err := h.store.Get(ctx, key)
	if err != nil {
		fail("unknown or expired state", err)
		return
	}
	_ = h.store.Delete(ctx, key)

	sid, nonce, ok := strings.Cut(saved, "|")
	if !ok || sid != rq.sess.ID() {
		fail("state bound to another session", nil)
		return
	}

	tok, err := h.google.ExchangeCode(ctx, q.Get("code"))
	if err != nil {
		fail("code exchange failed", err)
		return
	}
	if _, err := h.google.VerifyIDToken(ctx, tok.IDToken, nonce); err != nil {
		fail("id_token verification failed", err)
		return
	}
	if err := h.flows(rq).LoginGoogle(ctx, rq.sess, tok.IDToken); err != nil {
		h.renderLogin(rq, http.StatusUnauthorized, "", auth.MessageOf(err), "")
		return
	}
	h.loggedIn(rq)
}

// loggedIn rota el id de sesión y vuelve a la portada. Si la rotación falla
// se cierra la sesión: no queda un token bajo un id previo al login.
func (h *Handler) loggedIn(rq *request) {
	if err := middlewares.RotateSession(rq.w, rq.r); err != nil {
		logger.From(rq.r.Context()).Error("session rotate failed", logger.Layer("web"), logger.Err(err))
		_ = rq.sess.Clear(rq.r.Context())
		h.renderError(rq, http.StatusInternalServerError, "No se pudo iniciar sesión. Intenta de nuevo.")
		return
	}
	http.Redirect(rq.w, rq.r, "/", http.StatusSeeOther)
}
