package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/farmasanti/tienda/internal/observability/logger"
	"github.com/farmasanti/tienda/internal/presenter"
)

//go:embed templates
var templateFS embed.FS

var funcs = template.FuncMap{
	"precio":        presenter.Precio,
	"cardStock":     presenter.CardStock,
	"detailStock":   presenter.DetailStock,
	"fecha":         presenter.Fecha,
	"concentracion": presenter.Concentracion,
	"estadoPagado":  presenter.EstadoPagado,
}

// parseTemplates arma un set por página: layout + la página, para que cada
// una pueda definir su propio "content".
func parseTemplates() (map[string]*template.Template, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse layout: %w", err)
	}
	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, p); err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", p, err)
		}
		out[strings.TrimSuffix(path.Base(p), ".html")] = t
	}
	return out, nil
}

// page es lo que recibe el layout.
type page struct {
	Title    string
	LoggedIn bool
	Error    string
	Flash    string
	Data     any
}

// render ejecuta en un buffer y recién después escribe, así un error de
// template no deja una respuesta a medias.
func (h *Handler) render(rq *request, status int, name string, p page) {
	if rq.done() {
		return
	}
	t, ok := h.tmpl[name]
	if !ok {
		http.Error(rq.w, "Error interno", http.StatusInternalServerError)
		return
	}
	p.LoggedIn = rq.sess.LoggedIn()

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		logger.From(rq.r.Context()).Error("template render failed",
			logger.Layer("web"), logger.Component(name), logger.Err(err))
		http.Error(rq.w, "Error interno", http.StatusInternalServerError)
		return
	}
	rq.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	rq.w.Header().Set("Cache-Control", "no-store")
	rq.w.WriteHeader(status)
	_, _ = buf.WriteTo(rq.w)
}

// renderError muestra un error normalizado como página completa.
func (h *Handler) renderError(rq *request, status int, msg string) {
	h.render(rq, status, "error", page{Title: msg})
}
