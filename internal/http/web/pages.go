package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/farmasanti/tienda/internal/apierr"
	"github.com/farmasanti/tienda/internal/catalogo"
	"github.com/farmasanti/tienda/internal/domain"
	"github.com/farmasanti/tienda/internal/query"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

type homeData struct {
	Search      string
	CategoriaID string
	Productos   query.State[[]domain.ProductoInfo]
	Categorias  query.State[[]domain.Categoria]
}

// GET /?categoriaId=&search=
func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	ctx := r.Context()

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	var categoria *domain.CategoriaID
	if id, err := domain.ParseID[domain.CategoriaID](r.URL.Query().Get("categoriaId")); err == nil {
		categoria = &id
	}

	productos := query.New(rq.svc.Productos.Listar).Named("home_productos")
	categorias := query.New(func(ctx context.Context, _ struct{}) ([]domain.Categoria, error) {
		return rq.svc.Categorias.Listar(ctx)
	}).Named("home_categorias")

	var prodErr, catErr error
	var g errgroup.Group
	g.Go(func() error { _, prodErr = productos.Fetch(ctx, catalogo.HomeQuery(categoria, search)); return nil })
	g.Go(func() error { _, catErr = categorias.Fetch(ctx, struct{}{}); return nil })
	_ = g.Wait()

	if rq.authExpired(prodErr, catErr) {
		return
	}

	data := homeData{Search: search, Productos: productos.State(), Categorias: categorias.State()}
	if categoria != nil {
		data.CategoriaID = categoria.String()
	}
	h.render(rq, http.StatusOK, "home", page{Title: "Inicio", Data: data})
}

type filterOption struct {
	ID      int64
	Nombre  string
	Checked bool
	Href    string
}

type filterGroup struct {
	Title   string
	Err     string
	Options []filterOption
}

type chipLink struct {
	catalogo.Chip
	Href string
}

type catalogoData struct {
	View             catalogo.View
	Groups           []filterGroup
	Chips            []chipLink
	Hidden           map[string]string
	ClearFiltersHref string
}

func catalogoHref(sel catalogo.FilterSelection) string {
	if q := catalogo.BuildQuery(sel); q != "" {
		return "/catalogo?" + q
	}
	return "/catalogo"
}

// fail muestra el error normalizado con su status.
func (h *Handler) fail(rq *request, err error) {
	ne := apierr.Normalize(err, query.DefaultFallback)
	h.renderError(rq, ne.Status, ne.Message)
}

func errMessage(e *apierr.Error) string {
	if e == nil {
		return ""
	}
	return e.Message
}

// GET /catalogo?categorias=&laboratorios=&formasFarmaceuticas=&search=
//
// Cada request monta un controller con la selección de la URL; los toggles son
// links a la URL con la selección resultante.
func (h *Handler) catalogo(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)

	ctl := catalogo.NewController(catalogo.SourcesFrom(rq.svc), catalogo.Options{
		SearchDebounce: h.debounce,
		Initial:        catalogo.FromValues(r.URL.Query()),
	})
	defer ctl.Close()
	_ = ctl.Mount(r.Context())

	v := ctl.Snapshot()
	if rq.authExpired(stateErrs(v.Productos.Err, v.Categorias.Err, v.Laboratorios.Err, v.Formas.Err)...) {
		return
	}
	h.render(rq, http.StatusOK, "catalogo", page{Title: "Catálogo", Data: buildCatalogoData(v)})
}

func buildCatalogoData(v catalogo.View) catalogoData {
	sel := v.Selection
	data := catalogoData{View: v, Hidden: map[string]string{}}

	cats := filterGroup{Title: "Categorías", Err: errMessage(v.Categorias.Err)}
	for _, c := range v.Categorias.Data {
		next := sel.Clone()
		next.ToggleCategoria(c.ID)
		cats.Options = append(cats.Options, filterOption{
			ID: int64(c.ID), Nombre: c.Nombre, Checked: sel.HasCategoria(c.ID), Href: catalogoHref(next),
		})
	}
	labs := filterGroup{Title: "Laboratorios", Err: errMessage(v.Laboratorios.Err)}
	for _, l := range v.Laboratorios.Data {
		next := sel.Clone()
		next.ToggleLaboratorio(l.ID)
		labs.Options = append(labs.Options, filterOption{
			ID: int64(l.ID), Nombre: l.Nombre, Checked: sel.HasLaboratorio(l.ID), Href: catalogoHref(next),
		})
	}
	formas := filterGroup{Title: "Formas farmacéuticas", Err: errMessage(v.Formas.Err)}
	for _, f := range v.Formas.Data {
		next := sel.Clone()
		next.ToggleForma(f.ID)
		formas.Options = append(formas.Options, filterOption{
			ID: int64(f.ID), Nombre: f.Nombre, Checked: sel.HasForma(f.ID), Href: catalogoHref(next),
		})
	}
	data.Groups = []filterGroup{cats, labs, formas}

	for _, c := range v.Chips {
		next := sel.Clone()
		switch c.Kind {
		case "categoria":
			next.ToggleCategoria(domain.CategoriaID(c.ID))
		case "laboratorio":
			next.ToggleLaboratorio(domain.LaboratorioID(c.ID))
		case "forma":
			next.ToggleForma(domain.FormaFarmaceuticaID(c.ID))
		}
		data.Chips = append(data.Chips, chipLink{Chip: c, Href: catalogoHref(next)})
	}

	cleared := sel.Clone()
	cleared.ClearFilters()
	data.ClearFiltersHref = catalogoHref(cleared)

	// El form de búsqueda conserva los filtros marcados.
	if len(sel.Categorias) > 0 {
		data.Hidden["categorias"] = joinInts(sel.Categorias)
	}
	if len(sel.Laboratorios) > 0 {
		data.Hidden["laboratorios"] = joinInts(sel.Laboratorios)
	}
	if len(sel.Formas) > 0 {
		data.Hidden["formasFarmaceuticas"] = joinInts(sel.Formas)
	}
	return data
}

func joinInts[T ~int64](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ",")
}

// GET /productos/{id}
func (h *Handler) producto(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	id := domain.ProductoID(chi.URLParam(r, "id"))

	p, err := query.New(rq.svc.Productos.Obtener).Named("producto").Fetch(r.Context(), id)
	if rq.authExpired(err) {
		return
	}
	if err != nil {
		h.fail(rq, err)
		return
	}
	h.render(rq, http.StatusOK, "producto", page{Title: p.NombreComercial, Data: p})
}

// GET /mis-compras
func (h *Handler) compras(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)

	list, err := query.New(func(ctx context.Context, _ struct{}) ([]domain.VentaInfo, error) {
		return rq.svc.Compras.Listar(ctx)
	}).Named("compras").Fetch(r.Context(), struct{}{})
	if rq.authExpired(err) {
		return
	}
	if err != nil {
		h.fail(rq, err)
		return
	}
	h.render(rq, http.StatusOK, "compras", page{Title: "Mis compras", Data: list})
}

// GET /mis-compras/{id}
func (h *Handler) compra(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(w, r)
	id, err := domain.ParseID[domain.VentaID](chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(rq, http.StatusNotFound, "Compra no encontrada")
		return
	}

	v, err := query.New(rq.svc.Compras.Obtener).Named("compra").Fetch(r.Context(), id)
	if rq.authExpired(err) {
		return
	}
	if err != nil {
		h.fail(rq, err)
		return
	}
	h.render(rq, http.StatusOK, "compra", page{Title: "Compra " + v.Codigo, Data: v})
}
