package catalogo

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/farmasanti/tienda/internal/debounce"
	"github.com/farmasanti/tienda/internal/domain"
	"github.com/farmasanti/tienda/internal/observability/logger"
	"github.com/farmasanti/tienda/internal/query"
	"github.com/farmasanti/tienda/internal/services"
	"golang.org/x/sync/errgroup"
)

const DefaultSearchDebounce = 500 * time.Millisecond

// Sources son los servicios que lee el catálogo.
type Sources struct {
	Productos    services.ProductoService
	Categorias   services.CategoriaService
	Laboratorios services.LaboratorioService
}

// SourcesFrom toma los servicios del catálogo de un services.Services.
func SourcesFrom(s services.Services) Sources {
	return Sources{Productos: s.Productos, Categorias: s.Categorias, Laboratorios: s.Laboratorios}
}

type Options struct {
	// SearchDebounce es la espera del buscador; 0 usa DefaultSearchDebounce.
	SearchDebounce time.Duration
	// Initial precarga la selección (por ejemplo, la que viene en la URL).
	Initial FilterSelection
	// OnChange se llama después de cada cambio de selección o de estado.
	OnChange func(View)
}

type none = struct{}

// Controller es dueño de la selección y de los cuatro queries del catálogo.
type Controller struct {
	src      Sources
	onChange func(View)

	mu          sync.Mutex
	ctx         context.Context
	sel         FilterSelection
	searchInput string

	search *debounce.Debouncer[string]

	productos    *query.Query[string, []domain.ProductoInfo]
	categorias   *query.Query[none, []domain.Categoria]
	laboratorios *query.Query[none, []domain.Laboratorio]
	formas       *query.Query[none, []domain.FormaFarmaceutica]
}

func NewController(src Sources, opts Options) *Controller {
	delay := opts.SearchDebounce
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}

	c := &Controller{
		src:         src,
		onChange:    opts.OnChange,
		ctx:         context.Background(),
		sel:         opts.Initial.Clone(),
		searchInput: opts.Initial.Search,
	}
	c.search = debounce.New(delay, c.applySearch)

	c.productos = query.New(src.Productos.Listar).Named("productos").
		WithOnChange(func(query.State[[]domain.ProductoInfo]) { c.notify() })
	c.categorias = query.New(func(ctx context.Context, _ none) ([]domain.Categoria, error) {
		return src.Categorias.Listar(ctx)
	}).Named("categorias").WithOnChange(func(query.State[[]domain.Categoria]) { c.notify() })
	c.laboratorios = query.New(func(ctx context.Context, _ none) ([]domain.Laboratorio, error) {
		return src.Laboratorios.Listar(ctx)
	}).Named("laboratorios").WithOnChange(func(query.State[[]domain.Laboratorio]) { c.notify() })
	c.formas = query.New(func(ctx context.Context, _ none) ([]domain.FormaFarmaceutica, error) {
		return src.Productos.FormasFarmaceuticas(ctx)
	}).Named("formas").WithOnChange(func(query.State[[]domain.FormaFarmaceutica]) { c.notify() })
	return c
}

// Mount carga en paralelo las tres listas de opciones y los productos con la
// selección inicial, y espera a que terminen. Devuelve el primer error; cada
// query igual guarda el suyo en su estado.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	q := BuildQuery(c.sel)
	c.mu.Unlock()

	logger.From(ctx).Debug("catalogo mount", logger.Component("catalogo"), logger.Query(q))

	var g errgroup.Group
	g.Go(func() error { _, err := c.categorias.Fetch(ctx, none{}); return err })
	g.Go(func() error { _, err := c.laboratorios.Fetch(ctx, none{}); return err })
	g.Go(func() error { _, err := c.formas.Fetch(ctx, none{}); return err })
	g.Go(func() error { _, err := c.productos.Fetch(ctx, q); return err })
	return g.Wait()
}

// Close descarta la búsqueda pendiente.
func (c *Controller) Close() {
	c.search.Stop()
}

func (c *Controller) ToggleCategoria(id domain.CategoriaID) <-chan struct{} {
	return c.update(func(s *FilterSelection) { s.ToggleCategoria(id) })
}

func (c *Controller) ToggleLaboratorio(id domain.LaboratorioID) <-chan struct{} {
	return c.update(func(s *FilterSelection) { s.ToggleLaboratorio(id) })
}

func (c *Controller) ToggleForma(id domain.FormaFarmaceuticaID) <-chan struct{} {
	return c.update(func(s *FilterSelection) { s.ToggleForma(id) })
}

// ClearFilters limpia los conjuntos y mantiene la búsqueda.
func (c *Controller) ClearFilters() <-chan struct{} {
	return c.update(func(s *FilterSelection) { s.ClearFilters() })
}

// ClearAll limpia conjuntos y búsqueda. La búsqueda pendiente se descarta y el
// fetch sale de inmediato, sin esperar el debounce.
func (c *Controller) ClearAll() <-chan struct{} {
	c.search.Stop()
	c.mu.Lock()
	c.searchInput = ""
	c.mu.Unlock()
	return c.update(func(s *FilterSelection) { s.ClearAll() })
}

// SetSearch registra lo que se escribe en el buscador. El fetch sale recién
// cuando pasa el debounce sin cambios.
func (c *Controller) SetSearch(text string) {
	c.mu.Lock()
	c.searchInput = text
	c.mu.Unlock()
	c.notify()
	c.search.Set(text)
}

// FlushSearch aplica ya la búsqueda pendiente (Enter en la CLI).
func (c *Controller) FlushSearch() {
	c.search.Flush()
}

// Refetch vuelve a pedir productos con la selección actual.
func (c *Controller) Refetch() <-chan struct{} {
	return c.update(func(*FilterSelection) {})
}

func (c *Controller) applySearch(text string) {
	c.mu.Lock()
	changed := c.sel.Search != text
	c.mu.Unlock()
	if !changed {
		return
	}
	c.update(func(s *FilterSelection) { s.Search = text })
}

// update aplica fn a la selección y dispara el fetch de productos. Cada cambio
// refetchea aunque el query resultante sea igual al anterior.
func (c *Controller) update(fn func(*FilterSelection)) <-chan struct{} {
	c.mu.Lock()
	fn(&c.sel)
	q := BuildQuery(c.sel)
	ctx := c.ctx
	c.mu.Unlock()

	logger.From(ctx).Debug("catalogo refetch", logger.Component("catalogo"), logger.Query(q))
	return c.productos.Go(ctx, q)
}

func (c *Controller) Selection() FilterSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Clone()
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.Snapshot())
}

// View es lo que necesita la presentación para dibujar el catálogo.
type View struct {
	Selection    FilterSelection
	SearchInput  string
	Query        string
	ActiveCount  int
	Chips        []Chip
	Productos    query.State[[]domain.ProductoInfo]
	Categorias   query.State[[]domain.Categoria]
	Laboratorios query.State[[]domain.Laboratorio]
	Formas       query.State[[]domain.FormaFarmaceutica]
}

// Chip es un filtro activo con su nombre; si la lista de opciones todavía no
// llegó (o no lo contiene) se muestra el id.
type Chip struct {
	Kind  string // categoria, laboratorio, forma
	ID    int64
	Label string
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	sel := c.sel.Clone()
	input := c.searchInput
	c.mu.Unlock()

	v := View{
		Selection:    sel,
		SearchInput:  input,
		Query:        BuildQuery(sel),
		ActiveCount:  sel.ActiveCount(),
		Productos:    c.productos.State(),
		Categorias:   c.categorias.State(),
		Laboratorios: c.laboratorios.State(),
		Formas:       c.formas.State(),
	}
	v.Chips = Chips(sel, v.Categorias.Data, v.Laboratorios.Data, v.Formas.Data)
	return v
}

// Chips resuelve los nombres de los filtros activos, en el orden en que se marcaron.
func Chips(sel FilterSelection, cats []domain.Categoria, labs []domain.Laboratorio, formas []domain.FormaFarmaceutica) []Chip {
	var out []Chip
	for _, id := range sel.Categorias {
		label := strconv.FormatInt(int64(id), 10)
		for _, c := range cats {
			if c.ID == id && c.Nombre != "" {
				label = c.Nombre
				break
			}
		}
		out = append(out, Chip{Kind: "categoria", ID: int64(id), Label: label})
	}
	for _, id := range sel.Laboratorios {
		label := strconv.FormatInt(int64(id), 10)
		for _, l := range labs {
			if l.ID == id && l.Nombre != "" {
				label = l.Nombre
				break
			}
		}
		out = append(out, Chip{Kind: "laboratorio", ID: int64(id), Label: label})
	}
	for _, id := range sel.Formas {
		label := strconv.FormatInt(int64(id), 10)
		for _, f := range formas {
			if f.ID == id && f.Nombre != "" {
				label = f.Nombre
				break
			}
		}
		out = append(out, Chip{Kind: "forma", ID: int64(id), Label: label})
	}
	return out
}
