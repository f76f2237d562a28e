package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/farmasanti/tienda/internal/apierr"
	"github.com/farmasanti/tienda/internal/catalogo"
	"github.com/farmasanti/tienda/internal/domain"
	"github.com/farmasanti/tienda/internal/presenter"
	"github.com/spf13/cobra"
)

func newCatalogoCmd(a *app) *cobra.Command {
	var (
		categorias   []string
		laboratorios []string
		formas       []string
		buscar       string
		interactivo  bool
	)
	cmd := &cobra.Command{
		Use:   "catalogo",
		Short: "Lista productos con filtros por categoría, laboratorio y forma farmacéutica",
		Long: `Los filtros aceptan ids o nombres (sin importar tildes ni mayúsculas):

  tienda catalogo --categoria analgesicos --laboratorio 5 --buscar ibuprofeno`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openSession(ctx); err != nil {
				return err
			}
			if interactivo {
				return a.catalogoInteractivo(ctx)
			}

			ctl := catalogo.NewController(catalogo.SourcesFrom(a.svc), catalogo.Options{
				SearchDebounce: a.cfg.Catalog.SearchDebounce,
				Initial:        catalogo.FilterSelection{Search: strings.TrimSpace(buscar)},
			})
			defer ctl.Close()

			// Cada lista guarda su propio error; solo se corta si falla una que
			// hace falta para resolver los filtros pedidos.
			_ = ctl.Mount(ctx)
			if err := a.optionErrors(ctx, ctl.Snapshot(), len(categorias) > 0, len(laboratorios) > 0, len(formas) > 0); err != nil {
				return err
			}
			wait, err := applyFilters(ctl, categorias, laboratorios, formas)
			if err != nil {
				return err
			}
			if wait != nil {
				<-wait
			}

			v := ctl.Snapshot()
			if v.Productos.Err != nil {
				return a.apiErr(ctx, v.Productos.Err)
			}
			return a.printCatalogo(v)
		},
	}
	cmd.Flags().StringSliceVar(&categorias, "categoria", nil, "Categoría (id o nombre); se puede repetir")
	cmd.Flags().StringSliceVar(&laboratorios, "laboratorio", nil, "Laboratorio (id o nombre); se puede repetir")
	cmd.Flags().StringSliceVar(&formas, "forma", nil, "Forma farmacéutica (id o nombre); se puede repetir")
	cmd.Flags().StringVar(&buscar, "buscar", "", "Texto a buscar")
	cmd.Flags().BoolVarP(&interactivo, "interactivo", "i", false, "Modo interactivo")
	return cmd
}

// optionErrors revisa las listas de opciones después de Mount. Un error en una
// lista que se necesita (o un 401) corta el comando; el resto se avisa por
// stderr y el listado sigue.
func (a *app) optionErrors(ctx context.Context, v catalogo.View, needCat, needLab, needForma bool) error {
	lists := []struct {
		label string
		err   *apierr.Error
		need  bool
	}{
		{"categorías", v.Categorias.Err, needCat},
		{"laboratorios", v.Laboratorios.Err, needLab},
		{"formas farmacéuticas", v.Formas.Err, needForma},
	}
	for _, l := range lists {
		if l.err == nil {
			continue
		}
		if l.need || errors.Is(l.err, apierr.ErrAuthExpired) {
			return a.apiErr(ctx, l.err)
		}
		fmt.Fprintf(a.stderr, "aviso: %s: %s\n", l.label, l.err.Message)
	}
	return nil
}

func categoriaOptions(list []domain.Categoria) []presenter.Option {
	out := make([]presenter.Option, len(list))
	for i, c := range list {
		out[i] = presenter.Option{ID: int64(c.ID), Nombre: c.Nombre}
	}
	return out
}

func laboratorioOptions(list []domain.Laboratorio) []presenter.Option {
	out := make([]presenter.Option, len(list))
	for i, l := range list {
		out[i] = presenter.Option{ID: int64(l.ID), Nombre: l.Nombre}
	}
	return out
}

func formaOptions(list []domain.FormaFarmaceutica) []presenter.Option {
	out := make([]presenter.Option, len(list))
	for i, f := range list {
		out[i] = presenter.Option{ID: int64(f.ID), Nombre: f.Nombre}
	}
	return out
}

// applyFilters resuelve los términos contra las listas ya cargadas y marca los
// que falten. Devuelve el canal del último fetch disparado (nil si ninguno).
func applyFilters(ctl *catalogo.Controller, cats, labs, formas []string) (<-chan struct{}, error) {
	v := ctl.Snapshot()
	var wait <-chan struct{}

	for _, term := range cats {
		id, err := presenter.Resolve(term, categoriaOptions(v.Categorias.Data))
		if err != nil {
			return nil, fmt.Errorf("categoría: %w", err)
		}
		if !ctl.Selection().HasCategoria(domain.CategoriaID(id)) {
			wait = ctl.ToggleCategoria(domain.CategoriaID(id))
		}
	}
	for _, term := range labs {
		id, err := presenter.Resolve(term, laboratorioOptions(v.Laboratorios.Data))
		if err != nil {
			return nil, fmt.Errorf("laboratorio: %w", err)
		}
		if !ctl.Selection().HasLaboratorio(domain.LaboratorioID(id)) {
			wait = ctl.ToggleLaboratorio(domain.LaboratorioID(id))
		}
	}
	for _, term := range formas {
		id, err := presenter.Resolve(term, formaOptions(v.Formas.Data))
		if err != nil {
			return nil, fmt.Errorf("forma: %w", err)
		}
		if !ctl.Selection().HasForma(domain.FormaFarmaceuticaID(id)) {
			wait = ctl.ToggleForma(domain.FormaFarmaceuticaID(id))
		}
	}
	return wait, nil
}

func (a *app) printCatalogo(v catalogo.View) error {
	if a.out == "json" {
		return writeJSON(a.stdout, v.Productos.Data)
	}
	writeCatalogo(a.stdout, v)
	return nil
}

func writeCatalogo(w io.Writer, v catalogo.View) {
	if len(v.Chips) > 0 || v.Selection.Search != "" {
		var parts []string
		for _, c := range v.Chips {
			parts = append(parts, c.Label)
		}
		if v.Selection.Search != "" {
			parts = append(parts, fmt.Sprintf("%q", v.Selection.Search))
		}
		fmt.Fprintf(w, "Filtros (%d): %s\n\n", v.ActiveCount, strings.Join(parts, ", "))
	}
	if len(v.Productos.Data) == 0 {
		fmt.Fprintln(w, "No se encontraron productos.")
		return
	}
	t := newTable("ID", "PRODUCTO", "FORMA", "LABORATORIO", "PRECIO", "STOCK")
	for _, p := range v.Productos.Data {
		stock := fmt.Sprint(p.Stock)
		if b := presenter.CardStock(p); b.Label != "" {
			stock += " (" + b.Label + ")"
		}
		t.add(p.ID.String(), p.NombreComercial, p.FormaFarmaceutica, p.Laboratorio, presenter.Precio(p.PrecioVenta), stock)
	}
	t.render(w)
	fmt.Fprintf(w, "\n%d productos\n", len(v.Productos.Data))
}

const ayudaInteractivo = `Escribe para buscar. Comandos:
  /c <categoría>    marcar o desmarcar categoría
  /l <laboratorio>  marcar o desmarcar laboratorio
  /f <forma>        marcar o desmarcar forma farmacéutica
  /limpiar          quitar filtros (conserva la búsqueda)
  /todo             quitar filtros y búsqueda
  /salir`

// catalogoInteractivo lee órdenes de stdin. Las búsquedas pasan por el
// debounce del controller y la tabla se redibuja cuando llega cada resultado.
func (a *app) catalogoInteractivo(ctx context.Context) error {
	var (
		mu      sync.Mutex
		lastGen uint64
	)
	ctl := catalogo.NewController(catalogo.SourcesFrom(a.svc), catalogo.Options{
		SearchDebounce: a.cfg.Catalog.SearchDebounce,
		OnChange: func(v catalogo.View) {
			st := v.Productos
			if st.Loading || st.Generation == 0 {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if st.Generation <= lastGen {
				return
			}
			lastGen = st.Generation
			if st.Err != nil {
				if errors.Is(st.Err, apierr.ErrAuthExpired) {
					_ = a.sess.Clear(ctx)
					fmt.Fprintln(a.stderr, msgSesionExpirada)
					return
				}
				fmt.Fprintln(a.stderr, st.Err.Message)
				return
			}
			fmt.Fprintln(a.stdout)
			writeCatalogo(a.stdout, v)
		},
	})
	defer ctl.Close()

	fmt.Fprintln(a.stderr, ayudaInteractivo)
	_ = ctl.Mount(ctx)
	v := ctl.Snapshot()
	if err := a.optionErrors(ctx, v, false, false, false); err != nil {
		return err
	}
	if v.Productos.Err != nil {
		if errors.Is(v.Productos.Err, apierr.ErrAuthExpired) {
			return a.apiErr(ctx, v.Productos.Err)
		}
		fmt.Fprintln(a.stderr, v.Productos.Err.Message)
	}

	for {
		line, err := a.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			if quit := a.interactivoLinea(ctl, line); quit {
				return nil
			}
		}
		if err != nil {
			// EOF: aplicar la búsqueda pendiente y esperar el último resultado.
			ctl.FlushSearch()
			<-ctl.Refetch()
			return nil
		}
	}
}

func (a *app) interactivoLinea(ctl *catalogo.Controller, line string) (quit bool) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	v := ctl.Snapshot()

	switch cmd {
	case "/salir":
		return true
	case "/limpiar":
		ctl.ClearFilters()
	case "/todo":
		ctl.ClearAll()
	case "/c":
		if id, err := presenter.Resolve(arg, categoriaOptions(v.Categorias.Data)); err != nil {
			fmt.Fprintln(a.stderr, err)
		} else {
			ctl.ToggleCategoria(domain.CategoriaID(id))
		}
	case "/l":
		if id, err := presenter.Resolve(arg, laboratorioOptions(v.Laboratorios.Data)); err != nil {
			fmt.Fprintln(a.stderr, err)
		} else {
			ctl.ToggleLaboratorio(domain.LaboratorioID(id))
		}
	case "/f":
		if id, err := presenter.Resolve(arg, formaOptions(v.Formas.Data)); err != nil {
			fmt.Fprintln(a.stderr, err)
		} else {
			ctl.ToggleForma(domain.FormaFarmaceuticaID(id))
		}
	default:
		if strings.HasPrefix(line, "/") {
			fmt.Fprintln(a.stderr, ayudaInteractivo)
			return false
		}
		ctl.SetSearch(line)
	}
	return false
}
