// Package catalogo arma los filtros del catálogo y coordina los fetches de
// productos y de las listas de opciones (categorías, laboratorios, formas).
package catalogo

import (
	"net/url"
	"slices"
	"strings"

	"github.com/farmasanti/tienda/internal/domain"
)

// FilterSelection es lo que el usuario eligió. Los tres conjuntos conservan el
// orden en que se fueron marcando.
type FilterSelection struct {
	Categorias   []domain.CategoriaID
	Laboratorios []domain.LaboratorioID
	Formas       []domain.FormaFarmaceuticaID
	Search       string
}

func (f *FilterSelection) ToggleCategoria(id domain.CategoriaID) {
	f.Categorias = toggle(f.Categorias, id)
}

func (f *FilterSelection) ToggleLaboratorio(id domain.LaboratorioID) {
	f.Laboratorios = toggle(f.Laboratorios, id)
}

func (f *FilterSelection) ToggleForma(id domain.FormaFarmaceuticaID) {
	f.Formas = toggle(f.Formas, id)
}

// ClearFilters vacía los tres conjuntos y deja la búsqueda ("Limpiar todo").
func (f *FilterSelection) ClearFilters() {
	f.Categorias = nil
	f.Laboratorios = nil
	f.Formas = nil
}

// ClearAll vacía conjuntos y búsqueda ("Limpiar filtros").
func (f *FilterSelection) ClearAll() {
	f.ClearFilters()
	f.Search = ""
}

// ActiveCount cuenta los filtros marcados; la búsqueda no suma.
func (f FilterSelection) ActiveCount() int {
	return len(f.Categorias) + len(f.Laboratorios) + len(f.Formas)
}

func (f FilterSelection) HasCategoria(id domain.CategoriaID) bool { return slices.Contains(f.Categorias, id) }

func (f FilterSelection) HasLaboratorio(id domain.LaboratorioID) bool {
	return slices.Contains(f.Laboratorios, id)
}

func (f FilterSelection) HasForma(id domain.FormaFarmaceuticaID) bool { return slices.Contains(f.Formas, id) }

// Clone copia los slices para que el toggle de la copia no toque el original.
func (f FilterSelection) Clone() FilterSelection {
	return FilterSelection{
		Categorias:   slices.Clone(f.Categorias),
		Laboratorios: slices.Clone(f.Laboratorios),
		Formas:       slices.Clone(f.Formas),
		Search:       f.Search,
	}
}

func toggle[T comparable](set []T, id T) []T {
	if i := slices.Index(set, id); i >= 0 {
		out := make([]T, 0, len(set)-1)
		out = append(out, set[:i]...)
		return append(out, set[i+1:]...)
	}
	out := make([]T, 0, len(set)+1)
	out = append(out, set...)
	return append(out, id)
}

// FromValues reconstruye la selección desde la URL del storefront
// (?categorias=1,2&laboratorios=5&search=...). Ids no numéricos se ignoran.
func FromValues(v url.Values) FilterSelection {
	return FilterSelection{
		Categorias:   parseIDs[domain.CategoriaID](v["categorias"]),
		Laboratorios: parseIDs[domain.LaboratorioID](v["laboratorios"]),
		Formas:       parseIDs[domain.FormaFarmaceuticaID](v["formasFarmaceuticas"]),
		Search:       v.Get("search"),
	}
}

func parseIDs[T ~int64](raw []string) []T {
	var out []T
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			id, err := domain.ParseID[T](part)
			if err != nil || slices.Contains(out, id) {
				continue
			}
			out = append(out, id)
		}
	}
	return out
}
