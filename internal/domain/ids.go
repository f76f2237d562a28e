// Package domain contiene los registros que devuelve el backend de la farmacia.
// Son valores de solo lectura: la tienda los muestra tal cual.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Identificadores tipados por entidad para no mezclar, por ejemplo, un id de
// categoría con uno de laboratorio al armar los filtros del catálogo.
type (
	ProductoID          string
	CategoriaID         int64
	LaboratorioID       int64
	FormaFarmaceuticaID int64
	UnidadMedidaID      int64
	PrincipioActivoID   int64
	VentaID             int64
)

func (id ProductoID) String() string          { return string(id) }
func (id CategoriaID) String() string         { return strconv.FormatInt(int64(id), 10) }
func (id LaboratorioID) String() string       { return strconv.FormatInt(int64(id), 10) }
func (id FormaFarmaceuticaID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id VentaID) String() string             { return strconv.FormatInt(int64(id), 10) }

// ParseID convierte el texto de un id numérico (URL, flag de la CLI) al tipo pedido.
func ParseID[T ~int64](s string) (T, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id inválido %q", s)
	}
	return T(n), nil
}
