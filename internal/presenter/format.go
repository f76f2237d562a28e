// Package presenter tiene los valores derivados que se muestran y no se
// guardan: precios, badges de stock, fechas, nombres resueltos.
package presenter

import (
	"fmt"
	"time"

	"github.com/farmasanti/tienda/internal/domain"
	"github.com/shopspring/decimal"
)

// Precio formatea un monto en bolivianos con dos decimales: "Bs 12.50".
func Precio(d decimal.Decimal) string {
	return "Bs " + d.StringFixed(2)
}

// StockLevel de la tarjeta del catálogo.
type StockLevel string

const (
	StockBajo       StockLevel = "bajo"
	StockMedio      StockLevel = "medio"
	StockDisponible StockLevel = "disponible"
)

// Badge es una etiqueta con su variante de color.
type Badge struct {
	Level StockLevel
	Color string // rojo, amarillo, verde
	Label string // "" = no se muestra
}

// CardStock: stock <= stockMin es bajo, menos de 20 es medio.
func CardStock(p domain.ProductoInfo) Badge {
	switch {
	case p.Stock <= p.StockMin:
		return Badge{Level: StockBajo, Color: "rojo", Label: "Stock bajo"}
	case p.Stock < 20:
		return Badge{Level: StockMedio, Color: "amarillo", Label: "Pocas unidades"}
	default:
		return Badge{Level: StockDisponible, Color: "verde"}
	}
}

// DetailStock es el badge de la ficha del producto.
func DetailStock(stock int) Badge {
	switch {
	case stock > 10:
		return Badge{Level: StockDisponible, Color: "verde", Label: fmt.Sprintf("%d en stock", stock)}
	case stock > 0:
		return Badge{Level: StockMedio, Color: "amarillo", Label: fmt.Sprintf("%d en stock", stock)}
	default:
		return Badge{Level: StockBajo, Color: "rojo", Label: "Sin stock"}
	}
}

var mesesCortos = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}

// Fecha: "05 mar 2025". Fecha cero se muestra como "-".
func Fecha(f domain.Fecha) string {
	if f.IsZero() {
		return "-"
	}
	t := f.In(time.Local)
	return fmt.Sprintf("%02d %s %d", t.Day(), mesesCortos[t.Month()-1], t.Year())
}

// Concentracion: "500 mg".
func Concentracion(p domain.ProductoPrincipioActivo) string {
	unidad := p.UnidadMedida.Abreviatura
	if unidad == "" {
		unidad = p.UnidadMedida.Nombre
	}
	if unidad == "" {
		return p.Concentracion.String()
	}
	return p.Concentracion.String() + " " + unidad
}

// EstadoPagado indica si la venta se muestra con el badge verde.
func EstadoPagado(estado string) bool {
	return estado == "PAGADO"
}
