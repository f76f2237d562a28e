package domain

import "github.com/shopspring/decimal"

// ProductoInfo es la fila del listado de productos.
type ProductoInfo struct {
	ID                ProductoID      `json:"id"`
	NombreComercial   string          `json:"nombreComercial"`
	FormaFarmaceutica string          `json:"formaFarmaceutica"`
	Laboratorio       string          `json:"laboratorio"`
	PrecioCompra      decimal.Decimal `json:"precioCompra"`
	PrecioVenta       decimal.Decimal `json:"precioVenta"`
	StockMin          int             `json:"stockMin"`
	Stock             int             `json:"stock"`
	Estado            string          `json:"estado"`
	URLFoto           string          `json:"urlFoto"`
	DeletedAt         *Fecha          `json:"deletedAt"`
}

// ProductoDetail es la ficha completa de un producto.
type ProductoDetail struct {
	ID                ProductoID                `json:"id"`
	NombreComercial   string                    `json:"nombreComercial"`
	FormaFarmaceutica FormaFarmaceutica         `json:"formaFarmaceutica"`
	Laboratorio       LaboratorioSimple         `json:"laboratorio"`
	PrecioCompra      decimal.Decimal           `json:"precioCompra"`
	PrecioVenta       decimal.Decimal           `json:"precioVenta"`
	StockMin          int                       `json:"stockMin"`
	Stock             int                       `json:"stock"`
	URLFotos          []string                  `json:"urlFotos"`
	Estado            string                    `json:"estado"`
	Categorias        []CategoriaSimple         `json:"categorias"`
	CreatedAt         Fecha                     `json:"createdAt"`
	DeletedAt         *Fecha                    `json:"deletedAt"`
	PrincipiosActivos []ProductoPrincipioActivo `json:"principiosActivos"`
}

// ProductoSimple aparece dentro de los detalles de una venta.
type ProductoSimple struct {
	ID                ProductoID `json:"id"`
	NombreComercial   string     `json:"nombreComercial"`
	FormaFarmaceutica string     `json:"formaFarmaceutica,omitempty"`
	Laboratorio       string     `json:"laboratorio,omitempty"`
}

type FormaFarmaceutica struct {
	ID     FormaFarmaceuticaID `json:"id"`
	Nombre string              `json:"nombre"`
}

type UnidadMedida struct {
	ID          UnidadMedidaID `json:"id"`
	Nombre      string         `json:"nombre"`
	Abreviatura string         `json:"abreviatura,omitempty"`
}

type PrincipioActivo struct {
	ID     PrincipioActivoID `json:"id"`
	Nombre string            `json:"nombre"`
}

type ProductoPrincipioActivo struct {
	Concentracion   decimal.Decimal `json:"concentracion"`
	UnidadMedida    UnidadMedida    `json:"unidadMedida"`
	PrincipioActivo PrincipioActivo `json:"principioActivo"`
}
