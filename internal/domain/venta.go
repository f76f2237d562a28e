package domain

import "github.com/shopspring/decimal"

// VentaInfo es una compra del usuario en el listado de "Mis compras".
type VentaInfo struct {
	ID        VentaID         `json:"id"`
	Codigo    string          `json:"codigo"`
	Usuario   UsuarioSimple   `json:"usuario"`
	Cliente   ClienteSimple   `json:"cliente"`
	Fecha     Fecha           `json:"fecha"`
	Estado    string          `json:"estado"`
	DeletedAt *Fecha          `json:"deletedAt"`
	Total     decimal.Decimal `json:"total"`
	URL       string          `json:"url"`
}

// VentaDetail agrega las líneas de la venta.
type VentaDetail struct {
	VentaInfo
	Detalles []DetalleVenta `json:"detalles"`
}

type DetalleVenta struct {
	ID       int64           `json:"id"`
	Producto ProductoSimple  `json:"producto"`
	Lotes    []VentaLote     `json:"lotes"`
	Cantidad int             `json:"cantidad"`
	Precio   decimal.Decimal `json:"precio"`
	Total    decimal.Decimal `json:"total"`
	URL      string          `json:"url"`
}

type VentaLote struct {
	ID               int64  `json:"id"`
	Lote             string `json:"lote"`
	Cantidad         int    `json:"cantidad"`
	FechaVencimiento Fecha  `json:"fechaVencimiento"`
}

type UsuarioSimple struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Estado   string `json:"estado"`
}

type ClienteSimple struct {
	ID          int64   `json:"id"`
	NitCi       *int64  `json:"nitCi"`
	Complemento *string `json:"complemento"`
	RazonSocial string  `json:"razonSocial"`
	Email       string  `json:"email"`
}
