// Package services expone una función por recurso del backend (/api/shared).
//
// Cada operación hace exactamente un request y, si falla, devuelve un
// *apierr.Error con el mensaje propio del recurso cuando el backend no manda uno.
package services

import (
	"context"
)

// Doer es la parte del cliente HTTP que usan los servicios (apiclient.Client la cumple).
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// Services agrupa los servicios de la tienda sobre un mismo cliente.
type Services struct {
	Productos    ProductoService
	Categorias   CategoriaService
	Laboratorios LaboratorioService
	Compras      CompraService
	Auth         AuthService
}

// New arma todos los servicios sobre c.
func New(c Doer) Services {
	return Services{
		Productos:    NewProductoService(c),
		Categorias:   NewCategoriaService(c),
		Laboratorios: NewLaboratorioService(c),
		Compras:      NewCompraService(c),
		Auth:         NewAuthService(c),
	}
}
