package services

import (
	"context"
	"net/http"
	"net/url"

	"github.com/farmasanti/tienda/internal/apierr"
	"github.com/farmasanti/tienda/internal/domain"
	"github.com/farmasanti/tienda/internal/observability/logger"
)

const (
	msgListarProductos = "Error al obtener lista de productos"
	msgObtenerProducto = "Error al obtener producto"
	msgListarFormas    = "Error al obtener lista de formas farmaceuticas"
	msgListarUnidades  = "Error al obtener lista de unidades de medida"
)

// ProductoService lista y obtiene productos del catálogo.
type ProductoService interface {
	// Listar acepta el query string de filtros ya armado (sin "?"); "" lista todo.
	Listar(ctx context.Context, filtro string) ([]domain.ProductoInfo, error)
	Obtener(ctx context.Context, id domain.ProductoID) (*domain.ProductoDetail, error)
	FormasFarmaceuticas(ctx context.Context) ([]domain.FormaFarmaceutica, error)
	UnidadesMedida(ctx context.Context) ([]domain.UnidadMedida, error)
}

type productoService struct {
	c Doer
}

func NewProductoService(c Doer) ProductoService {
	return &productoService{c: c}
}

func (s *productoService) Listar(ctx context.Context, filtro string) ([]domain.ProductoInfo, error) {
	path := "/productos"
	if filtro != "" {
		path += "?" + filtro
	}

	var out []domain.ProductoInfo
	if err := s.c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		logger.From(ctx).Debug("listar productos", logger.Layer("service"), logger.Query(filtro), logger.Err(err))
		return nil, apierr.Normalize(err, msgListarProductos)
	}
	return out, nil
}

func (s *productoService) Obtener(ctx context.Context, id domain.ProductoID) (*domain.ProductoDetail, error) {
	var out domain.ProductoDetail
	if err := s.c.Do(ctx, http.MethodGet, "/productos/"+url.PathEscape(id.String()), nil, &out); err != nil {
		logger.From(ctx).Debug("obtener producto", logger.Layer("service"), logger.ProductoID(id.String()), logger.Err(err))
		return nil, apierr.Normalize(err, msgObtenerProducto)
	}
	return &out, nil
}

func (s *productoService) FormasFarmaceuticas(ctx context.Context) ([]domain.FormaFarmaceutica, error) {
	var out []domain.FormaFarmaceutica
	if err := s.c.Do(ctx, http.MethodGet, "/productos/formas-farmaceuticas", nil, &out); err != nil {
		return nil, apierr.Normalize(err, msgListarFormas)
	}
	return out, nil
}

func (s *productoService) UnidadesMedida(ctx context.Context) ([]domain.UnidadMedida, error) {
	var out []domain.UnidadMedida
	if err := s.c.Do(ctx, http.MethodGet, "/productos/unidades-medida", nil, &out); err != nil {
		return nil, apierr.Normalize(err, msgListarUnidades)
	}
	return out, nil
}
