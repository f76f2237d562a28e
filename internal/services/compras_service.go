package services

import (
	"context"
	"net/http"

	"github.com/farmasanti/tienda/internal/apierr"
	"github.com/farmasanti/tienda/internal/domain"
	"github.com/farmasanti/tienda/internal/observability/logger"
)

const (
	msgListarCompras = "Error al listar compras realizadas"
	msgObtenerCompra = "Error al obtener compra"
)

// CompraService lee el historial de compras del usuario autenticado.
// Sin sesión el backend responde 401 (apierr.ErrAuthExpired).
type CompraService interface {
	Listar(ctx context.Context) ([]domain.VentaInfo, error)
	Obtener(ctx context.Context, id domain.VentaID) (*domain.VentaDetail, error)
}

type compraService struct{ c Doer }

func NewCompraService(c Doer) CompraService { return &compraService{c: c} }

func (s *compraService) Listar(ctx context.Context) ([]domain.VentaInfo, error) {
	var out []domain.VentaInfo
	if err := s.c.Do(ctx, http.MethodGet, "/mis-compras", nil, &out); err != nil {
		return nil, apierr.Normalize(err, msgListarCompras)
	}
	return out, nil
}

func (s *compraService) Obtener(ctx context.Context, id domain.VentaID) (*domain.VentaDetail, error) {
	var out domain.VentaDetail
	if err := s.c.Do(ctx, http.MethodGet, "/mis-compras/"+id.String(), nil, &out); err != nil {
		logger.From(ctx).Debug("obtener compra", logger.Layer("service"), logger.VentaID(int64(id)), logger.Err(err))
		return nil, apierr.Normalize(err, msgObtenerCompra)
	}
	return &out, nil
}
