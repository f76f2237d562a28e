package services

import (
	"context"
	"net/http"

	"github.com/farmasanti/tienda/internal/apierr"
	"github.com/farmasanti/tienda/internal/domain"
)

const (
	msgListarCategorias   = "Error al listar categorías"
	msgListarLaboratorios = "Error al obtener lista de laboratorios"
)

type CategoriaService interface {
	Listar(ctx context.Context) ([]domain.Categoria, error)
}

type LaboratorioService interface {
	Listar(ctx context.Context) ([]domain.Laboratorio, error)
}

type categoriaService struct{ c Doer }

func NewCategoriaService(c Doer) CategoriaService { return &categoriaService{c: c} }

func (s *categoriaService) Listar(ctx context.Context) ([]domain.Categoria, error) {
	var out []domain.Categoria
	if err := s.c.Do(ctx, http.MethodGet, "/categorias", nil, &out); err != nil {
		return nil, apierr.Normalize(err, msgListarCategorias)
	}
	return out, nil
}

type laboratorioService struct{ c Doer }

func NewLaboratorioService(c Doer) LaboratorioService { return &laboratorioService{c: c} }

func (s *laboratorioService) Listar(ctx context.Context) ([]domain.Laboratorio, error) {
	var out []domain.Laboratorio
	if err := s.c.Do(ctx, http.MethodGet, "/laboratorios", nil, &out); err != nil {
		return nil, apierr.Normalize(err, msgListarLaboratorios)
	}
	return out, nil
}
