package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/farmasanti/tienda/internal/domain"
	"github.com/farmasanti/tienda/internal/presenter"
	"github.com/spf13/cobra"
)

func newProductoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "producto <id>",
		Short: "Muestra la ficha de un producto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openSession(ctx); err != nil {
				return err
			}
			p, err := a.svc.Productos.Obtener(ctx, domain.ProductoID(args[0]))
			if err != nil {
				return a.apiErr(ctx, err)
			}
			if a.out == "json" {
				return writeJSON(a.stdout, p)
			}
			writeProducto(a.stdout, p)
			return nil
		},
	}
}

func writeProducto(w io.Writer, p *domain.ProductoDetail) {
	fmt.Fprintln(w, p.NombreComercial)
	fmt.Fprintf(w, "  Forma:        %s\n", p.FormaFarmaceutica.Nombre)
	fmt.Fprintf(w, "  Laboratorio:  %s\n", p.Laboratorio.Nombre)
	fmt.Fprintf(w, "  Precio:       %s\n", presenter.Precio(p.PrecioVenta))
	fmt.Fprintf(w, "  Stock:        %s\n", presenter.DetailStock(p.Stock).Label)
	if len(p.Categorias) > 0 {
		names := make([]string, len(p.Categorias))
		for i, c := range p.Categorias {
			names[i] = c.Nombre
		}
		fmt.Fprintf(w, "  Categorías:   %s\n", strings.Join(names, ", "))
	}
	if len(p.PrincipiosActivos) > 0 {
		fmt.Fprintln(w)
		t := newTable("PRINCIPIO ACTIVO", "CONCENTRACIÓN")
		for _, pa := range p.PrincipiosActivos {
			t.add(pa.PrincipioActivo.Nombre, presenter.Concentracion(pa))
		}
		t.render(w)
	}
}

func newUnidadesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unidades",
		Short: "Lista las unidades de medida",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openSession(ctx); err != nil {
				return err
			}
			list, err := a.svc.Productos.UnidadesMedida(ctx)
			if err != nil {
				return a.apiErr(ctx, err)
			}
			if a.out == "json" {
				return writeJSON(a.stdout, list)
			}
			t := newTable("ID", "NOMBRE", "ABREVIATURA")
			for _, u := range list {
				t.add(fmt.Sprint(int64(u.ID)), u.Nombre, u.Abreviatura)
			}
			t.render(a.stdout)
			return nil
		},
	}
}
