package main

import (
	"fmt"
	"io"

	"github.com/farmasanti/tienda/internal/domain"
	"github.com/farmasanti/tienda/internal/presenter"
	"github.com/spf13/cobra"
)

func newComprasCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compras [id]",
		Short: "Lista tus compras o muestra el detalle de una",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openSession(ctx); err != nil {
				return err
			}
			if len(args) == 1 {
				id, err := domain.ParseID[domain.VentaID](args[0])
				if err != nil {
					return err
				}
				v, err := a.svc.Compras.Obtener(ctx, id)
				if err != nil {
					return a.apiErr(ctx, err)
				}
				if a.out == "json" {
					return writeJSON(a.stdout, v)
				}
				writeCompra(a.stdout, v)
				return nil
			}

			list, err := a.svc.Compras.Listar(ctx)
			if err != nil {
				return a.apiErr(ctx, err)
			}
			if a.out == "json" {
				return writeJSON(a.stdout, list)
			}
			if len(list) == 0 {
				fmt.Fprintln(a.stdout, "Todavía no tienes compras.")
				return nil
			}
			t := newTable("ID", "CÓDIGO", "FECHA", "ESTADO", "TOTAL")
			for _, v := range list {
				t.add(v.ID.String(), v.Codigo, presenter.Fecha(v.Fecha), v.Estado, presenter.Precio(v.Total))
			}
			t.render(a.stdout)
			return nil
		},
	}
}

func writeCompra(w io.Writer, v *domain.VentaDetail) {
	fmt.Fprintf(w, "Compra %s  %s  %s\n", v.Codigo, presenter.Fecha(v.Fecha), v.Estado)
	if v.Cliente.RazonSocial != "" {
		fmt.Fprintf(w, "Cliente: %s\n", v.Cliente.RazonSocial)
	}
	fmt.Fprintln(w)
	t := newTable("PRODUCTO", "CANT.", "PRECIO", "TOTAL", "LOTE", "VENCE")
	for _, d := range v.Detalles {
		if len(d.Lotes) == 0 {
			t.add(d.Producto.NombreComercial, fmt.Sprint(d.Cantidad), presenter.Precio(d.Precio), presenter.Precio(d.Total), "", "")
			continue
		}
		for i, l := range d.Lotes {
			if i == 0 {
				t.add(d.Producto.NombreComercial, fmt.Sprint(d.Cantidad), presenter.Precio(d.Precio), presenter.Precio(d.Total), l.Lote, presenter.Fecha(l.FechaVencimiento))
			} else {
				t.add("", "", "", "", l.Lote, presenter.Fecha(l.FechaVencimiento))
			}
		}
	}
	t.render(w)
	fmt.Fprintf(w, "\nTotal: %s\n", presenter.Precio(v.Total))
}
