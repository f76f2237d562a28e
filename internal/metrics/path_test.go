package metrics

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                  "/",
		"/":                 "/",
		"/productos":        "/productos",
		"/productos?categorias=1,2&search=x": "/productos",
		"/productos/70579eb2-acf0-4e6b-a7ba-17a367433bf8": "/productos/:id",
		"/productos/formas-farmaceuticas":                 "/productos/formas-farmaceuticas",
		"/mis-compras/12":                                 "/mis-compras/:id",
		"mis-compras":                                     "/mis-compras",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Fatalf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
