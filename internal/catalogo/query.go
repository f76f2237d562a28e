package catalogo

import (
	"strconv"
	"strings"

	"github.com/farmasanti/tienda/internal/domain"
)

// BuildQuery arma el query string que espera GET /productos. El orden de los
// componentes es fijo y solo se incluyen los no vacíos. Sin filtros devuelve "".
func BuildQuery(sel FilterSelection) string {
	var params []string
	if len(sel.Categorias) > 0 {
		params = append(params, "categorias="+joinIDs(sel.Categorias))
	}
	if len(sel.Laboratorios) > 0 {
		params = append(params, "laboratorios="+joinIDs(sel.Laboratorios))
	}
	if len(sel.Formas) > 0 {
		params = append(params, "formasFarmaceuticas="+joinIDs(sel.Formas))
	}
	if sel.Search != "" {
		params = append(params, "search="+EncodeURIComponent(sel.Search))
	}
	return strings.Join(params, "&")
}

// HomeQuery es la variante de la portada: una categoría opcional y la búsqueda recortada.
func HomeQuery(categoria *domain.CategoriaID, search string) string {
	var params []string
	if categoria != nil {
		params = append(params, "categoriaId="+categoria.String())
	}
	if s := strings.TrimSpace(search); s != "" {
		params = append(params, "search="+EncodeURIComponent(s))
	}
	return strings.Join(params, "&")
}

func joinIDs[T ~int64](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ",")
}

// EncodeURIComponent escapa todo menos A-Z a-z 0-9 - _ . ! ~ * ' ( ).
// url.QueryEscape no sirve: convierte el espacio en "+" y escapa ! ' ( ) *.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
