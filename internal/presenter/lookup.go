package presenter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Option es una entrada de una lista de opciones (categoría, laboratorio, forma).
type Option struct {
	ID     int64
	Nombre string
}

// ErrAmbiguous se devuelve cuando el término coincide igual de bien con varias opciones.
type ErrAmbiguous struct {
	Term       string
	Candidates []string
}

func (e *ErrAmbiguous) Error() string {
	return fmt.Sprintf("%q es ambiguo: %s", e.Term, strings.Join(e.Candidates, ", "))
}

// Fold pasa a minúsculas y quita tildes: "Analgésicos" → "analgesicos".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Resolve convierte lo que escribió el usuario en un id: un número se toma
// tal cual; si no, se busca por nombre (exacto sin tildes y después difuso).
func Resolve(term string, opts []Option) (int64, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return 0, fmt.Errorf("término vacío")
	}
	if id, err := strconv.ParseInt(term, 10, 64); err == nil {
		return id, nil
	}

	folded := Fold(term)
	names := make([]string, len(opts))
	for i, o := range opts {
		names[i] = o.Nombre
		if Fold(o.Nombre) == folded {
			return o.ID, nil
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(term, names)
	if len(ranks) == 0 {
		return 0, fmt.Errorf("no se encontró %q", term)
	}
	sort.Sort(ranks)
	best := ranks[0]
	var tied []string
	for _, r := range ranks {
		if r.Distance == best.Distance {
			tied = append(tied, r.Target)
		}
	}
	if len(tied) > 1 {
		return 0, &ErrAmbiguous{Term: term, Candidates: tied}
	}
	return opts[best.OriginalIndex].ID, nil
}
