package metrics

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	uuidSegmentRE = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	hexSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
)

// NormalizePath reduce un path a una etiqueta de baja cardinalidad:
// sin query string y con ids reemplazados por ":id".
//
//	/productos/70579eb2-acf0-4e6b-a7ba-17a367433bf8 -> /productos/:id
//	/mis-compras/12?x=1                              -> /mis-compras/:id
func NormalizePath(p string) string {
	clean, _, _ := strings.Cut(p, "?")
	var out []string
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":id")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 || uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) {
		return true
	}
	_, err := strconv.ParseInt(seg, 10, 64)
	return err == nil
}
