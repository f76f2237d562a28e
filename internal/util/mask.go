// Package util junta helpers chicos que usan los logs y la CLI.
package util

import "strings"

// MaskEmail deja visible la inicial del usuario y del dominio: "j…@g….com".
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	user, dom, ok := strings.Cut(s, "@")
	if !ok || user == "" {
		return maskMiddle(s)
	}
	labels := strings.Split(dom, ".")
	labels[0] = maskMiddle(labels[0])
	return maskMiddle(user) + "@" + strings.Join(labels, ".")
}

// MaskToken recorta un token de sesión para poder loguearlo sin exponerlo.
func MaskToken(tok string) string {
	tok = strings.TrimSpace(tok)
	switch {
	case tok == "":
		return ""
	case len(tok) <= 12:
		return "***"
	default:
		return tok[:6] + "…" + tok[len(tok)-4:]
	}
}

func maskMiddle(s string) string {
	r := []rune(s)
	switch {
	case len(r) <= 1:
		return s
	case len(r) <= 3:
		return string(r[:1]) + "…"
	default:
		return string(r[:1]) + "…" + string(r[len(r)-1:])
	}
}
