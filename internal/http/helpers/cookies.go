package helpers

import (
	"net/http"
	"strings"
	"time"
)

// CookieOpts son los atributos comunes de las cookies del storefront.
type CookieOpts struct {
	Name     string
	Domain   string
	SameSite string
	Secure   bool
	TTL      time.Duration
}

// ParseSameSite acepta lax|strict|none; cualquier otra cosa es Lax.
func ParseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// SessionCookie arma la cookie HttpOnly que lleva el id de sesión.
func SessionCookie(o CookieOpts, sid string) *http.Cookie {
	ck := base(o)
	ck.Value = sid
	if o.TTL > 0 {
		ck.Expires = time.Now().Add(o.TTL).UTC()
		ck.MaxAge = int(o.TTL.Seconds())
	}
	return ck
}

func base(o CookieOpts) *http.Cookie {
	ck := &http.Cookie{
		Name:     o.Name,
		Path:     "/",
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: ParseSameSite(o.SameSite),
	}
	// SameSite=None sin Secure lo rechazan los navegadores.
	if ck.SameSite == http.SameSiteNoneMode {
		ck.Secure = true
	}
	if d := strings.TrimSpace(o.Domain); d != "" {
		ck.Domain = d
	}
	return ck
}
