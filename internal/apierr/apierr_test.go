package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_BackendMessage(t *testing.T) {
	raw := &HTTPError{StatusCode: http.StatusNotFound, Body: []byte(`{"message":"Producto no encontrado"}`)}

	got := Normalize(fmt.Errorf("GET /productos/x: %w", raw), "Error al obtener producto")

	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "Producto no encontrado", got.Message)
	assert.ErrorIs(t, got, raw)
}

func TestNormalize_FallbackCases(t *testing.T) {
	cases := map[string]error{
		"transport":        errors.New("dial tcp: connection refused"),
		"html body":        &HTTPError{StatusCode: http.StatusBadGateway, Body: []byte("<html>bad gateway</html>")},
		"json sin message": &HTTPError{StatusCode: http.StatusBadRequest, Body: []byte(`{"error":"x"}`)},
		"message vacío":    &HTTPError{StatusCode: http.StatusBadRequest, Body: []byte(`{"message":"  "}`)},
		"message no str":   &HTTPError{StatusCode: http.StatusBadRequest, Body: []byte(`{"message":42}`)},
		"array":            &HTTPError{StatusCode: http.StatusBadRequest, Body: []byte(`["message"]`)},
		"nil":              nil,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			got := Normalize(in, "Error al listar categorías")
			require.NotNil(t, got)
			assert.Equal(t, http.StatusInternalServerError, got.Status)
			assert.Equal(t, "Error al listar categorías", got.Message)
		})
	}
}

func TestNormalize_AlreadyNormalized(t *testing.T) {
	orig := New(http.StatusConflict, "ya existe")
	assert.Same(t, orig, Normalize(fmt.Errorf("wrap: %w", orig), "otro"))
}

func TestNormalize_KeepsAuthExpired(t *testing.T) {
	raw := &HTTPError{StatusCode: http.StatusUnauthorized, Body: []byte(`{"message":"Token inválido"}`)}
	got := Normalize(raw, "fallback")

	assert.Equal(t, http.StatusUnauthorized, got.Status)
	assert.True(t, errors.Is(got, ErrAuthExpired))

	other := Normalize(&HTTPError{StatusCode: http.StatusForbidden}, "fallback")
	assert.False(t, errors.Is(other, ErrAuthExpired))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 404, StatusOf(New(404, "x")))
	assert.Equal(t, 500, StatusOf(errors.New("x")))
}

func TestHTTPError_TruncatesOnRuneBoundary(t *testing.T) {
	// 199 bytes ASCII + "ñ" (2 bytes): el corte en 200 caería en medio de la ñ.
	body := strings.Repeat("a", 199) + "ñandú"
	msg := (&HTTPError{StatusCode: 502, Body: []byte(body)}).Error()

	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, "http 502: "+strings.Repeat("a", 199)+"…", msg)

	short := (&HTTPError{StatusCode: 500, Body: []byte(" caído ")}).Error()
	assert.Equal(t, "http 500: caído", short)
}
