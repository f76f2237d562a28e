// Package apierr normaliza los errores del backend y del transporte a un
// único formato {status, message} que la capa de presentación puede mostrar.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ErrAuthExpired identifica una respuesta 401 del backend. El cliente HTTP no
// navega ni limpia la sesión: solo lo reporta y la capa superior decide.
var ErrAuthExpired = errors.New("apierr: autenticación expirada")

// Error es el error normalizado que ve la presentación.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`

	// causa original, solo para logs y errors.Is/As
	err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// New crea un error normalizado sin causa.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap crea un error normalizado conservando la causa.
func Wrap(err error, status int, message string) *Error {
	return &Error{Status: status, Message: message, err: err}
}

// maxErrBody es cuánto del cuerpo entra en el texto de un HTTPError.
const maxErrBody = 200

// HTTPError es la respuesta no-2xx tal como llegó del backend.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if len(body) > maxErrBody {
		cut := maxErrBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "…"
	}
	if body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

// Is hace que un 401 matchee ErrAuthExpired.
func (e *HTTPError) Is(target error) bool {
	return target == ErrAuthExpired && e.StatusCode == http.StatusUnauthorized
}

// Normalize convierte cualquier error en *Error. Si err ya está normalizado lo
// devuelve tal cual; si trae un payload JSON del backend con "message" usa ese
// status y mensaje; en cualquier otro caso devuelve {500, fallback}.
// Nunca devuelve nil: Normalize(nil, msg) también es {500, msg}.
func Normalize(err error, fallback string) *Error {
	var ne *Error
	if errors.As(err, &ne) {
		return ne
	}

	var he *HTTPError
	if errors.As(err, &he) {
		if msg, ok := backendMessage(he.Body); ok {
			return Wrap(err, he.StatusCode, msg)
		}
	}

	return Wrap(err, http.StatusInternalServerError, fallback)
}

func backendMessage(body []byte) (string, bool) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	msg, _ := payload["message"].(string)
	if strings.TrimSpace(msg) == "" {
		return "", false
	}
	return msg, true
}

// StatusOf devuelve el status normalizado de err (500 si no es *Error).
func StatusOf(err error) int {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Status
	}
	return http.StatusInternalServerError
}
