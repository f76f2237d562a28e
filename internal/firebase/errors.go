package firebase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Códigos al estilo del SDK web de Firebase. Los mensajes al usuario se
// arman a partir de estos (ver internal/auth).
const (
	CodeUserNotFound        = "auth/user-not-found"
	CodeWrongPassword       = "auth/wrong-password"
	CodeInvalidCredential   = "auth/invalid-credential"
	CodeInvalidEmail        = "auth/invalid-email"
	CodeWeakPassword        = "auth/weak-password"
	CodeEmailAlreadyInUse   = "auth/email-already-in-use"
	CodeUserDisabled        = "auth/user-disabled"
	CodeTooManyRequests     = "auth/too-many-requests"
	CodeMissingPassword     = "auth/missing-password"
	CodeMissingEmail        = "auth/missing-email"
	CodeOperationNotAllowed = "auth/operation-not-allowed"
	CodeInvalidUserToken    = "auth/invalid-user-token"
	CodeNetworkFailed       = "auth/network-request-failed"
	CodeInternalError       = "auth/internal-error"
)

var restCodes = map[string]string{
	"EMAIL_NOT_FOUND":             CodeUserNotFound,
	"INVALID_PASSWORD":            CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   CodeInvalidCredential,
	"INVALID_IDP_RESPONSE":        CodeInvalidCredential,
	"INVALID_EMAIL":               CodeInvalidEmail,
	"WEAK_PASSWORD":               CodeWeakPassword,
	"EMAIL_EXISTS":                CodeEmailAlreadyInUse,
	"USER_DISABLED":               CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER": CodeTooManyRequests,
	"MISSING_PASSWORD":            CodeMissingPassword,
	"MISSING_EMAIL":               CodeMissingEmail,
	"OPERATION_NOT_ALLOWED":       CodeOperationNotAllowed,
	"INVALID_ID_TOKEN":            CodeInvalidUserToken,
	"USER_NOT_FOUND":              CodeUserNotFound,
}

// Error es una falla del proveedor de identidad.
type Error struct {
	Code       string // auth/...
	Reason     string // texto crudo de la API REST (EMAIL_NOT_FOUND, ...)
	StatusCode int
	err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("Firebase: Error (%s).", e.Code)
}

func (e *Error) Unwrap() error { return e.err }

// CodeOf devuelve el código auth/... de err, o "" si no viene de Firebase.
func CodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

type restError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// parseError traduce el cuerpo de error de la API REST. Los mensajes pueden
// traer detalle después de " : " (WEAK_PASSWORD : Password should be ...).
func parseError(status int, body []byte) *Error {
	var re restError
	if err := json.Unmarshal(body, &re); err != nil || re.Error.Message == "" {
		return &Error{Code: CodeInternalError, StatusCode: status, Reason: strings.TrimSpace(string(body))}
	}
	reason := re.Error.Message
	if i := strings.Index(reason, " : "); i >= 0 {
		reason = reason[:i]
	}
	reason = strings.TrimSpace(reason)
	code, ok := restCodes[reason]
	if !ok {
		code = "auth/" + strings.ToLower(strings.ReplaceAll(reason, "_", "-"))
	}
	return &Error{Code: code, Reason: re.Error.Message, StatusCode: status}
}
