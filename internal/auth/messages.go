package auth

import (
	"errors"

	"github.com/farmasanti/tienda/internal/apierr"
	"github.com/farmasanti/tienda/internal/firebase"
)

// Mensajes que ve el usuario en el formulario de login.
const (
	MsgUsuarioNoEncontrado  = "Usuario no encontrado."
	MsgContrasenaIncorrecta = "Contraseña incorrecta."
	MsgCorreoInvalido       = "Correo inválido."
	MsgCredencialesInvalida = "Credenciales no válidas."
	MsgErrorAutenticacion   = "Error de autenticación: "
	MsgVerificarCorreo      = "Debes verificar tu correo antes de ingresar."
	MsgErrorLoginBackend    = "Error en login del backend."
	MsgErrorGoogle          = "No se pudo iniciar sesión con Google"

	MsgContrasenaCorta   = "La contraseña debe tener al menos 6 caracteres."
	MsgCorreoRegistrado  = "Este correo ya está registrado."
	MsgErrorRegistro     = "Error al registrar usuario"
	MsgRegistroExitoso   = "Registro exitoso. Revisa tu correo para verificar tu cuenta."
	MsgVerificacionFallo = "Usuario registrado, pero no se pudo enviar el correo de verificación."

	MsgResetSinCorreo      = "Ingresa tu correo para restablecer la contraseña."
	MsgResetCorreoInvalido = "El formato del correo es inválido."
	MsgResetEnviado        = "Si el correo está registrado, se ha enviado un enlace para restablecer tu contraseña."
	MsgResetGenerico       = "Si el correo está registrado, se enviará un enlace de recuperación."
)

// LoginMessage traduce un error de login con correo.
func LoginMessage(err error) string {
	switch firebase.CodeOf(err) {
	case firebase.CodeUserNotFound:
		return MsgUsuarioNoEncontrado
	case firebase.CodeWrongPassword:
		return MsgContrasenaIncorrecta
	case firebase.CodeInvalidEmail:
		return MsgCorreoInvalido
	case firebase.CodeInvalidCredential:
		return MsgCredencialesInvalida
	default:
		return MsgErrorAutenticacion + err.Error()
	}
}

// RegisterMessage traduce un error de registro.
func RegisterMessage(err error) string {
	switch firebase.CodeOf(err) {
	case firebase.CodeWeakPassword:
		return MsgContrasenaCorta
	case firebase.CodeEmailAlreadyInUse:
		return MsgCorreoRegistrado
	case firebase.CodeInvalidEmail:
		return MsgCorreoInvalido
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return MsgErrorRegistro
}

// ResetMessage no distingue entre correo existente o no.
func ResetMessage(err error) string {
	if firebase.CodeOf(err) == firebase.CodeInvalidEmail {
		return MsgResetCorreoInvalido
	}
	return MsgResetGenerico
}

// Error es una falla de un flujo de autenticación con su mensaje para el usuario.
type Error struct {
	Message string
	err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.err }

func newError(msg string, cause error) *Error {
	return &Error{Message: msg, err: cause}
}

// MessageOf devuelve el mensaje para el usuario de err.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	var ne *apierr.Error
	if errors.As(err, &ne) {
		return ne.Message
	}
	return err.Error()
}
