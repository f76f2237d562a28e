// Package auth implementa los flujos de login, registro y recuperación de
// contraseña: primero contra Firebase y después contra el backend, que
// devuelve el token de sesión de la tienda.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/farmasanti/tienda/internal/domain"
	"github.com/farmasanti/tienda/internal/firebase"
	"github.com/farmasanti/tienda/internal/observability/logger"
	"github.com/farmasanti/tienda/internal/query"
	"github.com/farmasanti/tienda/internal/services"
	"github.com/farmasanti/tienda/internal/util"
	"github.com/go-playground/validator/v10"
)

// Identity es lo que se usa de Firebase (firebase.Client lo cumple).
type Identity interface {
	SignInWithPassword(ctx context.Context, email, password string) (*firebase.Credential, error)
	SignUp(ctx context.Context, email, password string) (*firebase.Credential, error)
	SignInWithIdp(ctx context.Context, providerID, providerIDToken, requestURI string) (*firebase.Credential, error)
	SendEmailVerification(ctx context.Context, idToken string) error
	SendPasswordReset(ctx context.Context, email string) error
	Lookup(ctx context.Context, idToken string) (*firebase.User, error)
}

// Tokens es donde queda el token del backend (session.Session lo cumple).
type Tokens interface {
	SetToken(ctx context.Context, tok string) error
	Clear(ctx context.Context) error
}

type Flows struct {
	idp        Identity
	api        services.AuthService
	requestURI string
	validate   *validator.Validate
}

// NewFlows. requestURI es la URL pública que se informa a signInWithIdp.
func NewFlows(idp Identity, api services.AuthService, requestURI string) *Flows {
	return &Flows{idp: idp, api: api, requestURI: requestURI, validate: validator.New()}
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type resetForm struct {
	Email string `validate:"required,email"`
}

// LoginEmail: Firebase → correo verificado → backend → sesión.
func (f *Flows) LoginEmail(ctx context.Context, tokens Tokens, email, password string) error {
	email = strings.TrimSpace(email)
	log := logger.From(ctx).With(logger.Component("auth"), logger.Provider("password"), logger.Email(util.MaskEmail(email)))

	if err := f.validate.Struct(loginForm{Email: email, Password: password}); err != nil {
		if failedOn(err, "Email") {
			return newError(MsgCorreoInvalido, err)
		}
		return newError(MsgCredencialesInvalida, err)
	}

	cred, err := f.idp.SignInWithPassword(ctx, email, password)
	if err != nil {
		log.Info("firebase sign-in failed", logger.Code(firebase.CodeOf(err)))
		return newError(LoginMessage(err), err)
	}

	user, err := f.idp.Lookup(ctx, cred.IDToken)
	if err != nil {
		return newError(LoginMessage(err), err)
	}
	if !user.EmailVerified {
		log.Info("email not verified")
		return newError(MsgVerificarCorreo, nil)
	}

	login := query.NewMutation(f.api.LoginEmail).Named("login_email")
	res, err := login.Mutate(ctx, domain.LoginRequest{Token: cred.IDToken})
	if err != nil {
		log.Warn("backend login failed", logger.Err(err))
		return newError(MsgErrorLoginBackend, err)
	}
	if err := tokens.SetToken(ctx, res.Token); err != nil {
		return newError(MsgErrorLoginBackend, err)
	}
	log.Info("logged in", logger.Token(util.MaskToken(res.Token)))
	return nil
}

// LoginGoogle recibe un id_token de Google ya obtenido (callback OIDC o flag de la CLI).
func (f *Flows) LoginGoogle(ctx context.Context, tokens Tokens, googleIDToken string) error {
	log := logger.From(ctx).With(logger.Component("auth"), logger.Provider("google"))
	if strings.TrimSpace(googleIDToken) == "" {
		return newError(MsgErrorGoogle, errors.New("empty google id_token"))
	}

	cred, err := f.idp.SignInWithIdp(ctx, "google.com", googleIDToken, f.requestURI)
	if err != nil {
		log.Info("firebase idp sign-in failed", logger.Code(firebase.CodeOf(err)))
		return newError(MsgErrorGoogle, err)
	}

	login := query.NewMutation(f.api.LoginGoogle).Named("login_google")
	res, err := login.Mutate(ctx, domain.LoginRequest{Token: cred.IDToken})
	if err != nil {
		log.Warn("backend google login failed", logger.Err(err))
		return newError(MsgErrorGoogle, err)
	}
	if err := tokens.SetToken(ctx, res.Token); err != nil {
		return newError(MsgErrorGoogle, err)
	}
	log.Info("logged in", logger.Email(util.MaskEmail(cred.Email)), logger.Token(util.MaskToken(res.Token)))
	return nil
}

// Register crea la cuenta en Firebase, la registra en el backend y manda el
// correo de verificación. No deja sesión iniciada: hay que verificar primero.
// Devuelve el mensaje de éxito.
func (f *Flows) Register(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	log := logger.From(ctx).With(logger.Component("auth"), logger.Op("register"), logger.Email(util.MaskEmail(email)))

	if err := f.validate.Struct(registerForm{Email: email, Password: password}); err != nil {
		if failedOn(err, "Email") {
			return "", newError(MsgCorreoInvalido, err)
		}
		return "", newError(MsgContrasenaCorta, err)
	}

	cred, err := f.idp.SignUp(ctx, email, password)
	if err != nil {
		log.Info("firebase sign-up failed", logger.Code(firebase.CodeOf(err)))
		return "", newError(RegisterMessage(err), err)
	}

	register := query.NewMutation(f.api.RegistrarEmail).Named("register_email")
	if _, err := register.Mutate(ctx, domain.LoginRequest{Token: cred.IDToken}); err != nil {
		log.Warn("backend register failed", logger.Err(err))
		return "", newError(MessageOf(err), err)
	}

	if err := f.idp.SendEmailVerification(ctx, cred.IDToken); err != nil {
		log.Warn("verification email failed", logger.Err(err))
		return "", newError(MsgVerificacionFallo, err)
	}
	log.Info("registered")
	return MsgRegistroExitoso, nil
}

// ForgotPassword nunca revela si el correo existe. Devuelve el mensaje de éxito.
func (f *Flows) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", newError(MsgResetSinCorreo, nil)
	}
	if err := f.validate.Struct(resetForm{Email: email}); err != nil {
		return "", newError(MsgResetCorreoInvalido, err)
	}

	if err := f.idp.SendPasswordReset(ctx, email); err != nil {
		logger.From(ctx).Info("password reset failed",
			logger.Component("auth"), logger.Email(util.MaskEmail(email)), logger.Code(firebase.CodeOf(err)))
		return "", newError(ResetMessage(err), err)
	}
	return MsgResetEnviado, nil
}

func (f *Flows) Logout(ctx context.Context, tokens Tokens) error {
	return tokens.Clear(ctx)
}

func failedOn(err error, field string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Field() == field {
			return true
		}
	}
	return false
}
