// Package firebase habla con la API REST de Identity Toolkit (Firebase Auth):
// login con correo, registro, verificación de correo, reset de contraseña y
// login federado con un ID token de Google.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/farmasanti/tienda/internal/observability/logger"
)

const DefaultEndpoint = "https://identitytoolkit.googleapis.com/v1"

type Config struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
}

type Client struct {
	key      string
	endpoint string
	hc       *http.Client
}

func New(cfg Config) *Client {
	ep := strings.TrimRight(cfg.Endpoint, "/")
	if ep == "" {
		ep = DefaultEndpoint
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{key: cfg.APIKey, endpoint: ep, hc: hc}
}

// Credential es el resultado de un login o registro. IDToken es lo que el
// backend de la farmacia canjea por su propio token.
type Credential struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
}

// User es la cuenta según accounts:lookup.
type User struct {
	LocalID       string `json:"localId"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	DisplayName   string `json:"displayName"`
	Disabled      bool   `json:"disabled"`
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Credential, error) {
	var out Credential
	err := c.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*Credential, error) {
	var out Credential
	err := c.call(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SignInWithIdp cambia un ID token de un proveedor (google.com) por una
// credencial de Firebase. requestURI es la URL pública de la tienda.
func (c *Client) SignInWithIdp(ctx context.Context, providerID, providerIDToken, requestURI string) (*Credential, error) {
	if requestURI == "" {
		requestURI = "http://localhost"
	}
	post := url.Values{}
	post.Set("id_token", providerIDToken)
	post.Set("providerId", providerID)

	var out Credential
	err := c.call(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":            post.Encode(),
		"requestUri":          requestURI,
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendEmailVerification(ctx context.Context, idToken string) error {
	return c.call(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "VERIFY_EMAIL",
		"idToken":     idToken,
	}, nil)
}

func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.call(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

func (c *Client) Lookup(ctx context.Context, idToken string) (*User, error) {
	var out struct {
		Users []User `json:"users"`
	}
	if err := c.call(ctx, "accounts:lookup", map[string]any{"idToken": idToken}, &out); err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, &Error{Code: CodeUserNotFound, Reason: "USER_NOT_FOUND", StatusCode: http.StatusBadRequest}
	}
	return &out.Users[0], nil
}

func (c *Client) call(ctx context.Context, method string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("firebase: encode %s: %w", method, err)
	}
	u := c.endpoint + "/" + method + "?key=" + url.QueryEscape(c.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("firebase: build %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	log := logger.From(ctx).With(logger.Component("firebase"), logger.Op(method))
	resp, err := c.hc.Do(req)
	if err != nil {
		log.Warn("identity toolkit unreachable", logger.Err(err))
		return &Error{Code: CodeNetworkFailed, err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &Error{Code: CodeNetworkFailed, StatusCode: resp.StatusCode, err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fe := parseError(resp.StatusCode, raw)
		log.Info("identity toolkit rejected", logger.Status(resp.StatusCode), logger.Code(fe.Code))
		return fe
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Code: CodeInternalError, StatusCode: resp.StatusCode, err: err}
	}
	return nil
}
