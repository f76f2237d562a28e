// Package apiclient es el cliente HTTP compartido contra el backend de la farmacia.
//
// Todas las funciones de recursos (internal/services) pasan por acá: el cliente
// arma la URL bajo /api/shared, agrega el token de la sesión si existe y
// convierte respuestas no-2xx en *apierr.HTTPError. Un 401 además matchea
// apierr.ErrAuthExpired con errors.Is; decidir qué hacer con eso (limpiar la
// sesión, ir a /login) queda del lado de quien llama.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/farmasanti/tienda/internal/apierr"
	"github.com/farmasanti/tienda/internal/metrics"
	"github.com/farmasanti/tienda/internal/observability/logger"
	"go.uber.org/zap"
)

const maxBodyBytes = 4 << 20

// TokenSource entrega el token de sesión vigente ("" si no hay sesión).
type TokenSource interface {
	Token() string
}

// Config del cliente. BaseURL ya incluye /api/shared (ver config.BaseURL).
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	UserAgent  string
}

type Client struct {
	base   string
	hc     *http.Client
	ua     string
	tokens TokenSource
}

// New crea el cliente. tokens puede ser nil (acceso como invitado).
func New(cfg Config, tokens TokenSource) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "tienda"
	}
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		hc:     hc,
		ua:     ua,
		tokens: tokens,
	}
}

// WithSession devuelve una copia que comparte el transporte pero lee el token de ts.
// El storefront web la usa una vez por request.
func (c *Client) WithSession(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

func (c *Client) BaseURL() string { return c.base }

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Do ejecuta un request JSON. path es relativo a la base y puede traer query string.
// out puede ser nil si no interesa el cuerpo de la respuesta.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	log := logger.From(ctx).With(logger.Method(method), logger.Resource(metrics.NormalizePath(path)))
	start := time.Now()

	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.ObserveAPICall(method, path, 0, time.Since(start))
		log.Warn("api call failed", logger.Duration(time.Since(start)), logger.Err(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	metrics.ObserveAPICall(method, path, resp.StatusCode, elapsed)
	if err != nil {
		log.Warn("api read body failed", logger.Status(resp.StatusCode), logger.Err(err))
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := &apierr.HTTPError{StatusCode: resp.StatusCode, Body: raw}
		lvl := zap.WarnLevel
		if resp.StatusCode == http.StatusNotFound {
			lvl = zap.InfoLevel
		}
		if ce := log.Check(lvl, "api call rejected"); ce != nil {
			ce.Write(logger.Status(resp.StatusCode), logger.Duration(elapsed))
		}
		return herr
	}

	log.Debug("api call", logger.Status(resp.StatusCode), logger.Duration(elapsed), logger.Bytes(len(raw)))

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
