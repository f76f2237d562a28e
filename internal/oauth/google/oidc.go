// Package google implementa el login con Google (OpenID Connect, authorization
// code). El id_token verificado se entrega a Firebase (signInWithIdp).
package google

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const DefaultDiscoveryURL = "https://accounts.google.com/.well-known/openid-configuration"

var validIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// DiscoveryURL se cambia en tests; vacío usa el de Google.
	DiscoveryURL string
	HTTPClient   *http.Client
}

type discoveryDoc struct {
	Issuer        string `json:"issuer"`
	AuthEndpoint  string `json:"authorization_endpoint"`
	TokenEndpoint string `json:"token_endpoint"`
	JWKSURI       string `json:"jwks_uri"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Provider cachea el discovery (24h) y las llaves (1h, con ETag).
type Provider struct {
	cfg  Config
	http *http.Client

	mu     sync.RWMutex
	disc   *discoveryDoc
	discAt time.Time
	keys   map[string]*rsa.PublicKey
	keysAt time.Time
	etag   string
}

func New(cfg Config) *Provider {
	if cfg.DiscoveryURL == "" {
		cfg.DiscoveryURL = DefaultDiscoveryURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid", "email", "profile"}
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Provider{cfg: cfg, http: hc}
}

func (p *Provider) discovery(ctx context.Context) (*discoveryDoc, error) {
	p.mu.RLock()
	disc, at := p.disc, p.discAt
	p.mu.RUnlock()
	if disc != nil && time.Since(at) < 24*time.Hour {
		return disc, nil
	}

	var dd discoveryDoc
	if err := p.getJSON(ctx, p.cfg.DiscoveryURL, &dd); err != nil {
		return nil, fmt.Errorf("google: discovery: %w", err)
	}
	p.mu.Lock()
	p.disc, p.discAt = &dd, time.Now()
	p.mu.Unlock()
	return &dd, nil
}

func (p *Provider) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// publicKey busca kid en el JWKS. Si no está y el cache ya tiene más de un
// minuto, se vuelve a bajar (Google rota llaves).
func (p *Provider) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	p.mu.RLock()
	key, ok := p.keys[kid]
	age := time.Since(p.keysAt)
	p.mu.RUnlock()
	if ok && age < time.Hour {
		return key, nil
	}
	if p.keys != nil && !ok && age < time.Minute {
		return nil, fmt.Errorf("google: unknown kid %q", kid)
	}

	if err := p.refreshKeys(ctx); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if key, ok := p.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("google: unknown kid %q", kid)
}

func (p *Provider) refreshKeys(ctx context.Context) error {
	disc, err := p.discovery(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, disc.JWKSURI, nil)
	if err != nil {
		return err
	}
	p.mu.RLock()
	if p.etag != "" {
		req.Header.Set("If-None-Match", p.etag)
	}
	p.mu.RUnlock()

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("google: jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		p.mu.Lock()
		p.keysAt = time.Now()
		p.mu.Unlock()
		return nil
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("google: jwks http %d", resp.StatusCode)
	}
	var set struct {
		Keys []jwk `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("google: jwks decode: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if !strings.EqualFold(k.Kty, "RSA") {
			continue
		}
		pk, err := rsaKey(k)
		if err != nil {
			continue
		}
		keys[k.Kid] = pk
	}

	p.mu.Lock()
	p.keys, p.keysAt, p.etag = keys, time.Now(), resp.Header.Get("ETag")
	p.mu.Unlock()
	return nil
}

func rsaKey(k jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	e := 65537
	if len(eb) > 0 {
		e = int(new(big.Int).SetBytes(eb).Int64())
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}

// AuthURL arma la URL de consentimiento de Google.
func (p *Provider) AuthURL(ctx context.Context, state, nonce string) (string, error) {
	disc, err := p.discovery(ctx)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(disc.AuthEndpoint)
	if err != nil {
		return "", fmt.Errorf("google: auth endpoint: %w", err)
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", p.cfg.ClientID)
	q.Set("redirect_uri", p.cfg.RedirectURL)
	q.Set("scope", strings.Join(p.cfg.Scopes, " "))
	q.Set("state", state)
	q.Set("nonce", nonce)
	q.Set("prompt", "select_account")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// ExchangeCode canjea el code del callback por tokens.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	disc, err := p.discovery(ctx)
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)
	form.Set("redirect_uri", p.cfg.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, disc.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		var b struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&b)
		return nil, fmt.Errorf("google: token http %d: %s %s", resp.StatusCode, b.Error, b.ErrorDescription)
	}
	var tr TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("google: token decode: %w", err)
	}
	if tr.IDToken == "" {
		return nil, errors.New("google: token response without id_token")
	}
	return &tr, nil
}

// IDClaims son los claims del id_token que usa la tienda.
type IDClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Nonce         string `json:"nonce"`
	jwtv5.RegisteredClaims
}

// VerifyIDToken valida firma (RS256 contra el JWKS), iss, aud, exp y nonce.
func (p *Provider) VerifyIDToken(ctx context.Context, idToken, expectedNonce string) (*IDClaims, error) {
	var claims IDClaims
	_, err := jwtv5.ParseWithClaims(idToken, &claims, func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return p.publicKey(ctx, kid)
	},
		jwtv5.WithValidMethods([]string{"RS256"}),
		jwtv5.WithAudience(p.cfg.ClientID),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("google: invalid id_token: %w", err)
	}

	issOK := false
	for _, iss := range validIssuers {
		if claims.Issuer == iss {
			issOK = true
			break
		}
	}
	if !issOK {
		return nil, fmt.Errorf("google: bad iss %q", claims.Issuer)
	}
	if expectedNonce != "" && claims.Nonce != expectedNonce {
		return nil, errors.New("google: bad nonce")
	}
	return &claims, nil
}
