package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// BuildAPIURL es la URL del backend fijada en build:
//
//	go build -ldflags "-X github.com/farmasanti/tienda/internal/config.BuildAPIURL=https://api.farmasanti.bo"
//
// Solo se usa si no hay una URL inyectada en runtime (env o YAML).
var BuildAPIURL = ""

// Version de la build (también vía -ldflags).
var Version = "dev"

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env" validate:"omitempty,oneof=dev staging prod"`
	} `yaml:"app"`

	API struct {
		// URL raíz del backend; el cliente le agrega BasePath.
		URL      string        `yaml:"url"`
		BasePath string        `yaml:"base_path"`
		Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	} `yaml:"api"`

	Server struct {
		Addr      string `yaml:"addr" validate:"required"`
		PublicURL string `yaml:"public_url" validate:"omitempty,url"`
	} `yaml:"server"`

	Session struct {
		Driver     string        `yaml:"driver" validate:"oneof=memory redis file"`
		CookieName string        `yaml:"cookie_name" validate:"required"`
		Domain     string        `yaml:"domain"`
		SameSite   string        `yaml:"samesite" validate:"omitempty,oneof=Lax Strict None lax strict none"`
		Secure     bool          `yaml:"secure"`
		TTL        time.Duration `yaml:"ttl" validate:"gt=0"`
		Redis      struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db" validate:"gte=0"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		File struct {
			Path string `yaml:"path"`
		} `yaml:"file"`
	} `yaml:"session"`

	Firebase struct {
		APIKey   string `yaml:"api_key"`
		Endpoint string `yaml:"endpoint" validate:"omitempty,url"`
	} `yaml:"firebase"`

	Google struct {
		Enabled      bool     `yaml:"enabled"`
		ClientID     string   `yaml:"client_id" validate:"required_if=Enabled true"`
		ClientSecret string   `yaml:"client_secret" validate:"required_if=Enabled true"`
		RedirectURL  string   `yaml:"redirect_url"` // si vacío => <server.public_url>/auth/google/callback
		Scopes       []string `yaml:"scopes"`
	} `yaml:"google"`

	Catalog struct {
		SearchDebounce time.Duration `yaml:"search_debounce" validate:"gte=0"`
	} `yaml:"catalog"`

	// RateLimit aplica a los POST de login, registro y recuperación.
	RateLimit struct {
		Enabled bool          `yaml:"enabled"`
		Max     int           `yaml:"max" validate:"gte=0"`
		Window  time.Duration `yaml:"window" validate:"gte=0"`
	} `yaml:"rate_limit"`

	Log struct {
		Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	} `yaml:"log"`
}

// Load lee el YAML en path, aplica defaults, overrides por env y valida.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c.finish()
}

// LoadOrDefault es Load tolerante: si path está vacío o el archivo no existe
// arranca de los defaults (uso típico de la CLI).
func LoadOrDefault(path string) (*Config, error) {
	if strings.TrimSpace(path) != "" {
		c, err := Load(path)
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			return c, err
		}
	}
	var c Config
	return c.finish()
}

func (c *Config) finish() (*Config, error) {
	c.applyDefaults()
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Google.Enabled && strings.TrimSpace(c.Google.RedirectURL) == "" && c.Server.PublicURL != "" {
		c.Google.RedirectURL = strings.TrimRight(c.Server.PublicURL, "/") + "/auth/google/callback"
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.API.BasePath == "" {
		c.API.BasePath = "/api/shared"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 15 * time.Second
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Session.Driver == "" {
		c.Session.Driver = "memory"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "tienda_sid"
	}
	if c.Session.SameSite == "" {
		c.Session.SameSite = "Lax"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 12 * time.Hour
	}
	if c.Session.Redis.Addr == "" {
		c.Session.Redis.Addr = "localhost:6379"
	}
	if c.Session.Redis.Prefix == "" {
		c.Session.Redis.Prefix = "tienda:sess"
	}
	if c.Session.File.Path == "" {
		c.Session.File.Path = defaultSessionFile()
	}
	if c.Firebase.Endpoint == "" {
		c.Firebase.Endpoint = "https://identitytoolkit.googleapis.com/v1"
	}
	if c.RateLimit.Max == 0 {
		c.RateLimit.Max = 10
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Minute
	}
	if len(c.Google.Scopes) == 0 {
		c.Google.Scopes = []string{"openid", "email", "profile"}
	}
	if c.Catalog.SearchDebounce == 0 {
		c.Catalog.SearchDebounce = 500 * time.Millisecond
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", ".tienda", "session.json")
	}
	return filepath.Join(dir, "tienda", "session.json")
}

// APIURL resuelve la URL del backend: primero la inyectada en runtime
// (env o YAML), después la de build. Sin barra final.
func (c *Config) APIURL() string {
	if u := strings.TrimSpace(c.API.URL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return strings.TrimRight(strings.TrimSpace(BuildAPIURL), "/")
}

// BaseURL es APIURL + BasePath, la raíz de todos los recursos del backend.
func (c *Config) BaseURL() string {
	return c.APIURL() + "/" + strings.Trim(c.API.BasePath, "/")
}

// IsProd indica si corremos con app_env=prod.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod")
}

var validate = validator.New()

// Validate verifica tags y reglas que cruzan secciones.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	api := c.APIURL()
	if api == "" {
		return errors.New("config: falta la URL del backend (api.url, TIENDA_API_URL o build)")
	}
	u, err := url.Parse(api)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: URL del backend inválida: %q", api)
	}
	if c.IsProd() && !c.Session.Secure {
		return errors.New("config: session.secure debe ser true en prod")
	}
	return nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

// applyEnvOverrides pisa el YAML con variables de entorno.
// VITE_API_URL se acepta por compatibilidad con el despliegue del frontend.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// API
	if v, ok := getEnvStr("TIENDA_API_URL"); ok {
		c.API.URL = v
	} else if v, ok := getEnvStr("VITE_API_URL"); ok {
		c.API.URL = v
	}
	if v, ok := getEnvStr("TIENDA_API_BASE_PATH"); ok {
		c.API.BasePath = v
	}
	if v, ok := getEnvDur("TIENDA_API_TIMEOUT"); ok {
		c.API.Timeout = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SERVER_PUBLIC_URL"); ok {
		c.Server.PublicURL = v
	}

	// SESSION
	if v, ok := getEnvStr("SESSION_DRIVER"); ok {
		c.Session.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SESSION_COOKIE_NAME"); ok {
		c.Session.CookieName = v
	}
	if v, ok := getEnvStr("SESSION_DOMAIN"); ok {
		c.Session.Domain = v
	}
	if v, ok := getEnvStr("SESSION_SAMESITE"); ok {
		c.Session.SameSite = v
	}
	if v, ok := getEnvBool("SESSION_SECURE"); ok {
		c.Session.Secure = v
	}
	if v, ok := getEnvDur("SESSION_TTL"); ok {
		c.Session.TTL = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Session.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Session.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Session.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Session.Redis.Prefix = v
	}
	if v, ok := getEnvStr("SESSION_FILE"); ok {
		c.Session.File.Path = v
	}

	// FIREBASE (mismos nombres que el build del frontend)
	if v, ok := getEnvStr("FIREBASE_API_KEY"); ok {
		c.Firebase.APIKey = v
	} else if v, ok := getEnvStr("VITE_FIREBASE_API_KEY"); ok {
		c.Firebase.APIKey = v
	}
	if v, ok := getEnvStr("FIREBASE_ENDPOINT"); ok {
		c.Firebase.Endpoint = v
	}

	// GOOGLE
	if v, ok := getEnvBool("GOOGLE_ENABLED"); ok {
		c.Google.Enabled = v
	}
	if v, ok := getEnvStr("GOOGLE_CLIENT_ID"); ok {
		c.Google.ClientID = v
	}
	if v, ok := getEnvStr("GOOGLE_CLIENT_SECRET"); ok {
		c.Google.ClientSecret = v
	}
	if v, ok := getEnvStr("GOOGLE_REDIRECT_URL"); ok {
		c.Google.RedirectURL = v
	}
	if v, ok := getEnvCSV("GOOGLE_SCOPES"); ok && len(v) > 0 {
		c.Google.Scopes = v
	}

	// CATALOG
	if v, ok := getEnvDur("CATALOG_SEARCH_DEBOUNCE"); ok {
		c.Catalog.SearchDebounce = v
	}

	// RATE LIMIT
	if v, ok := getEnvBool("RATE_LIMIT_ENABLED"); ok {
		c.RateLimit.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LIMIT_MAX"); ok {
		c.RateLimit.Max = v
	}
	if v, ok := getEnvDur("RATE_LIMIT_WINDOW"); ok {
		c.RateLimit.Window = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
}
