package logger

import (
	"time"

	"go.uber.org/zap"
)

// ---- HTTP (storefront y llamadas al backend) ----

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }
func Duration(d time.Duration) zap.Field {
	return zap.Duration("duration", d)
}

// Resource identifica el recurso del backend (/productos, /categorias, ...).
func Resource(v string) zap.Field { return zap.String("resource", v) }

// ---- Tienda ----

// Query es el query string de filtros del catálogo.
func Query(v string) zap.Field { return zap.String("query", v) }

func ProductoID(v string) zap.Field { return zap.String("producto_id", v) }
func VentaID(v int64) zap.Field { return zap.Int64("venta_id", v) }

// Generation es el número de secuencia de un fetch dentro de un query.
func Generation(v uint64) zap.Field { return zap.Uint64("generation", v) }

func SessionID(v string) zap.Field { return zap.String("session_id", v) }

// Email loguea el correo ya enmascarado por el llamador.
func Email(v string) zap.Field { return zap.String("email", v) }

// Token espera un valor ya enmascarado (util.MaskToken).
func Token(v string) zap.Field { return zap.String("token", v) }

// Provider identifica el proveedor de identidad (google, password).
func Provider(v string) zap.Field { return zap.String("provider", v) }

// Code es un código de error de un proveedor externo (auth/user-not-found).
func Code(v string) zap.Field { return zap.String("code", v) }

// ---- Sistema ----

// Layer: "service", "query", "http", "cli".
func Layer(v string) zap.Field { return zap.String("layer", v) }
func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field { return zap.String("op", v) }
func Err(err error) zap.Field { return zap.Error(err) }
func Count(v int) zap.Field { return zap.Int("count", v) }
