package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Métricas de las llamadas al backend. Viven en un paquete aparte para que
// apiclient y query puedan usarlas sin depender del paquete http.

var (
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tienda_api_requests_total",
		Help: "Requests al backend por recurso, método y status (0 = error de transporte)",
	}, []string{"resource", "method", "status"})

	APIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tienda_api_request_duration_seconds",
		Help:    "Latencia de los requests al backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource", "method"})

	AuthExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tienda_api_auth_expired_total",
		Help: "Respuestas 401 recibidas del backend",
	})

	QueryStaleResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tienda_query_stale_results_total",
		Help: "Resultados descartados porque un fetch posterior ya había sido emitido",
	})
)

// RegisterAPI registra las métricas del cliente en reg (o el default si es nil).
func RegisterAPI(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{APIRequestsTotal, APIRequestDuration, AuthExpiredTotal, QueryStaleResultsTotal} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// ObserveAPICall registra un request al backend. status 0 = falló el transporte.
func ObserveAPICall(method, path string, status int, d time.Duration) {
	resource := NormalizePath(path)
	APIRequestsTotal.WithLabelValues(resource, method, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(resource, method).Observe(d.Seconds())
	if status == 401 {
		AuthExpiredTotal.Inc()
	}
}
