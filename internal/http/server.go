package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/farmasanti/tienda/internal/observability/logger"
	"go.uber.org/zap"
)

// Start sirve handler en addr hasta que ctx se cancele; después apaga con un
// margen de 10s para los requests en vuelo.
func Start(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("http server listening", logger.Component("server"), zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.L().Info("http server shutting down", logger.Component("server"))
	return srv.Shutdown(shutdownCtx)
}
