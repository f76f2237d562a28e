package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/farmasanti/tienda/internal/apiclient"
	"github.com/farmasanti/tienda/internal/config"
	"github.com/farmasanti/tienda/internal/firebase"
	httpserver "github.com/farmasanti/tienda/internal/http"
	"github.com/farmasanti/tienda/internal/oauth/google"
	"github.com/farmasanti/tienda/internal/observability/logger"
	"github.com/farmasanti/tienda/internal/rate"
	"github.com/farmasanti/tienda/internal/session"
	rdb "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el storefront web",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			log := logger.L().With(logger.Component("serve"))

			store, err := session.NewStore(session.Config{
				Driver:        cfg.Session.Driver,
				Prefix:        cfg.Session.Redis.Prefix,
				RedisAddr:     cfg.Session.Redis.Addr,
				RedisPassword: cfg.Session.Redis.Password,
				RedisDB:       cfg.Session.Redis.DB,
				FilePath:      cfg.Session.File.Path,
			})
			if err != nil {
				return fmt.Errorf("session store: %w", err)
			}
			a.store = store

			var gp *google.Provider
			if cfg.Google.Enabled {
				gp = google.New(google.Config{
					ClientID:     cfg.Google.ClientID,
					ClientSecret: cfg.Google.ClientSecret,
					RedirectURL:  cfg.Google.RedirectURL,
					Scopes:       cfg.Google.Scopes,
				})
			}

			var limiter rate.Limiter
			if cfg.RateLimit.Enabled {
				if cfg.Session.Driver == "redis" {
					rc := rdb.NewClient(&rdb.Options{
						Addr:     cfg.Session.Redis.Addr,
						Password: cfg.Session.Redis.Password,
						DB:       cfg.Session.Redis.DB,
					})
					defer rc.Close()
					limiter = rate.NewRedisLimiter(rc, cfg.Session.Redis.Prefix+":rl:", cfg.RateLimit.Max, cfg.RateLimit.Window)
				} else {
					limiter = rate.NewMemoryLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
				}
			}

			metricsHandler, err := httpserver.RegisterMetrics(nil)
			if err != nil {
				return err
			}

			handler, err := httpserver.NewRouter(httpserver.Deps{
				Config: cfg,
				Client: apiclient.New(apiclient.Config{
					BaseURL:   cfg.BaseURL(),
					Timeout:   cfg.API.Timeout,
					UserAgent: "tienda-web/" + config.Version,
				}, nil),
				Store:    store,
				Identity: firebase.New(firebase.Config{APIKey: cfg.Firebase.APIKey, Endpoint: cfg.Firebase.Endpoint}),
				Google:   gp,
				Limiter:  limiter,
				Metrics:  metricsHandler,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("starting storefront",
				zap.String("addr", cfg.Server.Addr),
				zap.String("api", cfg.BaseURL()),
				zap.String("session_driver", cfg.Session.Driver),
				zap.Bool("google", gp != nil))
			return httpserver.Start(ctx, cfg.Server.Addr, handler)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Dirección de escucha (default server.addr)")
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.stdout, config.Version)
			return nil
		},
	}
}
