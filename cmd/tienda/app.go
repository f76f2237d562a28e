package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/farmasanti/tienda/internal/apiclient"
	"github.com/farmasanti/tienda/internal/apierr"
	"github.com/farmasanti/tienda/internal/auth"
	"github.com/farmasanti/tienda/internal/config"
	"github.com/farmasanti/tienda/internal/firebase"
	"github.com/farmasanti/tienda/internal/observability/logger"
	"github.com/farmasanti/tienda/internal/query"
	"github.com/farmasanti/tienda/internal/services"
	"github.com/farmasanti/tienda/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// msgSesionExpirada se muestra cuando el backend rechaza el token guardado.
const msgSesionExpirada = "Tu sesión expiró. Ejecuta `tienda login` para volver a ingresar."

// app es el estado compartido por los comandos: config, sesión local y servicios.
type app struct {
	cfgPath string
	out     string // text | json
	verbose bool

	cfg   *config.Config
	store session.Store
	sess  *session.Session
	svc   services.Services

	in     *bufio.Reader
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		out:    envOr("TIENDA_OUT", "text"),
		in:     bufio.NewReader(stdin),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tienda",
		Short:         "Catálogo y cuenta de FarmaSanti desde la terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.store != nil {
				return a.store.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", envOr("TIENDA_CONFIG", ""), "Archivo YAML de configuración (env TIENDA_CONFIG)")
	root.PersistentFlags().StringVar(&a.out, "out", a.out, "Formato de salida: text|json (env TIENDA_OUT)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Logs con el nivel de la config (default: solo warnings)")

	root.AddCommand(
		newCatalogoCmd(a),
		newProductoCmd(a),
		newUnidadesCmd(a),
		newComprasCmd(a),
		newLoginCmd(a),
		newRegistroCmd(a),
		newRecuperarCmd(a),
		newLogoutCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup carga la config e inicializa el logger. Los logs van a stderr para no
// mezclarse con las tablas.
func (a *app) setup() error {
	if a.out != "text" && a.out != "json" {
		return fmt.Errorf("--out debe ser text o json")
	}
	cfg, err := config.LoadOrDefault(a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	level := "warn"
	if a.verbose {
		level = cfg.Log.Level
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: level, Stderr: true})
	return nil
}

// openSession abre el token guardado en disco y arma los servicios con él.
func (a *app) openSession(ctx context.Context) error {
	if a.sess != nil {
		return nil
	}
	store, err := session.NewStore(session.Config{Driver: "file", FilePath: a.cfg.Session.File.Path})
	if err != nil {
		return err
	}
	sess, err := session.Open(ctx, store, session.TokenKey, 0)
	if err != nil {
		_ = store.Close()
		return err
	}
	a.store, a.sess = store, sess

	client := apiclient.New(apiclient.Config{
		BaseURL:   a.cfg.BaseURL(),
		Timeout:   a.cfg.API.Timeout,
		UserAgent: "tienda-cli/" + config.Version,
	}, sess)
	a.svc = services.New(client)
	return nil
}

func (a *app) flows() *auth.Flows {
	idp := firebase.New(firebase.Config{APIKey: a.cfg.Firebase.APIKey, Endpoint: a.cfg.Firebase.Endpoint})
	requestURI := a.cfg.Server.PublicURL
	if requestURI == "" {
		requestURI = "http://localhost"
	}
	return auth.NewFlows(idp, a.svc.Auth, requestURI)
}

// apiErr convierte un error del backend en el mensaje para el usuario. Un 401
// borra el token guardado y pide volver a iniciar sesión.
func (a *app) apiErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apierr.ErrAuthExpired) {
		if a.sess != nil {
			if cerr := a.sess.Clear(ctx); cerr != nil {
				logger.From(ctx).Warn("session clear failed", logger.Err(cerr))
			}
		}
		return errors.New(msgSesionExpirada)
	}
	return errors.New(apierr.Normalize(err, query.DefaultFallback).Message)
}

// prompt lee una línea de stdin.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.stderr, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// password lee sin eco si stdin es una terminal.
func (a *app) password(label string) (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.stderr, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		return string(b), err
	}
	return a.prompt(label)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
