package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/farmasanti/tienda/internal/auth"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, googleIDToken string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Inicia sesión con correo y contraseña o con un id_token de Google",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openSession(ctx); err != nil {
				return err
			}
			flows := a.flows()

			if tok := strings.TrimSpace(googleIDToken); tok != "" {
				if err := flows.LoginGoogle(ctx, a.sess, tok); err != nil {
					return errors.New(auth.MessageOf(err))
				}
				fmt.Fprintln(a.stdout, "Sesión iniciada.")
				return nil
			}

			if email == "" {
				v, err := a.prompt("Correo: ")
				if err != nil {
					return err
				}
				email = v
			}
			pw, err := a.password("Contraseña: ")
			if err != nil {
				return err
			}
			if err := flows.LoginEmail(ctx, a.sess, email, pw); err != nil {
				return errors.New(auth.MessageOf(err))
			}
			fmt.Fprintln(a.stdout, "Sesión iniciada.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Correo de la cuenta")
	cmd.Flags().StringVar(&googleIDToken, "google-id-token", "", "id_token de Google ya obtenido (login federado)")
	return cmd
}

func newRegistroCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "registro",
		Short: "Crea una cuenta y envía el correo de verificación",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openSession(ctx); err != nil {
				return err
			}
			if email == "" {
				v, err := a.prompt("Correo: ")
				if err != nil {
					return err
				}
				email = v
			}
			pw, err := a.password("Contraseña (mínimo 6 caracteres): ")
			if err != nil {
				return err
			}
			msg, err := a.flows().Register(ctx, email, pw)
			if err != nil {
				return errors.New(auth.MessageOf(err))
			}
			fmt.Fprintln(a.stdout, msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Correo de la cuenta")
	return cmd
}

func newRecuperarCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "recuperar",
		Short: "Envía el enlace para restablecer la contraseña",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openSession(ctx); err != nil {
				return err
			}
			if email == "" {
				v, err := a.prompt("Correo: ")
				if err != nil {
					return err
				}
				email = v
			}
			msg, err := a.flows().ForgotPassword(ctx, email)
			if err != nil {
				return errors.New(auth.MessageOf(err))
			}
			fmt.Fprintln(a.stdout, msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Correo de la cuenta")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cierra la sesión guardada",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.openSession(ctx); err != nil {
				return err
			}
			if err := a.flows().Logout(ctx, a.sess); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "Sesión cerrada.")
			return nil
		},
	}
}
