package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"skysms.org/internal/auth"
)

func newLoginCmd(cfgPath *string) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				var err error
				if email, err = promptIfEmpty(email, "Email: "); err != nil {
					return err
				}
				if password, err = promptIfEmpty(password, "Senha: "); err != nil {
					return err
				}
				u, err := a.auth.Login(cmd.Context(), email, password)
				if err != nil {
					return authError(err)
				}
				fmt.Printf("Bem-vindo, %s\n", u.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newRegisterCmd(cfgPath *string) *cobra.Command {
	var name, email, password, confirm string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				if confirm == "" {
					confirm = password
				}
				u, err := a.auth.Register(cmd.Context(), name, email, password, confirm)
				if err != nil {
					return authError(err)
				}
				fmt.Printf("Conta criada. Bem-vindo, %s\n", u.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Password confirmation (defaults to --password)")
	return cmd
}

func newLogoutCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				if err := a.auth.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("Sessão encerrada.")
				return nil
			})
		},
	}
}

func newForgotPasswordCmd(cfgPath *string) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset email",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				var err error
				if email, err = promptIfEmpty(email, "Email: "); err != nil {
					return err
				}
				msg, err := a.auth.ForgotPassword(cmd.Context(), email)
				if err != nil {
					return authError(err)
				}
				fmt.Println(msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	return cmd
}

func newWhoamiCmd(cfgPath *string) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfgPath, func(a *app) error {
				if remote {
					u, err := a.auth.CurrentUser(cmd.Context())
					if err != nil {
						return authError(err)
					}
					printUser(u)
					return nil
				}
				u, ok := a.sess.User()
				if !ok || !a.sess.Authenticated() {
					return errors.New("não autenticado")
				}
				printUser(u)
				if exp := a.sess.TokenExpiry(); !exp.IsZero() {
					fmt.Printf("token expira em %s\n", exp.Local().Format("02/01/2006 15:04"))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Fetch the profile from the backend instead of the local session")
	return cmd
}

func printUser(u auth.User) {
	fmt.Printf("%s <%s> (id %s)\n", u.Name, u.Email, u.ID)
}

// authError flattens validation errors into readable lines.
func authError(err error) error {
	var fields auth.FieldErrors
	if errors.As(err, &fields) {
		var b strings.Builder
		b.WriteString("dados inválidos:")
		for f, msg := range fields {
			fmt.Fprintf(&b, "\n  %s: %s", f, msg)
		}
		return errors.New(b.String())
	}
	return err
}

func promptIfEmpty(val, prompt string) (string, error) {
	if val != "" {
		return val, nil
	}
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
