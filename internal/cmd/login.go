package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sadopc/focusnest/internal/tui"
)

// readPassword reads one line from r for non-interactive use.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password on stdin")
	}
	return password, nil
}

func newLoginCmd(g *globals) *cobra.Command {
	var email string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := tui.Credentials{Email: email}
			if passwordStdin {
				if c.Email == "" {
					return errors.New("--email is required with --password-stdin")
				}
				password, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				c.Password = password
			} else if err := tui.LoginForm(&c).RunWithContext(ctx); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return fmt.Errorf("login form: %w", err)
			}

			e, err := g.open(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			ident, err := e.provider.Authenticate(ctx, c.Email, c.Password)
			if err != nil {
				return err
			}
			token, err := e.provider.IssueToken(ident)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			if err := e.cfg.SaveToken(token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", ident.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func newLogoutCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.cfg.ClearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}
