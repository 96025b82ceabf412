package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sadopc/focusnest/internal/identity"
	"github.com/sadopc/focusnest/internal/tui"
)

func newUserCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserAddCmd(g))
	return cmd
}

func newUserAddCmd(g *globals) *cobra.Command {
	var s tui.Signup
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account. The first account is an administrator.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := g.open(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			count, err := e.backend.CountUsers(ctx)
			if err != nil {
				return fmt.Errorf("count users: %w", err)
			}
			first := count == 0

			if passwordStdin {
				if s.Email == "" || s.FirstName == "" {
					return errors.New("--email and --first-name are required with --password-stdin")
				}
				password, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				s.Password = password
			} else if err := tui.SignupForm(&s, !first && !s.Admin).RunWithContext(ctx); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return fmt.Errorf("signup form: %w", err)
			}

			typ := identity.TypeUser
			if first || s.Admin {
				typ = identity.TypeAdmin
			}
			ident, err := e.provider.Register(ctx, identity.NewUser{
				FirstName: s.FirstName,
				LastName:  s.LastName,
				Email:     s.Email,
				Password:  s.Password,
				Type:      typ,
			})
			if err != nil {
				return fmt.Errorf("register user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", ident.Email, ident.Type)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&s.FirstName, "first-name", "", "First name")
	f.StringVar(&s.LastName, "last-name", "", "Last name")
	f.StringVarP(&s.Email, "email", "e", "", "Email")
	f.BoolVar(&s.Admin, "admin", false, "Create an administrator")
	f.BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}
