package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/tasknest/internal/session"
	"github.com/nhle/tasknest/internal/ui/forms"
)

func (a *App) loginCmd() *cobra.Command {
	var in forms.SignIn
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an email address",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string, s *session.Session) error {
			if in.Email == "" && a.interactive {
				if err := forms.NewSignInForm(&in).Run(); err != nil {
					return err
				}
			}

			ctx, cancel := s.Timeout(cmd.Context())
			defer cancel()
			u, err := s.Auth.SignIn(ctx, in.Email, in.DisplayName)
			if err != nil {
				return err
			}
			RenderUser(cmd.OutOrStdout(), u)
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.DisplayName, "name", "", "Display name")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string, s *session.Session) error {
			ctx, cancel := s.Timeout(cmd.Context())
			defer cancel()
			if err := s.Auth.SignOut(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		}),
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string, s *session.Session) error {
			ctx, cancel := s.Timeout(cmd.Context())
			defer cancel()
			u, err := s.Auth.CurrentUser(ctx)
			if err != nil {
				return err
			}
			RenderUser(cmd.OutOrStdout(), u)
			return nil
		}),
	}
}
