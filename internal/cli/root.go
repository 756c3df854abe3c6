// Package cli wires the cobra command tree onto a session.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/session"
	"github.com/nhle/tasknest/internal/theme"
)

// App carries the state shared by all commands.
type App struct {
	configPath  string
	metrics     bool
	interactive bool
	now         func() time.Time
	sessionOpts []session.Option
}

// AppOption configures an App.
type AppOption func(*App)

// WithSessionOptions passes extra options to every session the App opens.
func WithSessionOptions(opts ...session.Option) AppOption {
	return func(a *App) { a.sessionOpts = append(a.sessionOpts, opts...) }
}

// WithNow replaces the wall clock.
func WithNow(now func() time.Time) AppOption {
	return func(a *App) {
		a.now = now
		a.sessionOpts = append(a.sessionOpts, session.WithClock(now))
	}
}

// WithoutForms disables the interactive fallbacks for missing flags.
func WithoutForms() AppOption {
	return func(a *App) { a.interactive = false }
}

// NewApp creates an App reading model.DefaultConfigPath unless --config is given.
func NewApp(opts ...AppOption) *App {
	a := &App{
		configPath:  model.DefaultConfigPath(),
		interactive: true,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Command builds the command tree.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "tasknest",
		Short:         "Categorized todo lists in your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", a.configPath, "Path to config file")
	root.PersistentFlags().BoolVar(&a.metrics, "metrics", false, "Print store metrics to stderr after the command")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.categoriesCmd(),
		a.listCmd(),
		a.addCmd(),
		a.toggleCmd(),
		a.deleteCmd(),
		a.reorderCmd(),
		a.statsCmd(),
		a.calendarCmd(),
		a.boardCmd(),
	)
	return root
}

// Execute runs the CLI with os.Args.
func Execute(version string) error {
	root := NewApp().Command()
	root.Version = version
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, theme.ErrorStyle.Render("Error: "+err.Error()))
		return err
	}
	return nil
}

// run opens a session for the duration of one command.
func (a *App) run(fn func(cmd *cobra.Command, args []string, s *session.Session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := model.LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		s, err := session.Open(cmd.Context(), cfg, a.sessionOpts...)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := fn(cmd, args, s); err != nil {
			return err
		}
		if a.metrics {
			return s.WriteMetrics(cmd.ErrOrStderr())
		}
		return nil
	}
}
