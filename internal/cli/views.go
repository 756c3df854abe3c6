package cli

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/tasknest/internal/session"
	"github.com/nhle/tasknest/internal/sync"
	"github.com/nhle/tasknest/internal/ui/board"
	"github.com/nhle/tasknest/internal/views"
)

func (a *App) statsCmd() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string, s *session.Session) error {
			if period == "" {
				period = s.Config.Display.StatsPeriod
			}
			p, err := views.ParsePeriod(period)
			if err != nil {
				return err
			}

			ctx, cancel := s.Timeout(cmd.Context())
			defer cancel()
			if err := loadScoped(ctx, s, "", ""); err != nil {
				return err
			}

			report := views.Stats(s.Todos.Todos(), s.Categories.Categories(), p, a.now(), s.Config.DarkTheme())
			RenderStats(cmd.OutOrStdout(), report)
			return nil
		}),
	}
	cmd.Flags().StringVar(&period, "period", "", "day, week or month")
	return cmd
}

func (a *App) calendarCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show todos by deadline for one month",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string, s *session.Session) error {
			now := a.now()
			year, mon := now.Year(), now.Month()
			if month != "" {
				t, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("invalid --month %q, expected YYYY-MM", month)
				}
				year, mon = t.Year(), t.Month()
			}

			ctx, cancel := s.Timeout(cmd.Context())
			defer cancel()
			if err := loadScoped(ctx, s, "", ""); err != nil {
				return err
			}

			RenderCalendar(cmd.OutOrStdout(), views.CalendarMonth(s.Todos.Todos(), year, mon), civil.DateOf(now))
			return nil
		}),
	}
	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default: current month)")
	return cmd
}

func (a *App) boardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the interactive board",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string, s *session.Session) error {
			ctx, cancel := s.Timeout(cmd.Context())
			defer cancel()
			if _, err := s.RequireUser(ctx); err != nil {
				return err
			}

			deps := board.Deps{
				Todos:      s.Todos,
				Categories: s.Categories,
				Projector:  s.Projector,
				Dark:       s.Config.DarkTheme(),
				Now:        a.now,
				Timeout:    time.Duration(s.Config.Store.TimeoutSec) * time.Second,
			}
			if sec := s.Config.Sync.PollIntervalSec; sec > 0 {
				deps.Poller = sync.New(time.Duration(sec)*time.Second,
					time.Duration(s.Config.Store.TimeoutSec)*time.Second, s.Log.Named("sync"))
				deps.Poller.Register(sync.TargetCategories, s.Categories.Refetch)
				deps.Poller.Register(sync.TargetTodos, s.Todos.Refetch)
				defer deps.Poller.Stop()
			}

			_, err := tea.NewProgram(board.New(deps), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		}),
	}
}
