package cli

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/session"
	"github.com/nhle/tasknest/internal/ui/forms"
	"github.com/nhle/tasknest/internal/views"
)

// loadScoped loads categories, applies the scope flags and fetches the
// todos inside that scope.
func loadScoped(ctx context.Context, s *session.Session, category, subcategory string) error {
	if _, err := s.RequireUser(ctx); err != nil {
		return err
	}
	if err := s.Categories.Load(ctx); err != nil {
		return err
	}
	f, err := resolveScope(s.Categories.Categories(), category, subcategory)
	if err != nil {
		return err
	}
	return s.Todos.Reload(ctx, f)
}

func (a *App) listCmd() *cobra.Command {
	var (
		category, subcategory, sortBy string
		showCompleted                 bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string, s *session.Session) error {
			ctx, cancel := s.Timeout(cmd.Context())
			defer cancel()

			if sortBy != "" {
				if err := s.Todos.SetSortBy(model.SortOption(sortBy)); err != nil {
					return err
				}
			}
			if err := loadScoped(ctx, s, category, subcategory); err != nil {
				return err
			}

			RenderBoard(cmd.OutOrStdout(), s.Board(), s.Categories.Categories(), s.Todos.SortBy(),
				civil.DateOf(a.now()), showCompleted, s.Config.DarkTheme())
			return nil
		}),
	}
	cmd.Flags().StringVar(&category, "category", "", "Only todos in this category (name or id)")
	cmd.Flags().StringVar(&subcategory, "subcategory", "", "Only todos in this subcategory (requires --category)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by created_at, priority or deadline")
	cmd.Flags().BoolVar(&showCompleted, "completed", false, "Also show completed todos")
	return cmd
}

func (a *App) addCmd() *cobra.Command {
	var (
		in                    forms.AddTodo
		category, subcategory string
		priority              string
	)
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a todo",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string, s *session.Session) error {
			ctx, cancel := s.Timeout(cmd.Context())
			defer cancel()

			if err := s.Load(ctx); err != nil {
				return err
			}
			cats := s.Categories.Categories()

			if len(args) == 1 {
				in.Title = args[0]
			}
			in.Priority = model.Priority(priority)

			if in.Title == "" && a.interactive {
				if err := forms.NewAddTodoForm(&in, cats).Run(); err != nil {
					return err
				}
			} else if category != "" {
				f, err := resolveScope(cats, category, subcategory)
				if err != nil {
					return err
				}
				in.Scope = *f.CategoryID
				if f.SubcategoryID != nil {
					in.Scope += "/" + *f.SubcategoryID
				}
			}

			nt, err := in.NewTodo()
			if err != nil {
				return err
			}
			created, err := s.Todos.Add(ctx, nt)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", shortID(created.ID), created.Title)
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Description, "description", "", "Longer description")
	cmd.Flags().StringVar(&category, "category", "", "Category (name or id)")
	cmd.Flags().StringVar(&subcategory, "subcategory", "", "Subcategory of --category")
	cmd.Flags().StringVar(&priority, "priority", string(model.PriorityMedium), "high, medium or low")
	cmd.Flags().StringVar(&in.Deadline, "deadline", "", "Deadline as YYYY-MM-DD")
	return cmd
}

func (a *App) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Mark a todo done or not done",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string, s *session.Session) error {
			ctx, cancel := s.Timeout(cmd.Context())
			defer cancel()

			if err := s.Load(ctx); err != nil {
				return err
			}
			t, err := resolveTodo(s.Todos.Todos(), args[0])
			if err != nil {
				return err
			}
			if err := s.Todos.Toggle(ctx, t.ID); err != nil {
				return err
			}

			state := "done"
			if t.IsCompleted {
				state = "not done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "marked %s %s\n", t.Title, state)
			return nil
		}),
	}
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string, s *session.Session) error {
			ctx, cancel := s.Timeout(cmd.Context())
			defer cancel()

			if err := s.Load(ctx); err != nil {
				return err
			}
			t, err := resolveTodo(s.Todos.Todos(), args[0])
			if err != nil {
				return err
			}
			if err := s.Todos.Delete(ctx, t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", t.Title)
			return nil
		}),
	}
}

func (a *App) reorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder ACTIVE OVER",
		Short: "Move todo ACTIVE to the position of todo OVER",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string, s *session.Session) error {
			ctx, cancel := s.Timeout(cmd.Context())
			defer cancel()

			if err := s.Load(ctx); err != nil {
				return err
			}
			todos := s.Todos.Todos()
			active, err := resolveTodo(todos, args[0])
			if err != nil {
				return err
			}
			over, err := resolveTodo(todos, args[1])
			if err != nil {
				return err
			}
			if err := s.Todos.Reorder(ctx, active.ID, over.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %s\n", active.Title)
			return nil
		}),
	}
}

func (a *App) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show categories with open todo counts",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string, s *session.Session) error {
			ctx, cancel := s.Timeout(cmd.Context())
			defer cancel()

			if err := loadScoped(ctx, s, "", ""); err != nil {
				return err
			}
			RenderCategories(cmd.OutOrStdout(), s.Categories.Categories(),
				views.ActiveCounts(s.Todos.Todos()), s.Config.DarkTheme())
			return nil
		}),
	}
}
