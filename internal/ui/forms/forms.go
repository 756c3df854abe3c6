// Package forms holds the interactive huh forms used by the CLI.
package forms

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/huh"

	"github.com/nhle/tasknest/internal/model"
)

const formWidth = 60

// SignIn holds the values of the sign-in form.
type SignIn struct {
	Email       string
	DisplayName string
}

// NewSignInForm builds a form bound to in.
func NewSignInForm(in *SignIn) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&in.Email).
				Validate(validateRequired("Email")),
			huh.NewInput().
				Title("Display name").
				Placeholder("Optional").
				Value(&in.DisplayName),
		),
	).WithWidth(formWidth)
}

// AddTodo holds the values of the new-todo form. Scope is a category id,
// optionally followed by "/" and a subcategory id.
type AddTodo struct {
	Title       string
	Description string
	Scope       string
	Priority    model.Priority
	Deadline    string
}

// NewAddTodoForm builds a form bound to in, offering the given categories
// and their subcategories as scopes.
func NewAddTodoForm(in *AddTodo, categories []model.Category) *huh.Form {
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&in.Title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&in.Description),
			huh.NewSelect[string]().
				Title("Category").
				Options(ScopeOptions(categories)...).
				Value(&in.Scope),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(
					huh.NewOption("High", model.PriorityHigh),
					huh.NewOption("Medium", model.PriorityMedium),
					huh.NewOption("Low", model.PriorityLow),
				).
				Value(&in.Priority),
			huh.NewInput().
				Title("Deadline").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&in.Deadline).
				Validate(validateOptionalDate),
		),
	).WithWidth(formWidth)
}

// ScopeOptions lists every category followed by its subcategories.
func ScopeOptions(categories []model.Category) []huh.Option[string] {
	var opts []huh.Option[string]
	for _, c := range categories {
		opts = append(opts, huh.NewOption(c.Name, c.ID))
		for _, s := range c.Subcategories {
			opts = append(opts, huh.NewOption(c.Name+" › "+s.Name, c.ID+"/"+s.ID))
		}
	}
	return opts
}

// NewTodo converts the form values into a create input.
func (in AddTodo) NewTodo() (model.NewTodo, error) {
	out := model.NewTodo{
		Title:    strings.TrimSpace(in.Title),
		Priority: in.Priority,
	}

	if d := strings.TrimSpace(in.Description); d != "" {
		out.Description = &d
	}

	catID, subID, _ := strings.Cut(in.Scope, "/")
	if catID != "" {
		out.CategoryID = &catID
	}
	if subID != "" {
		out.SubcategoryID = &subID
	}

	deadline, err := ParseDeadline(in.Deadline)
	if err != nil {
		return model.NewTodo{}, err
	}
	out.Deadline = deadline
	return out, nil
}

// ParseDeadline parses a YYYY-MM-DD date. Blank input means no deadline.
func ParseDeadline(s string) (*civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &d, nil
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	_, err := ParseDeadline(s)
	return err
}
