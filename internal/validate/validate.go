// Package validate checks todo inputs and patches before they are sent to
// the store. All failures are returned as apperrors validation errors.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/model"
)

// Validator wraps a configured validator.Validate.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterStructValidation(newTodoStructLevel, model.NewTodo{})
	v.RegisterStructValidation(todoPatchStructLevel, model.TodoPatch{})
	return &Validator{v: v}
}

// NewTodo validates a create input.
func (val *Validator) NewTodo(in model.NewTodo) error {
	if err := val.v.Struct(in); err != nil {
		return translate(err, apperrors.ErrInvalidInput)
	}
	return nil
}

// Patch validates a partial update.
func (val *Validator) Patch(p model.TodoPatch) error {
	if err := val.v.Struct(p); err != nil {
		return translate(err, apperrors.ErrInvalidPatch)
	}
	return nil
}

// Email validates an email address used for sign-in.
func (val *Validator) Email(email string) error {
	if err := val.v.Var(strings.TrimSpace(email), "required,email"); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidEmail, err)
	}
	return nil
}

func newTodoStructLevel(sl validator.StructLevel) {
	in := sl.Current().Interface().(model.NewTodo)
	if in.SubcategoryID != nil && in.CategoryID == nil {
		sl.ReportError(in.SubcategoryID, "SubcategoryID", "subcategory_id", "orphan", "")
	}
	if in.Deadline != nil && !in.Deadline.IsValid() {
		sl.ReportError(in.Deadline, "Deadline", "deadline", "date", "")
	}
}

func todoPatchStructLevel(sl validator.StructLevel) {
	p := sl.Current().Interface().(model.TodoPatch)

	// The completion flag and its timestamp always travel together.
	if p.IsCompleted != nil {
		if !p.CompletedAt.Set || (p.CompletedAt.Value != nil) != *p.IsCompleted {
			sl.ReportError(p.CompletedAt, "CompletedAt", "completed_at", "paired", "")
		}
	} else if p.CompletedAt.Set {
		sl.ReportError(p.CompletedAt, "CompletedAt", "completed_at", "paired", "")
	}

	if p.SubcategoryID.Set && p.SubcategoryID.Value != nil &&
		p.CategoryID.Set && p.CategoryID.Value == nil {
		sl.ReportError(p.SubcategoryID, "SubcategoryID", "subcategory_id", "orphan", "")
	}
	if p.CategoryID.Set && p.CategoryID.Value != nil && strings.TrimSpace(*p.CategoryID.Value) == "" {
		sl.ReportError(p.CategoryID, "CategoryID", "category_id", "notblank", "")
	}
	if p.Deadline.Set && p.Deadline.Value != nil && !p.Deadline.Value.IsValid() {
		sl.ReportError(p.Deadline, "Deadline", "deadline", "date", "")
	}
}

// translate maps the first field error onto the most specific sentinel.
func translate(err error, fallback *apperrors.Error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Wrap(fallback, err)
	}

	fe := verrs[0]
	switch {
	case fe.Field() == "Title" && fe.Tag() == "notblank":
		return apperrors.Wrap(apperrors.ErrEmptyTitle, err)
	case fe.Field() == "CategoryID":
		return apperrors.Wrap(apperrors.ErrCategoryRequired, err)
	case fe.Field() == "Priority":
		return apperrors.Wrap(apperrors.ErrInvalidPriority, err)
	case fe.Tag() == "orphan":
		return apperrors.Wrap(apperrors.ErrSubcategoryOrphan, err)
	}
	return apperrors.Wrap(
		apperrors.WithMessage(fallback, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag())),
		err,
	)
}
