package cli

import (
	"fmt"
	"strings"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/model"
)

// resolveTodo finds the todo whose id equals ref or starts with it.
func resolveTodo(todos []model.Todo, ref string) (model.Todo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Todo{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "todo id is required")
	}

	var matches []model.Todo
	for _, t := range todos {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return model.Todo{}, apperrors.WithMessage(apperrors.ErrTodoNotFound, fmt.Sprintf("no todo matches %q", ref))
	case 1:
		return matches[0], nil
	default:
		return model.Todo{}, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("%q matches %d todos, use a longer id", ref, len(matches)))
	}
}

// resolveCategory finds a category by case-insensitive name or id prefix.
func resolveCategory(categories []model.Category, ref string) (model.Category, error) {
	for _, c := range categories {
		if strings.EqualFold(c.Name, ref) || c.ID == ref {
			return c, nil
		}
	}
	for _, c := range categories {
		if strings.HasPrefix(c.ID, ref) {
			return c, nil
		}
	}
	return model.Category{}, apperrors.WithMessage(apperrors.ErrCategoryNotFound, fmt.Sprintf("no category matches %q", ref))
}

// resolveSubcategory finds a subcategory of c by name or id prefix.
func resolveSubcategory(c model.Category, ref string) (model.Subcategory, error) {
	for _, s := range c.Subcategories {
		if strings.EqualFold(s.Name, ref) || strings.HasPrefix(s.ID, ref) {
			return s, nil
		}
	}
	return model.Subcategory{}, apperrors.WithMessage(apperrors.ErrCategoryNotFound,
		fmt.Sprintf("%s has no subcategory matching %q", c.Name, ref))
}

// resolveScope turns --category/--subcategory flags into a filter.
func resolveScope(categories []model.Category, category, subcategory string) (model.CategoryFilter, error) {
	if category == "" {
		if subcategory != "" {
			return model.CategoryFilter{}, apperrors.ErrSubcategoryOrphan
		}
		return model.AllTodos(), nil
	}

	c, err := resolveCategory(categories, category)
	if err != nil {
		return model.CategoryFilter{}, err
	}
	if subcategory == "" {
		return model.ForCategory(c.ID), nil
	}
	sub, err := resolveSubcategory(c, subcategory)
	if err != nil {
		return model.CategoryFilter{}, err
	}
	return model.ForSubcategory(c.ID, sub.ID), nil
}
