package model

import "fmt"

// CategoryFilter scopes which todos are loaded. A set SubcategoryID takes
// precedence over CategoryID; neither set means all todos.
type CategoryFilter struct {
	CategoryID    *string `json:"category_id"`
	SubcategoryID *string `json:"subcategory_id"`
}

// IsAll reports whether the filter matches every todo.
func (f CategoryFilter) IsAll() bool {
	return f.CategoryID == nil && f.SubcategoryID == nil
}

// Equal reports whether two filters select the same scope.
func (f CategoryFilter) Equal(o CategoryFilter) bool {
	return eqPtr(f.CategoryID, o.CategoryID) && eqPtr(f.SubcategoryID, o.SubcategoryID)
}

// Match reports whether t falls inside the filter scope.
func (f CategoryFilter) Match(t Todo) bool {
	switch {
	case f.SubcategoryID != nil:
		return t.InSubcategory(*f.SubcategoryID)
	case f.CategoryID != nil:
		return t.InCategory(*f.CategoryID)
	default:
		return true
	}
}

// AllTodos is the unfiltered scope.
func AllTodos() CategoryFilter { return CategoryFilter{} }

// ForCategory scopes to one category, including all of its subcategories.
func ForCategory(id string) CategoryFilter {
	return CategoryFilter{CategoryID: &id}
}

// ForSubcategory scopes to one subcategory of a category.
func ForSubcategory(categoryID, subcategoryID string) CategoryFilter {
	return CategoryFilter{CategoryID: &categoryID, SubcategoryID: &subcategoryID}
}

func eqPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SortOption selects the ordering of the active todo list.
type SortOption string

const (
	SortByCreatedAt SortOption = "created_at"
	SortByPriority  SortOption = "priority"
	SortByDeadline  SortOption = "deadline"
)

// Valid reports whether s is a known sort option.
func (s SortOption) Valid() bool {
	switch s {
	case SortByCreatedAt, SortByPriority, SortByDeadline:
		return true
	}
	return false
}

// ParseSortOption converts a user-supplied string into a SortOption.
// An empty string yields the default (created_at).
func ParseSortOption(s string) (SortOption, error) {
	if s == "" {
		return SortByCreatedAt, nil
	}
	opt := SortOption(s)
	if !opt.Valid() {
		return "", fmt.Errorf("unknown sort option %q", s)
	}
	return opt, nil
}
