package model

import (
	"time"

	"cloud.google.com/go/civil"
)

// Priority is the urgency level of a todo.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the sort rank of the priority (lower = more urgent).
// Unknown values rank after low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() < 3
}

// Todo is a single task owned by one user.
//
// CompletedAt is non-nil exactly when IsCompleted is true. SortOrder is the
// manual position among the user's todos and is renumbered densely on reorder.
type Todo struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	CategoryID    *string     `json:"category_id"`
	SubcategoryID *string     `json:"subcategory_id"`
	Title         string      `json:"title"`
	Description   *string     `json:"description"`
	Priority      Priority    `json:"priority"`
	IsCompleted   bool        `json:"is_completed"`
	CompletedAt   *time.Time  `json:"completed_at"`
	Deadline      *civil.Date `json:"deadline"`
	SortOrder     int         `json:"sort_order"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// IsOverdue reports whether the todo is still open and its deadline lies
// strictly before today.
func (t Todo) IsOverdue(today civil.Date) bool {
	if t.Deadline == nil || t.IsCompleted {
		return false
	}
	return t.Deadline.Before(today)
}

// InCategory reports whether the todo references the given category id.
func (t Todo) InCategory(id string) bool {
	return t.CategoryID != nil && *t.CategoryID == id
}

// InSubcategory reports whether the todo references the given subcategory id.
func (t Todo) InSubcategory(id string) bool {
	return t.SubcategoryID != nil && *t.SubcategoryID == id
}

// NewTodo is the input for creating a todo. The store assigns the id,
// owner, sort order and timestamps.
type NewTodo struct {
	Title         string      `json:"title" validate:"notblank,max=500"`
	Description   *string     `json:"description,omitempty" validate:"omitnil,max=5000"`
	CategoryID    *string     `json:"category_id" validate:"required,notblank"`
	SubcategoryID *string     `json:"subcategory_id,omitempty" validate:"omitnil,notblank"`
	Priority      Priority    `json:"priority" validate:"required,oneof=high medium low"`
	Deadline      *civil.Date `json:"deadline,omitempty"`
}
