package model

import (
	"time"

	"cloud.google.com/go/civil"
)

// Opt is a patch field for a nullable column. Set marks the field as part of
// the patch; a nil Value clears the column.
type Opt[T any] struct {
	Set   bool
	Value *T
}

// Some returns a patch field that sets the column to v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Set: true, Value: &v}
}

// Null returns a patch field that clears the column.
func Null[T any]() Opt[T] {
	return Opt[T]{Set: true}
}

// OptFrom returns Some(*v) when v is non-nil and Null otherwise.
func OptFrom[T any](v *T) Opt[T] {
	if v == nil {
		return Null[T]()
	}
	return Some(*v)
}

func (o Opt[T]) applyTo(dst **T) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*dst = nil
		return
	}
	v := *o.Value
	*dst = &v
}

// TodoPatch lists the fields of a Todo that may change after creation.
// Nil pointers and unset Opt fields are left untouched.
type TodoPatch struct {
	Title         *string         `validate:"omitnil,notblank,max=500"`
	Description   Opt[string]     `validate:"-"`
	CategoryID    Opt[string]     `validate:"-"`
	SubcategoryID Opt[string]     `validate:"-"`
	Priority      *Priority       `validate:"omitnil,oneof=high medium low"`
	IsCompleted   *bool           `validate:"-"`
	CompletedAt   Opt[time.Time]  `validate:"-"`
	Deadline      Opt[civil.Date] `validate:"-"`
	SortOrder     *int            `validate:"omitnil,min=0"`
	UpdatedAt     *time.Time      `validate:"-"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && !p.Description.Set && !p.CategoryID.Set &&
		!p.SubcategoryID.Set && p.Priority == nil && p.IsCompleted == nil &&
		!p.CompletedAt.Set && !p.Deadline.Set && p.SortOrder == nil &&
		p.UpdatedAt == nil
}

// Apply merges the patch into t.
func (p TodoPatch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	p.Description.applyTo(&t.Description)
	p.CategoryID.applyTo(&t.CategoryID)
	p.SubcategoryID.applyTo(&t.SubcategoryID)
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	p.CompletedAt.applyTo(&t.CompletedAt)
	p.Deadline.applyTo(&t.Deadline)
	if p.SortOrder != nil {
		t.SortOrder = *p.SortOrder
	}
	if p.UpdatedAt != nil {
		t.UpdatedAt = *p.UpdatedAt
	}
}

// CompletionPatch returns the patch that moves a todo into the given
// completion state, pairing CompletedAt with the flag.
func CompletionPatch(completed bool, now time.Time) TodoPatch {
	p := TodoPatch{IsCompleted: &completed}
	if completed {
		p.CompletedAt = Some(now)
	} else {
		p.CompletedAt = Null[time.Time]()
	}
	return p
}
