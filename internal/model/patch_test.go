package model

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestTodoPatch_Apply(t *testing.T) {
	desc := "old"
	cat := "work"
	deadline := civil.Date{Year: 2024, Month: time.May, Day: 1}
	todo := Todo{
		Title:       "title",
		Description: &desc,
		CategoryID:  &cat,
		Priority:    PriorityLow,
		Deadline:    &deadline,
		SortOrder:   4,
	}

	title := "new title"
	order := 1
	TodoPatch{
		Title:       &title,
		Description: Null[string](),
		SortOrder:   &order,
	}.Apply(&todo)

	assert.Equal(t, "new title", todo.Title)
	assert.Nil(t, todo.Description)
	assert.Equal(t, "work", *todo.CategoryID, "unset fields are untouched")
	assert.Equal(t, PriorityLow, todo.Priority)
	assert.Equal(t, deadline, *todo.Deadline)
	assert.Equal(t, 1, todo.SortOrder)
}

func TestTodoPatch_ApplyCopiesValues(t *testing.T) {
	p := TodoPatch{CategoryID: Some("a")}
	var todo Todo
	p.Apply(&todo)
	*p.CategoryID.Value = "b"
	assert.Equal(t, "a", *todo.CategoryID)
}

func TestCompletionPatch(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	todo := Todo{}

	CompletionPatch(true, now).Apply(&todo)
	assert.True(t, todo.IsCompleted)
	assert.Equal(t, now, *todo.CompletedAt)

	CompletionPatch(false, now).Apply(&todo)
	assert.False(t, todo.IsCompleted)
	assert.Nil(t, todo.CompletedAt)
}

func TestTodoPatch_IsEmpty(t *testing.T) {
	assert.True(t, TodoPatch{}.IsEmpty())
	assert.False(t, TodoPatch{Deadline: Null[civil.Date]()}.IsEmpty())
	assert.False(t, CompletionPatch(true, time.Now()).IsEmpty())
}

func TestOptFrom(t *testing.T) {
	assert.Equal(t, Null[string](), OptFrom[string](nil))
	v := "x"
	o := OptFrom(&v)
	assert.True(t, o.Set)
	assert.Equal(t, "x", *o.Value)
}
