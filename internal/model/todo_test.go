package model

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriority_Rank(t *testing.T) {
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.False(t, Priority("urgent").Valid())
	assert.True(t, PriorityLow.Valid())
}

func TestTodo_IsOverdue(t *testing.T) {
	today := civil.Date{Year: 2024, Month: time.March, Day: 10}
	yesterday := today.AddDays(-1)

	assert.True(t, Todo{Deadline: &yesterday}.IsOverdue(today))
	assert.False(t, Todo{Deadline: &today}.IsOverdue(today))
	assert.False(t, Todo{Deadline: &yesterday, IsCompleted: true}.IsOverdue(today))
	assert.False(t, Todo{}.IsOverdue(today))
}

func TestCategoryFilter(t *testing.T) {
	cat, sub := "work", "code"
	inSub := Todo{CategoryID: &cat, SubcategoryID: &sub}
	inCat := Todo{CategoryID: &cat}

	assert.True(t, AllTodos().IsAll())
	assert.True(t, AllTodos().Match(Todo{}))
	assert.True(t, ForCategory(cat).Match(inSub))
	assert.True(t, ForCategory(cat).Match(inCat))
	assert.True(t, ForSubcategory("other", sub).Match(inSub), "subcategory wins over category")
	assert.False(t, ForSubcategory(cat, sub).Match(inCat))

	assert.True(t, ForCategory(cat).Equal(ForCategory("work")))
	assert.False(t, ForCategory(cat).Equal(ForSubcategory(cat, sub)))
}

func TestParseSortOption(t *testing.T) {
	got, err := ParseSortOption("")
	require.NoError(t, err)
	assert.Equal(t, SortByCreatedAt, got)

	got, err = ParseSortOption("deadline")
	require.NoError(t, err)
	assert.Equal(t, SortByDeadline, got)

	_, err = ParseSortOption("title")
	assert.Error(t, err)
}

func TestDefaultCategories(t *testing.T) {
	require.Len(t, DefaultCategories, 6)
	subs := 0
	for i, c := range DefaultCategories {
		assert.Equal(t, i, c.SortOrder)
		assert.LessOrEqual(t, len(c.Subcategories), 3)
		subs += len(c.Subcategories)
	}
	assert.Equal(t, 9, subs)
}
