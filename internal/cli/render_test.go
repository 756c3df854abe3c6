package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/views"
)

func ptr[T any](v T) *T { return &v }

var testCategories = []model.Category{
	{ID: "cat-work", Name: "Work", Icon: "W", Subcategories: []model.Subcategory{
		{ID: "sub-code", CategoryID: "cat-work", Name: "Code"},
	}},
	{ID: "cat-home", Name: "Home", Subcategories: []model.Subcategory{}},
}

func TestRenderCalendar_MondayFirstGrid(t *testing.T) {
	todos := []model.Todo{
		{ID: "1", Title: "Ship it", Deadline: &civil.Date{Year: 2024, Month: 6, Day: 3}},
	}
	var buf bytes.Buffer
	RenderCalendar(&buf, views.CalendarMonth(todos, 2024, time.June), civil.Date{Year: 2024, Month: 6, Day: 20})

	out := buf.String()
	assert.Contains(t, out, "June 2024")
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 3)
	// June 1st 2024 is a Saturday: five empty cells precede it.
	assert.Equal(t, strings.Repeat(" ", 20)+"  1   2", lines[2])
	assert.Contains(t, lines[3], "3*")
	assert.Contains(t, out, "2024-06-03\n  - Ship it")
}

func TestRenderStats(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	done := now.Add(-time.Hour)
	todos := []model.Todo{
		{ID: "1", CategoryID: ptr("cat-work"), IsCompleted: true, CompletedAt: &done, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "2", CategoryID: ptr("cat-work"), CreatedAt: now.Add(-2 * time.Hour)},
	}

	var buf bytes.Buffer
	RenderStats(&buf, views.Stats(todos, testCategories, views.PeriodDay, now, false))

	out := buf.String()
	assert.Contains(t, out, "Completion rate: 50%")
	assert.Contains(t, out, "11:00")
	assert.Contains(t, out, "Work  1/2")
}

func TestRenderBoard_HidesCompletedByDefault(t *testing.T) {
	b := views.Board{
		Active:    []model.Todo{{ID: "aaaaaaaa-1", Title: "Open", Priority: model.PriorityLow, CategoryID: ptr("cat-work"), SubcategoryID: ptr("sub-code")}},
		Completed: []model.Todo{{ID: "bbbbbbbb-2", Title: "Done", IsCompleted: true}},
	}

	var buf bytes.Buffer
	RenderBoard(&buf, b, testCategories, model.SortByPriority, civil.Date{Year: 2024, Month: 6, Day: 1}, false, false)
	out := buf.String()
	assert.Contains(t, out, "sort: priority")
	assert.Contains(t, out, "aaaaaaaa")
	assert.Contains(t, out, "#Work/Code")
	assert.NotContains(t, out, "Done")
	assert.Contains(t, out, "1 completed")
}

func TestRenderUser(t *testing.T) {
	var buf bytes.Buffer
	RenderUser(&buf, &model.User{Email: "a@example.com"})
	assert.Equal(t, "signed in as a@example.com\n", buf.String())
}

func TestResolveTodo(t *testing.T) {
	todos := []model.Todo{{ID: "abc123"}, {ID: "abd456"}}

	got, err := resolveTodo(todos, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.ID)

	_, err = resolveTodo(todos, "ab")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = resolveTodo(todos, "x")
	assert.ErrorIs(t, err, apperrors.ErrTodoNotFound)
}

func TestResolveScope(t *testing.T) {
	f, err := resolveScope(testCategories, "", "")
	require.NoError(t, err)
	assert.True(t, f.IsAll())

	f, err = resolveScope(testCategories, "work", "code")
	require.NoError(t, err)
	assert.True(t, f.Equal(model.ForSubcategory("cat-work", "sub-code")))

	_, err = resolveScope(testCategories, "", "code")
	assert.ErrorIs(t, err, apperrors.ErrSubcategoryOrphan)

	_, err = resolveScope(testCategories, "home", "code")
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}
