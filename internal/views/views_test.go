package views

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"

	"github.com/nhle/tasknest/internal/model"
)

func ptr[T any](v T) *T { return &v }

func ids(todos []model.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.ID
	}
	return out
}

func TestSort_PriorityIsStable(t *testing.T) {
	todos := []model.Todo{
		{ID: "1", Priority: model.PriorityLow},
		{ID: "2", Priority: model.PriorityHigh},
		{ID: "3", Priority: model.PriorityHigh},
	}
	assert.Equal(t, []string{"2", "3", "1"}, ids(Sort(todos, model.SortByPriority)))
	assert.Equal(t, []string{"1", "2", "3"}, ids(todos), "input must not be reordered")
}

func TestSort_DeadlineNullsLast(t *testing.T) {
	todos := []model.Todo{
		{ID: "1"},
		{ID: "2", Deadline: ptr(civil.Date{Year: 2024, Month: time.January, Day: 1})},
	}
	assert.Equal(t, []string{"2", "1"}, ids(Sort(todos, model.SortByDeadline)))
}

func TestSort_DeadlineAscendingWithTies(t *testing.T) {
	d := func(day int) *civil.Date {
		return ptr(civil.Date{Year: 2024, Month: time.May, Day: day})
	}
	todos := []model.Todo{
		{ID: "a", Deadline: d(10)},
		{ID: "b"},
		{ID: "c", Deadline: d(3)},
		{ID: "d", Deadline: d(10)},
		{ID: "e"},
	}
	assert.Equal(t, []string{"c", "a", "d", "b", "e"}, ids(Sort(todos, model.SortByDeadline)))
}

func TestSort_CreatedAtNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	todos := []model.Todo{
		{ID: "old", CreatedAt: base},
		{ID: "new", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "mid", CreatedAt: base.Add(time.Hour)},
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids(Sort(todos, model.SortByCreatedAt)))
	assert.Equal(t, []string{"new", "mid", "old"}, ids(Sort(todos, "")))
}

func TestFilter_SubcategoryIsExclusive(t *testing.T) {
	todos := []model.Todo{
		{ID: "1", CategoryID: ptr("work"), SubcategoryID: ptr("code")},
		{ID: "2", CategoryID: ptr("work"), SubcategoryID: ptr("video")},
		{ID: "3", CategoryID: ptr("work")},
		{ID: "4", CategoryID: ptr("study"), SubcategoryID: ptr("code")},
		{ID: "5"},
	}

	got := Filter(todos, model.ForSubcategory("work", "code"))
	assert.Equal(t, []string{"1", "4"}, ids(got))
	for _, td := range got {
		assert.Equal(t, "code", *td.SubcategoryID)
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids(Filter(todos, model.ForCategory("work"))))
	assert.Len(t, Filter(todos, model.AllTodos()), len(todos))
}

func TestSplitAndActiveSorted(t *testing.T) {
	todos := []model.Todo{
		{ID: "1", Priority: model.PriorityLow},
		{ID: "2", IsCompleted: true, Priority: model.PriorityHigh},
		{ID: "3", Priority: model.PriorityHigh},
	}
	active, completed := Split(todos)
	assert.Equal(t, []string{"1", "3"}, ids(active))
	assert.Equal(t, []string{"2"}, ids(completed))
	assert.Equal(t, []string{"3", "1"}, ids(ActiveSorted(todos, model.SortByPriority)))
}

func TestActiveCounts(t *testing.T) {
	todos := []model.Todo{
		{ID: "1", CategoryID: ptr("work"), SubcategoryID: ptr("code")},
		{ID: "2", CategoryID: ptr("work")},
		{ID: "3", CategoryID: ptr("work"), IsCompleted: true},
		{ID: "4"},
	}
	assert.Equal(t, map[string]int{"all": 3, "work": 2, "code": 1}, ActiveCounts(todos))
	assert.Equal(t, map[string]int{"all": 0}, ActiveCounts(nil))
}

func TestGroupByDeadline(t *testing.T) {
	day := civil.Date{Year: 2024, Month: time.March, Day: 8}
	todos := []model.Todo{
		{ID: "1", Deadline: &day},
		{ID: "2"},
		{ID: "3", Deadline: &day},
	}
	groups := GroupByDeadline(todos)
	assert.Len(t, groups, 1)
	assert.Equal(t, []string{"1", "3"}, ids(groups[day]))
}

func TestCalendarMonth(t *testing.T) {
	due := civil.Date{Year: 2024, Month: time.February, Day: 29}
	other := civil.Date{Year: 2024, Month: time.March, Day: 1}
	todos := []model.Todo{{ID: "leap", Deadline: &due}, {ID: "march", Deadline: &other}}

	m := CalendarMonth(todos, 2024, time.February)
	assert.Len(t, m.Days, 29)
	// 1 February 2024 is a Thursday.
	assert.Equal(t, 3, m.Offset)
	assert.Equal(t, []string{"leap"}, ids(m.Days[28].Todos))
	assert.Empty(t, m.Days[0].Todos)

	weeks := m.Weeks()
	assert.Len(t, weeks, 5)
	assert.Nil(t, weeks[0][0])
	assert.Equal(t, 1, weeks[0][3].Date.Day)
	assert.Equal(t, 29, weeks[4][3].Date.Day)
	assert.Nil(t, weeks[4][4])
}

func TestOverdue(t *testing.T) {
	today := civil.Date{Year: 2024, Month: time.June, Day: 10}
	todos := []model.Todo{
		{ID: "late", Deadline: ptr(today.AddDays(-1))},
		{ID: "later", Deadline: ptr(today.AddDays(-5))},
		{ID: "today", Deadline: &today},
		{ID: "done", Deadline: ptr(today.AddDays(-3)), IsCompleted: true},
		{ID: "none"},
	}
	assert.Equal(t, []string{"later", "late"}, ids(Overdue(todos, today)))
}
