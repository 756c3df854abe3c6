package views

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/nhle/tasknest/internal/model"
)

// GroupByDeadline buckets todos by deadline date. Todos without a deadline
// are left out.
func GroupByDeadline(todos []model.Todo) map[civil.Date][]model.Todo {
	groups := make(map[civil.Date][]model.Todo)
	for _, t := range todos {
		if t.Deadline == nil {
			continue
		}
		groups[*t.Deadline] = append(groups[*t.Deadline], t)
	}
	return groups
}

// Day is one cell of a month grid.
type Day struct {
	Date  civil.Date
	Todos []model.Todo
}

// Month is a calendar page. Weeks start on Monday; Offset is the number of
// empty cells before the first day.
type Month struct {
	Year   int
	Month  time.Month
	Offset int
	Days   []Day
}

// CalendarMonth lays out the todos due in the given month.
func CalendarMonth(todos []model.Todo, year int, month time.Month) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysIn := first.AddDate(0, 1, -1).Day()
	groups := GroupByDeadline(todos)

	m := Month{
		Year:   year,
		Month:  month,
		Offset: (int(first.Weekday()) + 6) % 7,
		Days:   make([]Day, daysIn),
	}
	for i := range m.Days {
		d := civil.Date{Year: year, Month: month, Day: i + 1}
		m.Days[i] = Day{Date: d, Todos: groups[d]}
	}
	return m
}

// Weeks returns the grid rows, padding with nil cells before the first day
// and after the last one.
func (m Month) Weeks() [][]*Day {
	cells := make([]*Day, m.Offset, m.Offset+len(m.Days)+6)
	for i := range m.Days {
		cells = append(cells, &m.Days[i])
	}
	for len(cells)%7 != 0 {
		cells = append(cells, nil)
	}

	weeks := make([][]*Day, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// Overdue returns the incomplete todos whose deadline is before today,
// earliest deadline first.
func Overdue(todos []model.Todo, today civil.Date) []model.Todo {
	out := []model.Todo{}
	for _, t := range todos {
		if t.IsOverdue(today) {
			out = append(out, t)
		}
	}
	return Sort(out, model.SortByDeadline)
}
