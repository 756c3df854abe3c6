// Package views derives the list, calendar and statistics projections from
// a todo collection. Every function is pure; inputs are never modified.
package views

import (
	"slices"

	"github.com/nhle/tasknest/internal/model"
)

// CountAll is the ActiveCounts key for the unfiltered total.
const CountAll = "all"

// Filter returns the todos inside f. A subcategory filter matches only that
// subcategory, whatever the category.
func Filter(todos []model.Todo, f model.CategoryFilter) []model.Todo {
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Sort returns a sorted copy of todos. Ties keep their input order.
//
//   - priority: high, medium, low
//   - deadline: earliest first, todos without a deadline last
//   - created_at: newest first
func Sort(todos []model.Todo, opt model.SortOption) []model.Todo {
	out := slices.Clone(todos)
	if out == nil {
		out = []model.Todo{}
	}

	switch opt {
	case model.SortByPriority:
		slices.SortStableFunc(out, func(a, b model.Todo) int {
			return a.Priority.Rank() - b.Priority.Rank()
		})
	case model.SortByDeadline:
		slices.SortStableFunc(out, compareDeadline)
	default:
		slices.SortStableFunc(out, func(a, b model.Todo) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return out
}

func compareDeadline(a, b model.Todo) int {
	switch {
	case a.Deadline == nil && b.Deadline == nil:
		return 0
	case a.Deadline == nil:
		return 1
	case b.Deadline == nil:
		return -1
	case a.Deadline.Before(*b.Deadline):
		return -1
	case b.Deadline.Before(*a.Deadline):
		return 1
	}
	return 0
}

// Split separates incomplete from completed todos, keeping input order.
func Split(todos []model.Todo) (active, completed []model.Todo) {
	active = []model.Todo{}
	completed = []model.Todo{}
	for _, t := range todos {
		if t.IsCompleted {
			completed = append(completed, t)
		} else {
			active = append(active, t)
		}
	}
	return active, completed
}

// ActiveSorted returns the incomplete todos ordered by opt.
func ActiveSorted(todos []model.Todo, opt model.SortOption) []model.Todo {
	active, _ := Split(todos)
	return Sort(active, opt)
}

// ActiveCounts maps CountAll and every referenced category and subcategory
// id to its number of incomplete todos. A todo with both ids counts toward
// each of them.
func ActiveCounts(todos []model.Todo) map[string]int {
	counts := map[string]int{CountAll: 0}
	for _, t := range todos {
		if t.IsCompleted {
			continue
		}
		counts[CountAll]++
		if t.CategoryID != nil {
			counts[*t.CategoryID]++
		}
		if t.SubcategoryID != nil {
			counts[*t.SubcategoryID]++
		}
	}
	return counts
}
