package views

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/model"
)

// Period selects the statistics range.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod converts user input into a Period. Empty input means week.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodWeek, nil
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	}
	return "", apperrors.WithMessage(apperrors.ErrInvalidStatsPeriod,
		fmt.Sprintf("unknown period %q: want day, week or month", s))
}

// Range is an inclusive time interval.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// PeriodRange returns the range of p ending with the last instant of the
// day containing now, in now's location.
func PeriodRange(p Period, now time.Time) Range {
	y, m, d := now.Date()
	loc := now.Location()
	end := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)

	days := 0
	switch p {
	case PeriodWeek:
		days = 6
	case PeriodMonth:
		days = 29
	}
	start := time.Date(y, m, d-days, 0, 0, 0, 0, loc)
	return Range{Start: start, End: end}
}

// Bucket is one point of the completion series.
type Bucket struct {
	Label     string
	Completed int
}

// CategoryStat summarizes one category within the range.
type CategoryStat struct {
	ID        string
	Name      string
	Icon      string
	Color     string
	Completed int
	Total     int
}

// StatsReport is the statistics view for one period.
type StatsReport struct {
	Period    Period
	Range     Range
	Completed int
	Created   int
	// CompletionRate is the rounded percentage of todos created in the
	// range that are completed.
	CompletionRate int
	Series         []Bucket
	Categories     []CategoryStat
}

// Stats aggregates todos over the period ending today. Category colors are
// taken for the dark theme when dark is set.
func Stats(todos []model.Todo, categories []model.Category, p Period, now time.Time, dark bool) StatsReport {
	r := PeriodRange(p, now)
	loc := now.Location()

	var completed, created []model.Todo
	for _, t := range todos {
		if t.CompletedAt != nil && r.Contains(*t.CompletedAt) {
			completed = append(completed, t)
		}
		if r.Contains(t.CreatedAt) {
			created = append(created, t)
		}
	}

	report := StatsReport{
		Period:    p,
		Range:     r,
		Completed: len(completed),
		Created:   len(created),
		Series:    series(completed, p, r, loc),
	}

	if len(created) > 0 {
		done := 0
		for _, t := range created {
			if t.IsCompleted {
				done++
			}
		}
		report.CompletionRate = int(math.Round(float64(done) / float64(len(created)) * 100))
	}

	report.Categories = categoryStats(categories, completed, created, dark)
	return report
}

func series(completed []model.Todo, p Period, r Range, loc *time.Location) []Bucket {
	if p == PeriodDay {
		buckets := make([]Bucket, 24)
		for h := range buckets {
			buckets[h].Label = fmt.Sprintf("%d:00", h)
		}
		for _, t := range completed {
			buckets[t.CompletedAt.In(loc).Hour()].Completed++
		}
		return buckets
	}

	days := 7
	if p == PeriodMonth {
		days = 30
	}
	buckets := make([]Bucket, days)
	index := make(map[string]int, days)
	for i := range buckets {
		d := r.Start.AddDate(0, 0, i)
		buckets[i].Label = fmt.Sprintf("%d.%02d", d.Day(), int(d.Month()))
		index[d.Format(time.DateOnly)] = i
	}
	for _, t := range completed {
		if i, ok := index[t.CompletedAt.In(loc).Format(time.DateOnly)]; ok {
			buckets[i].Completed++
		}
	}
	return buckets
}

func categoryStats(categories []model.Category, completed, created []model.Todo, dark bool) []CategoryStat {
	stats := []CategoryStat{}
	for _, c := range categories {
		total := countIn(created, c.ID)
		done := countIn(completed, c.ID)
		if total == 0 && done == 0 {
			continue
		}
		stats = append(stats, CategoryStat{
			ID:        c.ID,
			Name:      c.Name,
			Icon:      c.Icon,
			Color:     c.Color(dark),
			Completed: done,
			Total:     total,
		})
	}
	slices.SortStableFunc(stats, func(a, b CategoryStat) int {
		return b.Completed - a.Completed
	})
	return stats
}

func countIn(todos []model.Todo, categoryID string) int {
	n := 0
	for _, t := range todos {
		if t.InCategory(categoryID) {
			n++
		}
	}
	return n
}
