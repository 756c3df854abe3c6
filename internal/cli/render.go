package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/theme"
	"github.com/nhle/tasknest/internal/views"
)

const shortIDLen = 8

var todayStyle = lipgloss.NewStyle().Reverse(true)

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// categoryIndex maps category and subcategory ids to their display names.
type categoryIndex struct {
	cats map[string]model.Category
	subs map[string]model.Subcategory
}

func indexCategories(categories []model.Category) categoryIndex {
	idx := categoryIndex{
		cats: make(map[string]model.Category, len(categories)),
		subs: make(map[string]model.Subcategory),
	}
	for _, c := range categories {
		idx.cats[c.ID] = c
		for _, s := range c.Subcategories {
			idx.subs[s.ID] = s
		}
	}
	return idx
}

func (idx categoryIndex) label(t model.Todo, dark bool) string {
	if t.CategoryID == nil {
		return ""
	}
	c, ok := idx.cats[*t.CategoryID]
	if !ok {
		return ""
	}
	name := c.Name
	if t.SubcategoryID != nil {
		if s, ok := idx.subs[*t.SubcategoryID]; ok {
			name += "/" + s.Name
		}
	}
	return theme.CategoryStyle(c, dark).Render("#" + name)
}

func renderTodo(t model.Todo, idx categoryIndex, today civil.Date, dark bool) string {
	check := "[ ]"
	title := t.Title
	if t.IsCompleted {
		check = "[x]"
		title = theme.CompletedStyle.Render(title)
	}

	parts := []string{
		theme.HelpStyle.Render(shortID(t.ID)),
		check,
		theme.PriorityStyle(t.Priority).Render(theme.PriorityLabel(t.Priority)),
		title,
	}
	if l := idx.label(t, dark); l != "" {
		parts = append(parts, l)
	}
	if t.Deadline != nil {
		due := "due " + t.Deadline.String()
		if t.IsOverdue(today) {
			due = theme.OverdueStyle.Render(due + " (overdue)")
		}
		parts = append(parts, due)
	}
	return strings.Join(parts, " ")
}

// RenderBoard writes the active todos, and the completed ones when
// showCompleted is set.
func RenderBoard(w io.Writer, b views.Board, categories []model.Category, sortBy model.SortOption, today civil.Date, showCompleted, dark bool) {
	idx := indexCategories(categories)

	fmt.Fprintln(w, theme.HeaderStyle.Render(fmt.Sprintf("Active (%d) · sort: %s", len(b.Active), sortBy)))
	if len(b.Active) == 0 {
		fmt.Fprintln(w, theme.HelpStyle.Render("  nothing to do"))
	}
	for _, t := range b.Active {
		fmt.Fprintln(w, "  "+renderTodo(t, idx, today, dark))
	}

	if !showCompleted {
		if n := len(b.Completed); n > 0 {
			fmt.Fprintln(w, theme.HelpStyle.Render(fmt.Sprintf("  %d completed (use --completed to show)", n)))
		}
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.HeaderStyle.Render(fmt.Sprintf("Completed (%d)", len(b.Completed))))
	for _, t := range b.Completed {
		fmt.Fprintln(w, "  "+renderTodo(t, idx, today, dark))
	}
}

// RenderCategories writes the category tree with active counts.
func RenderCategories(w io.Writer, categories []model.Category, counts map[string]int, dark bool) {
	fmt.Fprintf(w, "All (%d)\n", counts[views.CountAll])
	for _, c := range categories {
		fmt.Fprintf(w, "%s %s (%d)  %s\n",
			c.Icon, theme.CategoryStyle(c, dark).Render(c.Name), counts[c.ID],
			theme.HelpStyle.Render(shortID(c.ID)))
		for _, s := range c.Subcategories {
			fmt.Fprintf(w, "    %s %s  %s\n", s.Icon, s.Name, theme.HelpStyle.Render(shortID(s.ID)))
		}
	}
}

// RenderStats writes a statistics report with a bar per series bucket.
func RenderStats(w io.Writer, r views.StatsReport) {
	fmt.Fprintln(w, theme.HeaderStyle.Render(fmt.Sprintf("Stats · %s", r.Period)))
	fmt.Fprintf(w, "%s – %s\n",
		r.Range.Start.Format("2006-01-02 15:04"), r.Range.End.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Completed: %d  Created: %d  Completion rate: %d%%\n\n",
		r.Completed, r.Created, r.CompletionRate)

	peak := 0
	for _, b := range r.Series {
		peak = max(peak, b.Completed)
	}
	bar := lipgloss.NewStyle().Foreground(theme.ColorAccent)
	for _, b := range r.Series {
		width := 0
		if peak > 0 {
			width = b.Completed * 30 / peak
		}
		fmt.Fprintf(w, "%6s %s %d\n", b.Label, bar.Render(strings.Repeat("█", width)), b.Completed)
	}

	if len(r.Categories) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, c := range r.Categories {
		name := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(c.Name)
		fmt.Fprintf(w, "%s %s  %d/%d\n", c.Icon, name, c.Completed, c.Total)
	}
}

// RenderCalendar writes a Monday-first month grid marking the number of
// todos due each day, followed by the todos of each day.
func RenderCalendar(w io.Writer, m views.Month, today civil.Date) {
	title := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	fmt.Fprintln(w, theme.HeaderStyle.Render(title))
	fmt.Fprintln(w, " Mo  Tu  We  Th  Fr  Sa  Su")

	for _, week := range m.Weeks() {
		var row strings.Builder
		for _, d := range week {
			row.WriteString(calendarCell(d, today))
		}
		fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
	}

	for _, d := range m.Days {
		if len(d.Todos) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", d.Date)
		for _, t := range d.Todos {
			mark := "-"
			if t.IsCompleted {
				mark = "✓"
			}
			fmt.Fprintf(w, "  %s %s\n", mark, t.Title)
		}
	}
}

func calendarCell(d *views.Day, today civil.Date) string {
	if d == nil {
		return "    "
	}
	cell := fmt.Sprintf("%3d", d.Date.Day)
	marker := " "
	if len(d.Todos) > 0 {
		marker = "*"
	}
	if d.Date == today {
		cell = todayStyle.Render(cell)
	}
	return cell + marker
}

// RenderUser writes the signed-in identity.
func RenderUser(w io.Writer, u *model.User) {
	if u == nil {
		fmt.Fprintln(w, "not signed in")
		return
	}
	name := u.Email
	if u.DisplayName != nil && *u.DisplayName != "" {
		name = fmt.Sprintf("%s <%s>", *u.DisplayName, u.Email)
	}
	fmt.Fprintln(w, "signed in as "+name)
}
