// Package board is the interactive todo list. It reads from the todo and
// category repositories and sends every change through them.
package board

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/categories"
	"github.com/nhle/tasknest/internal/keys"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/sync"
	"github.com/nhle/tasknest/internal/theme"
	"github.com/nhle/tasknest/internal/todos"
	"github.com/nhle/tasknest/internal/ui"
	helpview "github.com/nhle/tasknest/internal/ui/help"
	"github.com/nhle/tasknest/internal/ui/quickadd"
	"github.com/nhle/tasknest/internal/views"
)

const defaultTimeout = 10 * time.Second

var sortCycle = []model.SortOption{
	model.SortByCreatedAt,
	model.SortByPriority,
	model.SortByDeadline,
}

// Deps are the services the board drives.
type Deps struct {
	Todos      *todos.Repository
	Categories *categories.Repository
	Projector  *views.Projector
	// Poller, when set, reloads both repositories in the background.
	Poller *sync.Poller
	Dark   bool
	Now    func() time.Time
	// Timeout bounds each load and mutation. Zero means 10s.
	Timeout time.Duration
}

// loadedMsg reports that the initial fetch finished.
type loadedMsg struct{ err error }

// opDoneMsg reports the outcome of a mutation.
type opDoneMsg struct {
	op  string
	err error
}

// Model is the bubbletea model of the board.
type Model struct {
	deps          Deps
	keys          *keys.KeyMap
	help          help.Model
	overlay       helpview.Model
	prompt        quickadd.Model
	adding        bool
	layout        ui.Layout
	board         views.Board
	cursor        int
	categoryIdx   int
	showCompleted bool
	showHelp      bool
	status        string
	err           error
}

// New creates a board. Call Init (via tea.NewProgram) to load data.
func New(deps Deps) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Timeout <= 0 {
		deps.Timeout = defaultTimeout
	}
	km := keys.DefaultKeyMap()
	return Model{
		deps:        deps,
		keys:        km,
		help:        help.New(),
		overlay:     helpview.New(km, 80),
		layout:      ui.NewLayout(80, 24),
		categoryIdx: -1,
		status:      "loading…",
	}
}

// Init loads categories and todos and starts the poller if there is one.
func (m Model) Init() tea.Cmd {
	deps := m.deps
	load := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), deps.Timeout)
		defer cancel()
		if err := deps.Categories.Load(ctx); err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{err: deps.Todos.Refetch(ctx)}
	}
	if deps.Poller == nil {
		return load
	}
	return tea.Batch(load, deps.Poller.Start())
}

// Update handles key presses and operation results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.help.Width = msg.Width
		m.overlay.SetWidth(msg.Width)
		return m, nil

	case loadedMsg:
		m.err = msg.err
		m.status = ""
		m.refresh()
		return m, nil

	case sync.SyncResultMsg:
		if msg.Error != nil {
			m.err = msg.Error
		} else if m.err != nil && msg.Target == sync.TargetTodos {
			m.err = nil
		}
		m.refresh()
		return m, m.deps.Poller.WaitForNextResult()

	case opDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.op
		}
		m.refresh()
		return m, nil

	case quickadd.SubmitMsg:
		m.adding = false
		in, err := m.newTodo(msg.Title)
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, m.run("added", func(ctx context.Context) error {
			_, err := m.deps.Todos.Add(ctx, in)
			return err
		})

	case quickadd.CancelMsg:
		m.adding = false
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			var cmd tea.Cmd
			m.prompt, cmd = m.prompt.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}

	if m.adding {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// newTodo builds a medium-priority todo in the category in view, or in
// the first category when the board shows everything.
func (m Model) newTodo(title string) (model.NewTodo, error) {
	cats := m.deps.Categories.Categories()
	if len(cats) == 0 {
		return model.NewTodo{}, apperrors.ErrCategoryRequired
	}
	c := cats[0]
	if m.categoryIdx >= 0 && m.categoryIdx < len(cats) {
		c = cats[m.categoryIdx]
	}
	id := c.ID
	return model.NewTodo{Title: title, CategoryID: &id, Priority: model.PriorityMedium}, nil
}

func (m Model) scopeName() string {
	if cats := m.deps.Categories.Categories(); m.categoryIdx >= 0 && m.categoryIdx < len(cats) {
		return cats[m.categoryIdx].Name
	}
	return "All"
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Add):
		target := m.scopeName()
		if target == "All" {
			if cats := m.deps.Categories.Categories(); len(cats) > 0 {
				target = cats[0].Name
			}
		}
		m.adding = true
		m.prompt = quickadd.New(target, m.layout.Width)
		return m, m.prompt.Init()
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			return m, m.run("toggled", func(ctx context.Context) error {
				return m.deps.Todos.Toggle(ctx, t.ID)
			})
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			return m, m.run("deleted", func(ctx context.Context) error {
				return m.deps.Todos.Delete(ctx, t.ID)
			})
		}
	case key.Matches(msg, m.keys.MoveUp):
		cmd := m.move(-1)
		return m, cmd
	case key.Matches(msg, m.keys.MoveDown):
		cmd := m.move(1)
		return m, cmd
	case key.Matches(msg, m.keys.CycleSort):
		_ = m.deps.Todos.SetSortBy(nextSort(m.deps.Todos.SortBy()))
		m.refresh()
	case key.Matches(msg, m.keys.ShowCompleted):
		m.showCompleted = !m.showCompleted
		m.refresh()
	case key.Matches(msg, m.keys.NextCategory):
		m.categoryIdx = m.nextCategory()
		filter := m.filter()
		m.cursor = 0
		return m, m.run("", func(ctx context.Context) error {
			return m.deps.Todos.SetFilter(ctx, filter)
		})
	case key.Matches(msg, m.keys.Refresh):
		return m, m.run("refreshed", m.deps.Todos.Refetch)
	}
	return m, nil
}

// move swaps the selected active todo with its neighbour in the visible order.
func (m *Model) move(delta int) tea.Cmd {
	active := m.board.Active
	target := m.cursor + delta
	if m.cursor >= len(active) || target < 0 || target >= len(active) {
		return nil
	}
	from, over := active[m.cursor].ID, active[target].ID
	m.cursor = target
	return m.run("moved", func(ctx context.Context) error {
		return m.deps.Todos.Reorder(ctx, from, over)
	})
}

func (m Model) run(label string, fn func(context.Context) error) tea.Cmd {
	timeout := m.deps.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return opDoneMsg{op: label, err: fn(ctx)}
	}
}

func (m *Model) refresh() {
	m.board = m.deps.Projector.Board(m.deps.Todos.Todos(), m.deps.Todos.SortBy())
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m Model) rows() []model.Todo {
	if !m.showCompleted {
		return m.board.Active
	}
	return append(append([]model.Todo{}, m.board.Active...), m.board.Completed...)
}

func (m Model) selected() (model.Todo, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return model.Todo{}, false
	}
	return rows[m.cursor], true
}

func (m Model) nextCategory() int {
	n := len(m.deps.Categories.Categories())
	if m.categoryIdx+1 >= n {
		return -1
	}
	return m.categoryIdx + 1
}

func (m Model) filter() model.CategoryFilter {
	cats := m.deps.Categories.Categories()
	if m.categoryIdx < 0 || m.categoryIdx >= len(cats) {
		return model.AllTodos()
	}
	return model.ForCategory(cats[m.categoryIdx].ID)
}

func nextSort(cur model.SortOption) model.SortOption {
	for i, opt := range sortCycle {
		if opt == cur {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return sortCycle[0]
}

// View renders the board.
func (m Model) View() string {
	header := m.layout.RenderHeader("tasknest · "+m.scopeName(),
		fmt.Sprintf("%d open · sort: %s", m.board.Counts[views.CountAll], m.deps.Todos.SortBy()))

	var b strings.Builder
	today := civil.DateOf(m.deps.Now())
	rows := m.rows()
	if len(rows) == 0 {
		b.WriteString(theme.HelpStyle.Render("  nothing to do"))
	}
	for i, t := range rows {
		b.WriteString(m.renderRow(t, i == m.cursor, today))
		b.WriteByte('\n')
	}
	if m.adding {
		b.WriteString("\n" + m.prompt.View())
	}
	if m.showHelp {
		b.WriteString("\n" + m.overlay.View())
	}

	status := m.status
	if m.err != nil {
		status = theme.ErrorStyle.Render(m.err.Error())
	}
	if status == "" {
		status = m.help.View(m.keys)
	}
	return m.layout.Frame(header, b.String(), m.layout.RenderStatusBar(status))
}

func (m Model) renderRow(t model.Todo, selected bool, today civil.Date) string {
	check := "[ ]"
	title := t.Title
	if t.IsCompleted {
		check = "[x]"
		title = theme.CompletedStyle.Render(title)
	}

	parts := []string{check, theme.PriorityStyle(t.Priority).Render(theme.PriorityLabel(t.Priority)), title}
	if t.CategoryID != nil {
		if c, ok := m.deps.Categories.Find(*t.CategoryID); ok {
			parts = append(parts, theme.CategoryStyle(c, m.deps.Dark).Render("#"+c.Name))
		}
	}
	if t.Deadline != nil {
		due := "due " + t.Deadline.String()
		if t.IsOverdue(today) {
			due = theme.OverdueStyle.Render(due)
		}
		parts = append(parts, due)
	}

	line := strings.Join(parts, " ")
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ItemStyle.Render(line)
}
