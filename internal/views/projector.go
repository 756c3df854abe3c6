package views

import (
	"sync"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/nhle/tasknest/internal/model"
)

// Board is the list view: sorted active todos, completed todos and the
// per-category active counts.
type Board struct {
	Active    []model.Todo
	Completed []model.Todo
	Counts    map[string]int
}

// Projector memoizes the last Board keyed on a hash of its inputs.
// It is safe for concurrent use.
type Projector struct {
	mu    sync.Mutex
	key   uint64
	valid bool
	board Board
	runs  int
}

// NewProjector returns an empty projector.
func NewProjector() *Projector {
	return &Projector{}
}

type todoKey struct {
	ID            string
	CategoryID    string
	SubcategoryID string
	Title         string
	Description   string
	HasDesc       bool
	Priority      string
	IsCompleted   bool
	CompletedAt   int64
	Deadline      string
	SortOrder     int
	CreatedAt     int64
	UpdatedAt     int64
}

type boardKey struct {
	Sort  string
	Todos []todoKey
}

func keyOf(todos []model.Todo, opt model.SortOption) boardKey {
	k := boardKey{Sort: string(opt), Todos: make([]todoKey, len(todos))}
	for i, t := range todos {
		tk := todoKey{
			ID:          t.ID,
			Title:       t.Title,
			Priority:    string(t.Priority),
			IsCompleted: t.IsCompleted,
			SortOrder:   t.SortOrder,
			CreatedAt:   t.CreatedAt.UnixNano(),
			UpdatedAt:   t.UpdatedAt.UnixNano(),
		}
		if t.CategoryID != nil {
			tk.CategoryID = *t.CategoryID
		}
		if t.SubcategoryID != nil {
			tk.SubcategoryID = *t.SubcategoryID
		}
		if t.Description != nil {
			tk.Description, tk.HasDesc = *t.Description, true
		}
		if t.CompletedAt != nil {
			tk.CompletedAt = t.CompletedAt.UnixNano()
		}
		if t.Deadline != nil {
			tk.Deadline = t.Deadline.String()
		}
		k.Todos[i] = tk
	}
	return k
}

// Board returns the list view for todos sorted by opt, recomputing it only
// when the inputs differ from the previous call. The returned slices are
// shared with the cache and must not be modified.
func (p *Projector) Board(todos []model.Todo, opt model.SortOption) Board {
	hash, err := hashstructure.Hash(keyOf(todos, opt), hashstructure.FormatV2, nil)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err == nil && p.valid && hash == p.key {
		return p.board
	}

	active, completed := Split(todos)
	p.board = Board{
		Active:    Sort(active, opt),
		Completed: completed,
		Counts:    ActiveCounts(todos),
	}
	p.runs++
	p.key = hash
	p.valid = err == nil
	return p.board
}

// Computations returns how many times a Board was actually derived.
func (p *Projector) Computations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}
