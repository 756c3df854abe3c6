// Package todos owns the in-memory todo list of the signed-in user and
// mediates every change to it through the store gateway.
//
// Add, Update, Toggle and Delete touch local state only after the store
// confirms the change. Reorder applies the new order locally first and then
// persists it row by row without rollback; a later Refetch reconciles any
// divergence.
package todos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/store"
	"github.com/nhle/tasknest/internal/validate"
	"github.com/nhle/tasknest/internal/views"
)

// Option configures a Repository.
type Option func(*Repository)

// WithClock sets the time source used for completion and update stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithSort sets the initial sort option of the active list.
func WithSort(opt model.SortOption) Option {
	return func(r *Repository) { r.initialSort = opt }
}

// WithSequencedFetches controls whether a fetch response that resolves
// after a newer fetch was issued is discarded (the default) or applied.
func WithSequencedFetches(on bool) Option {
	return func(r *Repository) { r.sequenced = on }
}

// Repository is the authoritative todo list for the active filter scope,
// ordered by sort_order as returned by the store.
type Repository struct {
	gw          store.Gateway
	log         *zap.SugaredLogger
	val         *validate.Validator
	now         func() time.Time
	sequenced   bool
	initialSort model.SortOption
	state       *FilterState

	mu          sync.Mutex
	todos       []model.Todo
	loading     bool
	issued      uint64
	subscribers []func()
}

// New creates a repository. The list stays empty and Loading reports true
// until the first Refetch completes.
func New(gw store.Gateway, log *zap.SugaredLogger, opts ...Option) *Repository {
	r := &Repository{
		gw:          gw,
		log:         log,
		val:         validate.New(),
		now:         time.Now,
		sequenced:   true,
		initialSort: model.SortByCreatedAt,
		todos:       []model.Todo{},
		loading:     true,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.state = NewFilterState(r.initialSort)
	r.state.OnSortChange(func(model.SortOption) { r.notify() })
	return r
}

// === Reads ===

// Todos returns a copy of the full list in sort_order.
func (r *Repository) Todos() []model.Todo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Todo{}, r.todos...)
}

// ActiveTodos returns the incomplete todos ordered by the current sort option.
func (r *Repository) ActiveTodos() []model.Todo {
	return views.ActiveSorted(r.Todos(), r.state.SortBy())
}

// CompletedTodos returns the completed todos in sort_order.
func (r *Repository) CompletedTodos() []model.Todo {
	_, completed := views.Split(r.Todos())
	return completed
}

// Loading reports whether the newest fetch is still running.
func (r *Repository) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Filter returns the active filter.
func (r *Repository) Filter() model.CategoryFilter {
	return r.state.Filter()
}

// SortBy returns the active sort option.
func (r *Repository) SortBy() model.SortOption {
	return r.state.SortBy()
}

// Find returns the todo with the given id from the local list.
func (r *Repository) Find(id string) (model.Todo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(id); i >= 0 {
		return r.todos[i], true
	}
	return model.Todo{}, false
}

// Subscribe registers fn to run after every change to the list or sort
// option. fn must not block.
func (r *Repository) Subscribe(fn func()) {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, fn)
	r.mu.Unlock()
}

// === Filter and sort ===

// SetFilter changes the filter scope and reloads the list from the store.
// Setting the current filter again does nothing.
func (r *Repository) SetFilter(ctx context.Context, f model.CategoryFilter) error {
	if !r.state.SetFilter(f) {
		return nil
	}
	return r.Refetch(ctx)
}

// Reload scopes the list to f and fetches once, whether or not the
// filter changed.
func (r *Repository) Reload(ctx context.Context, f model.CategoryFilter) error {
	r.state.SetFilter(f)
	return r.Refetch(ctx)
}

// SetSortBy changes the ordering of ActiveTodos. No fetch is issued.
func (r *Repository) SetSortBy(opt model.SortOption) error {
	return r.state.SetSortBy(opt)
}

// Refetch replaces the list with the store's todos for the active filter.
// On failure the previous list is kept and the error returned.
func (r *Repository) Refetch(ctx context.Context) error {
	r.mu.Lock()
	r.issued++
	token := r.issued
	r.loading = true
	r.mu.Unlock()

	filter := r.state.Filter()
	todos, err := r.gw.FetchTodos(ctx, store.TodoQuery{Filter: filter})

	r.mu.Lock()
	newest := token == r.issued
	if !r.sequenced || newest {
		r.loading = false
	}
	if err != nil {
		r.mu.Unlock()
		r.log.Errorw("fetching todos", "filter", filter, "error", err)
		return err
	}
	if r.sequenced && !newest {
		r.mu.Unlock()
		r.log.Debugw("discarding stale todo fetch", "token", token)
		return nil
	}
	r.todos = todos
	r.mu.Unlock()

	r.notify()
	return nil
}

// === Mutations ===

// Add validates in and creates the todo. The returned row is appended to
// the local list only after the store confirms it. Invalid input is
// rejected before any store call.
func (r *Repository) Add(ctx context.Context, in model.NewTodo) (*model.Todo, error) {
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if err := r.val.NewTodo(in); err != nil {
		return nil, err
	}

	uid, err := r.gw.CurrentUserID(ctx)
	if err != nil {
		r.log.Errorw("resolving user for new todo", "error", err)
		return nil, err
	}
	if uid == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	r.mu.Lock()
	sortOrder := len(r.todos)
	r.mu.Unlock()

	created, err := r.gw.InsertTodo(ctx, model.Todo{
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Priority:      in.Priority,
		Deadline:      in.Deadline,
		SortOrder:     sortOrder,
	})
	if err != nil {
		r.log.Errorw("adding todo", "title", in.Title, "error", err)
		return nil, err
	}

	r.mu.Lock()
	r.todos = append(r.todos, created)
	r.mu.Unlock()
	r.notify()

	return &created, nil
}

// Update persists patch with a fresh updated_at stamp and then applies the
// same fields to the local entry.
func (r *Repository) Update(ctx context.Context, id string, patch model.TodoPatch) error {
	if err := r.val.Patch(patch); err != nil {
		return err
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	now := r.now()
	patch.UpdatedAt = &now

	if err := r.gw.UpdateTodo(ctx, id, patch); err != nil {
		r.log.Errorw("updating todo", "todo_id", id, "error", err)
		return err
	}

	r.mu.Lock()
	if i := r.indexOf(id); i >= 0 {
		patch.Apply(&r.todos[i])
	}
	r.mu.Unlock()
	r.notify()
	return nil
}

// Toggle flips the completion state of a todo in the local list, setting
// or clearing its completion time.
func (r *Repository) Toggle(ctx context.Context, id string) error {
	todo, ok := r.Find(id)
	if !ok {
		return apperrors.WithMessage(apperrors.ErrTodoNotFound, fmt.Sprintf("todo %s not found", id))
	}
	return r.Update(ctx, id, model.CompletionPatch(!todo.IsCompleted, r.now()))
}

// Delete removes a todo from the store and then from the local list.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.gw.DeleteTodo(ctx, id); err != nil {
		r.log.Errorw("deleting todo", "todo_id", id, "error", err)
		return err
	}

	r.mu.Lock()
	if i := r.indexOf(id); i >= 0 {
		r.todos = append(r.todos[:i:i], r.todos[i+1:]...)
	}
	r.mu.Unlock()
	r.notify()
	return nil
}

// Reorder moves activeID to the position of overID and renumbers the whole
// list densely. The new order is applied locally before anything is
// persisted; each changed row is then written in turn. A failed write does
// not stop the others and nothing is rolled back. The returned error joins
// every failure.
func (r *Repository) Reorder(ctx context.Context, activeID, overID string) error {
	if activeID == overID {
		return nil
	}

	r.mu.Lock()
	from, to := r.indexOf(activeID), r.indexOf(overID)
	if from < 0 || to < 0 {
		r.mu.Unlock()
		return nil
	}

	now := r.now()
	moved := move(r.todos, from, to)
	var changed []model.Todo
	for i := range moved {
		if moved[i].SortOrder != i {
			moved[i].SortOrder = i
			moved[i].UpdatedAt = now
			changed = append(changed, moved[i])
		}
	}
	r.todos = moved
	r.mu.Unlock()
	r.notify()

	var errs []error
	for _, t := range changed {
		order := t.SortOrder
		err := r.gw.UpdateTodo(ctx, t.ID, model.TodoPatch{SortOrder: &order, UpdatedAt: &now})
		if err != nil {
			r.log.Errorw("persisting todo order", "todo_id", t.ID, "sort_order", order, "error", err)
			errs = append(errs, fmt.Errorf("todo %s: %w", t.ID, err))
		}
	}
	return errors.Join(errs...)
}

// move returns a copy of todos with the element at from reinserted at to.
func move(todos []model.Todo, from, to int) []model.Todo {
	out := make([]model.Todo, 0, len(todos))
	out = append(out, todos[:from]...)
	out = append(out, todos[from+1:]...)
	out = append(out[:to], append([]model.Todo{todos[from]}, out[to:]...)...)
	return out
}

func (r *Repository) indexOf(id string) int {
	for i := range r.todos {
		if r.todos[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) notify() {
	r.mu.Lock()
	subs := append([]func(){}, r.subscribers...)
	r.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
