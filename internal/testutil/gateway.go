package testutil

import (
	"context"
	"sync"

	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/store"
)

// Gateway operation names used by FlakyGateway.
const (
	OpFetchTodos          = "fetch_todos"
	OpInsertTodo          = "insert_todo"
	OpUpdateTodo          = "update_todo"
	OpDeleteTodo          = "delete_todo"
	OpFetchCategories     = "fetch_categories"
	OpHasCategories       = "has_categories"
	OpInsertCategory      = "insert_category"
	OpInsertSubcategories = "insert_subcategories"
)

// FlakyGateway wraps a Gateway, counts calls per operation and can fail
// selected calls.
type FlakyGateway struct {
	store.Gateway

	mu       sync.Mutex
	calls    map[string]int
	failures map[string]func(args ...any) error

	// BeforeFetch, when set, runs before every FetchTodos call is forwarded.
	BeforeFetch func(q store.TodoQuery)
}

// NewFlakyGateway wraps next.
func NewFlakyGateway(next store.Gateway) *FlakyGateway {
	return &FlakyGateway{
		Gateway:  next,
		calls:    make(map[string]int),
		failures: make(map[string]func(args ...any) error),
	}
}

// FailWith makes every call of op fail with err.
func (g *FlakyGateway) FailWith(op string, err error) {
	g.FailWhen(op, func(...any) error { return err })
}

// FailWhen installs a predicate deciding the error for each call of op.
// The arguments are the call's arguments after the context.
func (g *FlakyGateway) FailWhen(op string, fn func(args ...any) error) {
	g.mu.Lock()
	g.failures[op] = fn
	g.mu.Unlock()
}

// Heal removes all injected failures.
func (g *FlakyGateway) Heal() {
	g.mu.Lock()
	g.failures = make(map[string]func(args ...any) error)
	g.mu.Unlock()
}

// Calls returns how often op was invoked.
func (g *FlakyGateway) Calls(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (g *FlakyGateway) TotalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}

func (g *FlakyGateway) enter(op string, args ...any) error {
	g.mu.Lock()
	g.calls[op]++
	fail := g.failures[op]
	g.mu.Unlock()

	if fail != nil {
		return fail(args...)
	}
	return nil
}

func (g *FlakyGateway) FetchTodos(ctx context.Context, q store.TodoQuery) ([]model.Todo, error) {
	if g.BeforeFetch != nil {
		g.BeforeFetch(q)
	}
	if err := g.enter(OpFetchTodos, q); err != nil {
		return nil, err
	}
	return g.Gateway.FetchTodos(ctx, q)
}

func (g *FlakyGateway) InsertTodo(ctx context.Context, todo model.Todo) (model.Todo, error) {
	if err := g.enter(OpInsertTodo, todo); err != nil {
		return model.Todo{}, err
	}
	return g.Gateway.InsertTodo(ctx, todo)
}

func (g *FlakyGateway) UpdateTodo(ctx context.Context, id string, patch model.TodoPatch) error {
	if err := g.enter(OpUpdateTodo, id, patch); err != nil {
		return err
	}
	return g.Gateway.UpdateTodo(ctx, id, patch)
}

func (g *FlakyGateway) DeleteTodo(ctx context.Context, id string) error {
	if err := g.enter(OpDeleteTodo, id); err != nil {
		return err
	}
	return g.Gateway.DeleteTodo(ctx, id)
}

func (g *FlakyGateway) FetchCategoriesWithSubcategories(ctx context.Context) ([]model.Category, error) {
	if err := g.enter(OpFetchCategories); err != nil {
		return nil, err
	}
	return g.Gateway.FetchCategoriesWithSubcategories(ctx)
}

func (g *FlakyGateway) HasCategories(ctx context.Context) (bool, error) {
	if err := g.enter(OpHasCategories); err != nil {
		return false, err
	}
	return g.Gateway.HasCategories(ctx)
}

func (g *FlakyGateway) InsertCategory(ctx context.Context, cat model.Category) (model.Category, error) {
	if err := g.enter(OpInsertCategory, cat); err != nil {
		return model.Category{}, err
	}
	return g.Gateway.InsertCategory(ctx, cat)
}

func (g *FlakyGateway) InsertSubcategories(ctx context.Context, subs []model.Subcategory) error {
	if err := g.enter(OpInsertSubcategories, subs); err != nil {
		return err
	}
	return g.Gateway.InsertSubcategories(ctx, subs)
}
