package store

import (
	"context"

	"github.com/nhle/tasknest/internal/model"
)

// TodoQuery selects the todos returned by FetchTodos. Only equality
// predicates are supported; results are always ordered by sort_order.
type TodoQuery struct {
	Filter model.CategoryFilter
}

// UserSource resolves the user on whose behalf gateway calls are made.
// An empty id with a nil error means nobody is signed in.
type UserSource interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// Gateway is the typed CRUD surface of the remote store. Every call is
// scoped to the current user; none of them retry.
type Gateway interface {
	UserSource

	// === Todos ===

	FetchTodos(ctx context.Context, q TodoQuery) ([]model.Todo, error)
	InsertTodo(ctx context.Context, todo model.Todo) (model.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch model.TodoPatch) error
	DeleteTodo(ctx context.Context, id string) error

	// === Categories ===

	FetchCategoriesWithSubcategories(ctx context.Context) ([]model.Category, error)
	HasCategories(ctx context.Context) (bool, error)
	InsertCategory(ctx context.Context, cat model.Category) (model.Category, error)
	InsertSubcategories(ctx context.Context, subs []model.Subcategory) error
}

// ProfileStore persists the identities known to the store.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, u model.User) (model.User, error)
	GetProfile(ctx context.Context, id string) (*model.User, error)
	GetProfileByEmail(ctx context.Context, email string) (*model.User, error)
}
