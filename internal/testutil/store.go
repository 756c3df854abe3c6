// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(store.MemoryPath)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// StaticUser is a UserSource whose user can be switched during a test.
type StaticUser struct {
	mu sync.Mutex
	id string
}

// NewStaticUser returns a source reporting id; "" means signed out.
func NewStaticUser(id string) *StaticUser {
	return &StaticUser{id: id}
}

// CurrentUserID implements store.UserSource.
func (u *StaticUser) CurrentUserID(context.Context) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.id, nil
}

// Set changes the reported user.
func (u *StaticUser) Set(id string) {
	u.mu.Lock()
	u.id = id
	u.mu.Unlock()
}

// SeedUser creates a profile for email.
func SeedUser(t *testing.T, s *store.SQLiteStore, email string) model.User {
	t.Helper()

	u, err := s.UpsertProfile(context.Background(), model.User{Email: email})
	if err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}
	return u
}

// NewUserGateway opens a test store, creates one user and returns a
// gateway signed in as that user.
func NewUserGateway(t *testing.T) (*store.SQLiteStore, *store.Client, model.User) {
	t.Helper()

	s := NewTestStore(t)
	u := SeedUser(t, s, "owner@example.com")
	return s, s.Gateway(NewStaticUser(u.ID)), u
}

// SeedCategory inserts a category with the given subcategory names.
func SeedCategory(t *testing.T, gw store.Gateway, name string, sortOrder int, subs ...string) model.Category {
	t.Helper()
	ctx := context.Background()

	cat, err := gw.InsertCategory(ctx, model.Category{Name: name, SortOrder: sortOrder})
	if err != nil {
		t.Fatalf("seeding category %s: %v", name, err)
	}

	batch := make([]model.Subcategory, 0, len(subs))
	for i, n := range subs {
		batch = append(batch, model.Subcategory{CategoryID: cat.ID, Name: n, SortOrder: i})
	}
	if err := gw.InsertSubcategories(ctx, batch); err != nil {
		t.Fatalf("seeding subcategories of %s: %v", name, err)
	}

	cats, err := gw.FetchCategoriesWithSubcategories(ctx)
	if err != nil {
		t.Fatalf("reading back category %s: %v", name, err)
	}
	for _, c := range cats {
		if c.ID == cat.ID {
			return c
		}
	}
	t.Fatalf("category %s not found after insert", name)
	return model.Category{}
}
