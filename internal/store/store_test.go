package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/model"
)

type fixedUser struct {
	mu sync.Mutex
	id string
}

func (u *fixedUser) CurrentUserID(context.Context) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.id, nil
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newUserClient(t *testing.T, s *SQLiteStore, email string) (*Client, model.User) {
	t.Helper()
	u, err := s.UpsertProfile(context.Background(), model.User{Email: email})
	require.NoError(t, err)
	return s.Gateway(&fixedUser{id: u.ID}), u
}

func strPtr(s string) *string { return &s }

func TestMigrations_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.runMigrations())

	var version int
	require.NoError(t, s.db.Get(&version, "SELECT MAX(version) FROM schema_version"))
	assert.Equal(t, len(migrations), version)
}

func TestClient_RequiresUser(t *testing.T) {
	s := newTestStore(t)
	gw := s.Gateway(&fixedUser{})
	ctx := context.Background()

	_, err := gw.FetchTodos(ctx, TodoQuery{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	assert.True(t, apperrors.IsAuth(err))

	_, err = gw.InsertTodo(ctx, model.Todo{Title: "x"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = gw.HasCategories(ctx)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestTodoStore_InsertFetchUpdateDelete(t *testing.T) {
	s := newTestStore(t)
	gw, u := newUserClient(t, s, "a@example.com")
	ctx := context.Background()

	cat, err := gw.InsertCategory(ctx, model.Category{Name: "Work"})
	require.NoError(t, err)

	deadline := civil.Date{Year: 2024, Month: time.March, Day: 5}
	created, err := gw.InsertTodo(ctx, model.Todo{
		Title:       "Write report",
		Description: strPtr("quarterly"),
		CategoryID:  &cat.ID,
		Priority:    model.PriorityHigh,
		Deadline:    &deadline,
		SortOrder:   0,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, u.ID, created.UserID)
	assert.Equal(t, model.PriorityHigh, created.Priority)
	require.NotNil(t, created.Deadline)
	assert.Equal(t, deadline, *created.Deadline)
	assert.False(t, created.IsCompleted)
	assert.Nil(t, created.CompletedAt)

	now := time.Now().UTC().Truncate(time.Second)
	patch := model.CompletionPatch(true, now)
	patch.Deadline = model.Null[civil.Date]()
	patch.UpdatedAt = &now
	require.NoError(t, gw.UpdateTodo(ctx, created.ID, patch))

	got, err := s.getTodo(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, now.Equal(*got.CompletedAt))
	assert.Nil(t, got.Deadline)

	require.NoError(t, gw.DeleteTodo(ctx, created.ID))
	_, err = s.getTodo(ctx, created.ID)
	assert.True(t, apperrors.IsNotFound(err))

	assert.NoError(t, gw.DeleteTodo(ctx, created.ID), "deleting twice is a no-op")
}

func TestTodoStore_WritesToMissingRowsSucceed(t *testing.T) {
	s := newTestStore(t)
	gw, _ := newUserClient(t, s, "a@example.com")
	ctx := context.Background()

	a, err := gw.InsertTodo(ctx, model.Todo{Title: "a", SortOrder: 0})
	require.NoError(t, err)
	b, err := gw.InsertTodo(ctx, model.Todo{Title: "b", SortOrder: 1})
	require.NoError(t, err)

	// Another client removed a while a reorder was in flight.
	require.NoError(t, gw.DeleteTodo(ctx, a.ID))
	zero, one := 0, 1
	require.NoError(t, gw.UpdateTodo(ctx, a.ID, model.TodoPatch{SortOrder: &one}))
	require.NoError(t, gw.UpdateTodo(ctx, b.ID, model.TodoPatch{SortOrder: &zero}))

	got, err := gw.FetchTodos(ctx, TodoQuery{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, 0, got[0].SortOrder)
}

func TestTodoStore_EmptyTitleRejected(t *testing.T) {
	s := newTestStore(t)
	gw, _ := newUserClient(t, s, "a@example.com")

	_, err := gw.InsertTodo(context.Background(), model.Todo{Title: "   "})
	assert.ErrorIs(t, err, apperrors.ErrEmptyTitle)
}

func TestTodoStore_FetchFiltersAndOrders(t *testing.T) {
	s := newTestStore(t)
	gw, _ := newUserClient(t, s, "a@example.com")
	ctx := context.Background()

	work, err := gw.InsertCategory(ctx, model.Category{Name: "Work", SortOrder: 0})
	require.NoError(t, err)
	home, err := gw.InsertCategory(ctx, model.Category{Name: "Home", SortOrder: 1})
	require.NoError(t, err)
	require.NoError(t, gw.InsertSubcategories(ctx, []model.Subcategory{
		{CategoryID: work.ID, Name: "Meetings", SortOrder: 0},
	}))
	cats, err := gw.FetchCategoriesWithSubcategories(ctx)
	require.NoError(t, err)
	sub := cats[0].Subcategories[0]

	insert := func(title string, order int, cat, subID *string) {
		_, err := gw.InsertTodo(ctx, model.Todo{
			Title: title, SortOrder: order, CategoryID: cat, SubcategoryID: subID,
		})
		require.NoError(t, err)
	}
	insert("c", 2, &work.ID, nil)
	insert("a", 0, &work.ID, &sub.ID)
	insert("b", 1, &home.ID, nil)
	insert("d", 3, nil, nil)

	all, err := gw.FetchTodos(ctx, TodoQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, titles(all))

	byCat, err := gw.FetchTodos(ctx, TodoQuery{Filter: model.ForCategory(work.ID)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, titles(byCat))

	bySub, err := gw.FetchTodos(ctx, TodoQuery{Filter: model.ForSubcategory(home.ID, sub.ID)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, titles(bySub))
}

func TestTodoStore_ScopedToUser(t *testing.T) {
	s := newTestStore(t)
	alice, _ := newUserClient(t, s, "alice@example.com")
	bob, _ := newUserClient(t, s, "bob@example.com")
	ctx := context.Background()

	todo, err := alice.InsertTodo(ctx, model.Todo{Title: "private"})
	require.NoError(t, err)

	got, err := bob.FetchTodos(ctx, TodoQuery{})
	require.NoError(t, err)
	assert.Empty(t, got)

	title := "hijacked"
	require.NoError(t, bob.UpdateTodo(ctx, todo.ID, model.TodoPatch{Title: &title}))
	require.NoError(t, bob.DeleteTodo(ctx, todo.ID))

	still, err := s.getTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", still.Title)
}

func TestTodoStore_ConstraintViolation(t *testing.T) {
	s := newTestStore(t)
	gw, _ := newUserClient(t, s, "a@example.com")

	_, err := gw.InsertTodo(context.Background(), model.Todo{
		Title: "dangling", CategoryID: strPtr("missing"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConstraint)
	assert.True(t, apperrors.IsStore(err))
}

func TestCategoryStore_UniqueSortOrderPerUser(t *testing.T) {
	s := newTestStore(t)
	alice, _ := newUserClient(t, s, "alice@example.com")
	bob, _ := newUserClient(t, s, "bob@example.com")
	ctx := context.Background()

	has, err := alice.HasCategories(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = alice.InsertCategory(ctx, model.Category{Name: "Work", SortOrder: 0})
	require.NoError(t, err)
	_, err = alice.InsertCategory(ctx, model.Category{Name: "Work again", SortOrder: 0})
	assert.ErrorIs(t, err, apperrors.ErrConstraint)

	_, err = bob.InsertCategory(ctx, model.Category{Name: "Work", SortOrder: 0})
	assert.NoError(t, err)

	has, err = alice.HasCategories(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestCategoryStore_SubcategoriesRequireOwnedParent(t *testing.T) {
	s := newTestStore(t)
	alice, _ := newUserClient(t, s, "alice@example.com")
	bob, _ := newUserClient(t, s, "bob@example.com")
	ctx := context.Background()

	cat, err := alice.InsertCategory(ctx, model.Category{Name: "Work"})
	require.NoError(t, err)

	err = bob.InsertSubcategories(ctx, []model.Subcategory{{CategoryID: cat.ID, Name: "x"}})
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)

	require.NoError(t, alice.InsertSubcategories(ctx, []model.Subcategory{
		{CategoryID: cat.ID, Name: "second", SortOrder: 1},
		{CategoryID: cat.ID, Name: "first", SortOrder: 0},
	}))

	cats, err := alice.FetchCategoriesWithSubcategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.Len(t, cats[0].Subcategories, 2)
	assert.Equal(t, "first", cats[0].Subcategories[0].Name)
	assert.Equal(t, "second", cats[0].Subcategories[1].Name)
}

func TestProfileStore_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.UpsertProfile(ctx, model.User{Email: "Ann@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Nil(t, u.DisplayName)

	again, err := s.UpsertProfile(ctx, model.User{Email: "ann@example.com", DisplayName: strPtr("Ann")})
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	require.NotNil(t, again.DisplayName)
	assert.Equal(t, "Ann", *again.DisplayName)

	byEmail, err := s.GetProfileByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = s.GetProfile(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
}

func TestInstrumented_CountsResults(t *testing.T) {
	s := newTestStore(t)
	gw, _ := newUserClient(t, s, "a@example.com")
	reg := prometheus.NewRegistry()
	ig := Instrumented(gw, reg)
	ctx := context.Background()

	_, err := ig.FetchTodos(ctx, TodoQuery{})
	require.NoError(t, err)
	err = ig.DeleteTodo(ctx, "missing")
	require.Error(t, err)

	m := ig.metrics
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("fetch_todos", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("delete_todo", "not_found")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func titles(todos []model.Todo) []string {
	out := make([]string, len(todos))
	for i, td := range todos {
		out[i] = td.Title
	}
	return out
}
