package categories

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/logger"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/store"
	"github.com/nhle/tasknest/internal/testutil"
)

func TestLoad_SeedsDefaultsForNewUser(t *testing.T) {
	_, gw, _ := testutil.NewUserGateway(t)
	repo := New(gw, logger.Nop())

	require.NoError(t, repo.Load(context.Background()))

	cats := repo.Categories()
	require.Len(t, cats, len(model.DefaultCategories))
	for i, seed := range model.DefaultCategories {
		assert.Equal(t, seed.Name, cats[i].Name)
		assert.Equal(t, seed.Icon, cats[i].Icon)
		assert.Equal(t, seed.ColorLight, cats[i].Color(false))
		assert.Equal(t, seed.ColorDark, cats[i].Color(true))
		require.Len(t, cats[i].Subcategories, len(seed.Subcategories))
		for j, sub := range seed.Subcategories {
			assert.Equal(t, sub.Name, cats[i].Subcategories[j].Name)
			assert.Equal(t, cats[i].ID, cats[i].Subcategories[j].CategoryID)
		}
	}
	assert.False(t, repo.Loading())
}

func TestLoad_ExistingCategoriesAreNotSeeded(t *testing.T) {
	_, base, _ := testutil.NewUserGateway(t)
	testutil.SeedCategory(t, base, "Mine", 0, "a", "b")
	gw := testutil.NewFlakyGateway(base)
	repo := New(gw, logger.Nop())

	require.NoError(t, repo.Load(context.Background()))

	cats := repo.Categories()
	require.Len(t, cats, 1)
	assert.Equal(t, "Mine", cats[0].Name)
	assert.Len(t, cats[0].Subcategories, 2)
	assert.Zero(t, gw.Calls(testutil.OpInsertCategory))
	assert.Zero(t, gw.Calls(testutil.OpHasCategories))
}

func TestLoad_SignedOutLeavesListEmpty(t *testing.T) {
	s := testutil.NewTestStore(t)
	gw := testutil.NewFlakyGateway(s.Gateway(testutil.NewStaticUser("")))
	repo := New(gw, logger.Nop())

	require.NoError(t, repo.Load(context.Background()))
	assert.Empty(t, repo.Categories())
	assert.Zero(t, gw.Calls(testutil.OpInsertCategory))
}

func TestLoad_FetchFailureKeepsPreviousTree(t *testing.T) {
	_, base, _ := testutil.NewUserGateway(t)
	gw := testutil.NewFlakyGateway(base)
	repo := New(gw, logger.Nop())
	ctx := context.Background()
	require.NoError(t, repo.Load(ctx))

	gw.FailWith(testutil.OpFetchCategories, apperrors.ErrStoreUnavailable)
	err := repo.Refetch(ctx)
	assert.True(t, apperrors.IsNetwork(err))
	assert.Len(t, repo.Categories(), len(model.DefaultCategories))
	assert.False(t, repo.Loading())
}

// emptyOnce reports no categories on its first fetch, as if another
// session seeded right after this one looked.
type emptyOnce struct {
	store.Gateway
	mu      sync.Mutex
	fetched bool
}

func (g *emptyOnce) FetchCategoriesWithSubcategories(ctx context.Context) ([]model.Category, error) {
	g.mu.Lock()
	first := !g.fetched
	g.fetched = true
	g.mu.Unlock()
	if first {
		return []model.Category{}, nil
	}
	return g.Gateway.FetchCategoriesWithSubcategories(ctx)
}

func TestLoad_RecheckFindsCategoriesAndRefetches(t *testing.T) {
	_, base, _ := testutil.NewUserGateway(t)
	testutil.SeedCategory(t, base, "Raced", 0)
	gw := testutil.NewFlakyGateway(&emptyOnce{Gateway: base})
	repo := New(gw, logger.Nop())

	require.NoError(t, repo.Load(context.Background()))

	assert.Equal(t, 1, gw.Calls(testutil.OpHasCategories))
	assert.Zero(t, gw.Calls(testutil.OpInsertCategory))
	cats := repo.Categories()
	require.Len(t, cats, 1)
	assert.Equal(t, "Raced", cats[0].Name)
}

func TestLoad_ConstraintDuringSeedAbortsAndRefetches(t *testing.T) {
	_, base, _ := testutil.NewUserGateway(t)
	gw := testutil.NewFlakyGateway(base)
	gw.FailWith(testutil.OpInsertCategory,
		apperrors.Wrap(apperrors.ErrConstraint, fmt.Errorf("UNIQUE constraint failed")))
	repo := New(gw, logger.Nop())

	require.NoError(t, repo.Load(context.Background()))

	assert.Equal(t, 1, gw.Calls(testutil.OpInsertCategory))
	assert.Zero(t, gw.Calls(testutil.OpInsertSubcategories))
	assert.Equal(t, 2, gw.Calls(testutil.OpFetchCategories))
	assert.Empty(t, repo.Categories())
}

func TestLoad_ConcurrentSessionsSeedOnce(t *testing.T) {
	s, _, u := testutil.NewUserGateway(t)
	ctx := context.Background()

	const sessions = 4
	repos := make([]*Repository, sessions)
	for i := range repos {
		repos[i] = New(s.Gateway(testutil.NewStaticUser(u.ID)), logger.Nop())
	}

	var wg sync.WaitGroup
	for _, r := range repos {
		wg.Add(1)
		go func(r *Repository) {
			defer wg.Done()
			assert.NoError(t, r.Load(ctx))
		}(r)
	}
	wg.Wait()

	persisted, err := s.Gateway(testutil.NewStaticUser(u.ID)).FetchCategoriesWithSubcategories(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, len(model.DefaultCategories))

	subs := 0
	for _, c := range persisted {
		subs += len(c.Subcategories)
	}
	assert.Equal(t, 9, subs)

	for _, r := range repos {
		require.NoError(t, r.Refetch(ctx))
		assert.Len(t, r.Categories(), len(model.DefaultCategories))
	}
}

func TestLoad_ConcurrentCallsShareOneSeed(t *testing.T) {
	_, base, _ := testutil.NewUserGateway(t)
	gw := testutil.NewFlakyGateway(base)
	repo := New(gw, logger.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Load(ctx))
		}()
	}
	wg.Wait()

	assert.Len(t, repo.Categories(), len(model.DefaultCategories))
	assert.LessOrEqual(t, gw.Calls(testutil.OpInsertCategory), len(model.DefaultCategories))
}

func TestFind(t *testing.T) {
	_, gw, _ := testutil.NewUserGateway(t)
	cat := testutil.SeedCategory(t, gw, "Work", 0, "Meetings")
	repo := New(gw, logger.Nop())
	require.NoError(t, repo.Load(context.Background()))

	got, ok := repo.Find(cat.ID)
	require.True(t, ok)
	assert.Equal(t, "Work", got.Name)

	sub, ok := repo.FindSubcategory(cat.Subcategories[0].ID)
	require.True(t, ok)
	assert.Equal(t, "Meetings", sub.Name)

	_, ok = repo.Find("missing")
	assert.False(t, ok)
}

func TestCategories_ReturnsCopy(t *testing.T) {
	_, gw, _ := testutil.NewUserGateway(t)
	testutil.SeedCategory(t, gw, "Work", 0, "Meetings")
	repo := New(gw, logger.Nop())
	require.NoError(t, repo.Load(context.Background()))

	cats := repo.Categories()
	cats[0].Name = "changed"
	cats[0].Subcategories[0].Name = "changed"

	again := repo.Categories()
	assert.Equal(t, "Work", again[0].Name)
	assert.Equal(t, "Meetings", again[0].Subcategories[0].Name)
}
