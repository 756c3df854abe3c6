// Package categories holds the signed-in user's category tree and seeds the
// default set for new users.
package categories

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/store"
)

// Option configures a Repository.
type Option func(*Repository)

// WithSeeds replaces the default category set inserted for new users.
func WithSeeds(seeds []model.SeedCategory) Option {
	return func(r *Repository) { r.seeds = seeds }
}

// Repository is the read-only category tree of the current user.
type Repository struct {
	gw    store.Gateway
	log   *zap.SugaredLogger
	seeds []model.SeedCategory
	loads singleflight.Group

	mu          sync.RWMutex
	categories  []model.Category
	loading     bool
	seeding     bool
	subscribers []func()
}

// New creates a repository. Nothing is fetched until Load.
func New(gw store.Gateway, log *zap.SugaredLogger, opts ...Option) *Repository {
	r := &Repository{
		gw:         gw,
		log:        log,
		seeds:      model.DefaultCategories,
		categories: []model.Category{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load fetches the category tree, seeding the defaults when the user has
// none. Concurrent calls share one fetch. A missing session and seeding
// problems are logged and leave the list empty; other fetch failures are
// returned.
func (r *Repository) Load(ctx context.Context) error {
	_, err, _ := r.loads.Do("load", func() (interface{}, error) {
		return nil, r.load(ctx)
	})
	return err
}

// Refetch reloads the tree without seeding.
func (r *Repository) Refetch(ctx context.Context) error {
	_, err, _ := r.loads.Do("refetch", func() (interface{}, error) {
		_, err := r.fetch(ctx)
		return nil, err
	})
	return err
}

func (r *Repository) load(ctx context.Context) error {
	cats, err := r.fetch(ctx)
	if apperrors.IsAuth(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		r.seed(ctx)
	}
	return nil
}

// fetch loads the tree and publishes it. On failure the previous tree is kept.
func (r *Repository) fetch(ctx context.Context) ([]model.Category, error) {
	r.setLoading(true)
	cats, err := r.gw.FetchCategoriesWithSubcategories(ctx)
	if err != nil {
		r.setLoading(false)
		r.log.Errorw("fetching categories", "error", err)
		return nil, err
	}

	r.mu.Lock()
	r.categories = cats
	r.loading = false
	r.mu.Unlock()
	r.notify()
	return cats, nil
}

// seed inserts the default categories. Another seeding run in this
// repository, or categories created by another session, make it back off.
func (r *Repository) seed(ctx context.Context) {
	r.mu.Lock()
	if r.seeding {
		r.mu.Unlock()
		return
	}
	r.seeding = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.seeding = false
		r.mu.Unlock()
	}()

	uid, err := r.gw.CurrentUserID(ctx)
	if err != nil || uid == "" {
		r.log.Infow("skipping category seeding: not signed in", "error", err)
		return
	}

	exists, err := r.gw.HasCategories(ctx)
	if err != nil {
		r.log.Warnw("checking categories before seeding", "user_id", uid, "error", err)
		return
	}
	if exists {
		r.log.Infow("categories created by another session", "user_id", uid)
		_, _ = r.fetch(ctx)
		return
	}

	if err := r.insertSeeds(ctx); err != nil {
		if !errors.Is(err, apperrors.ErrConstraint) {
			r.log.Warnw("seeding default categories", "user_id", uid, "error", err)
			return
		}
		r.log.Infow("default categories seeded concurrently", "user_id", uid)
	} else {
		r.log.Infow("seeded default categories", "user_id", uid, "count", len(r.seeds))
	}
	_, _ = r.fetch(ctx)
}

func (r *Repository) insertSeeds(ctx context.Context) error {
	for _, seed := range r.seeds {
		cat, err := r.gw.InsertCategory(ctx, model.Category{
			Name:       seed.Name,
			Icon:       seed.Icon,
			ColorLight: seed.ColorLight,
			ColorDark:  seed.ColorDark,
			SortOrder:  seed.SortOrder,
		})
		if err != nil {
			return err
		}
		if len(seed.Subcategories) == 0 {
			continue
		}

		subs := make([]model.Subcategory, 0, len(seed.Subcategories))
		for _, s := range seed.Subcategories {
			subs = append(subs, model.Subcategory{
				CategoryID: cat.ID,
				Name:       s.Name,
				Icon:       s.Icon,
				SortOrder:  s.SortOrder,
			})
		}
		if err := r.gw.InsertSubcategories(ctx, subs); err != nil {
			r.log.Warnw("seeding subcategories", "category", seed.Name, "error", err)
		}
	}
	return nil
}

// Categories returns a copy of the current tree.
func (r *Repository) Categories() []model.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Category, len(r.categories))
	for i, c := range r.categories {
		c.Subcategories = append([]model.Subcategory(nil), c.Subcategories...)
		out[i] = c
	}
	return out
}

// Loading reports whether a fetch is in progress.
func (r *Repository) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

// Find returns the category with the given id.
func (r *Repository) Find(id string) (model.Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}

// FindSubcategory returns the subcategory with the given id.
func (r *Repository) FindSubcategory(id string) (model.Subcategory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		for _, s := range c.Subcategories {
			if s.ID == id {
				return s, true
			}
		}
	}
	return model.Subcategory{}, false
}

// Subscribe registers fn to run after every published tree.
func (r *Repository) Subscribe(fn func()) {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, fn)
	r.mu.Unlock()
}

func (r *Repository) setLoading(v bool) {
	r.mu.Lock()
	r.loading = v
	r.mu.Unlock()
}

func (r *Repository) notify() {
	r.mu.RLock()
	subs := append([]func(){}, r.subscribers...)
	r.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}
