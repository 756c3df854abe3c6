package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/model"
)

type categoryRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Name       string    `db:"name"`
	Icon       string    `db:"icon"`
	ColorLight string    `db:"color_light"`
	ColorDark  string    `db:"color_dark"`
	SortOrder  int       `db:"sort_order"`
	CreatedAt  time.Time `db:"created_at"`
}

type subcategoryRow struct {
	ID         string    `db:"id"`
	CategoryID string    `db:"category_id"`
	UserID     string    `db:"user_id"`
	Name       string    `db:"name"`
	Icon       string    `db:"icon"`
	SortOrder  int       `db:"sort_order"`
	CreatedAt  time.Time `db:"created_at"`
}

// FetchCategoriesWithSubcategories returns the current user's categories
// ordered by sort_order, each carrying its subcategories ordered the same way.
func (c *Client) FetchCategoriesWithSubcategories(ctx context.Context) ([]model.Category, error) {
	uid, err := c.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var catRows []categoryRow
	err = c.db.SelectContext(ctx, &catRows, `
		SELECT id, user_id, name, icon, color_light, color_dark, sort_order, created_at
		FROM categories WHERE user_id = ? ORDER BY sort_order`, uid)
	if err != nil {
		return nil, classify(err, "querying categories")
	}

	var subRows []subcategoryRow
	err = c.db.SelectContext(ctx, &subRows, `
		SELECT id, category_id, user_id, name, icon, sort_order, created_at
		FROM subcategories WHERE user_id = ? ORDER BY sort_order`, uid)
	if err != nil {
		return nil, classify(err, "querying subcategories")
	}

	byCategory := make(map[string][]model.Subcategory, len(catRows))
	for _, r := range subRows {
		byCategory[r.CategoryID] = append(byCategory[r.CategoryID], model.Subcategory(r))
	}

	categories := make([]model.Category, 0, len(catRows))
	for _, r := range catRows {
		subs := byCategory[r.ID]
		if subs == nil {
			subs = []model.Subcategory{}
		}
		categories = append(categories, model.Category{
			ID:            r.ID,
			UserID:        r.UserID,
			Name:          r.Name,
			Icon:          r.Icon,
			ColorLight:    r.ColorLight,
			ColorDark:     r.ColorDark,
			SortOrder:     r.SortOrder,
			CreatedAt:     r.CreatedAt,
			Subcategories: subs,
		})
	}
	return categories, nil
}

// HasCategories reports whether the current user owns at least one category.
func (c *Client) HasCategories(ctx context.Context) (bool, error) {
	uid, err := c.requireUser(ctx)
	if err != nil {
		return false, err
	}

	var id string
	err = c.db.GetContext(ctx, &id,
		"SELECT id FROM categories WHERE user_id = ? LIMIT 1", uid)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify(err, "checking categories")
	}
	return true, nil
}

// InsertCategory creates a category owned by the current user. The
// subcategory list of cat is ignored; use InsertSubcategories.
func (c *Client) InsertCategory(ctx context.Context, cat model.Category) (model.Category, error) {
	uid, err := c.requireUser(ctx)
	if err != nil {
		return model.Category{}, err
	}
	if strings.TrimSpace(cat.Name) == "" {
		return model.Category{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name must not be empty")
	}

	cat.ID = uuid.New().String()
	cat.UserID = uid
	cat.CreatedAt = time.Now().UTC()
	cat.Subcategories = []model.Subcategory{}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, icon, color_light, color_dark, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cat.ID, cat.UserID, cat.Name, cat.Icon,
		cat.ColorLight, cat.ColorDark, cat.SortOrder, cat.CreatedAt,
	)
	if err != nil {
		return model.Category{}, classify(err, "creating category")
	}
	return cat, nil
}

// InsertSubcategories creates a batch of subcategories in one transaction.
// Every parent category must belong to the current user.
func (c *Client) InsertSubcategories(ctx context.Context, subs []model.Subcategory) error {
	if len(subs) == 0 {
		return nil
	}
	uid, err := c.requireUser(ctx)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(err, "beginning transaction")
	}
	defer tx.Rollback()

	checked := make(map[string]bool)
	for _, sub := range subs {
		if checked[sub.CategoryID] {
			continue
		}
		var owned int
		err := tx.GetContext(ctx, &owned,
			"SELECT COUNT(*) FROM categories WHERE id = ? AND user_id = ?",
			sub.CategoryID, uid)
		if err != nil {
			return classify(err, fmt.Sprintf("checking category %s", sub.CategoryID))
		}
		if owned == 0 {
			return apperrors.WithMessage(apperrors.ErrCategoryNotFound,
				fmt.Sprintf("category %s not found", sub.CategoryID))
		}
		checked[sub.CategoryID] = true
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO subcategories (id, category_id, user_id, name, icon, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return classify(err, "preparing subcategory insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, sub := range subs {
		if strings.TrimSpace(sub.Name) == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "subcategory name must not be empty")
		}
		_, err := stmt.ExecContext(ctx,
			uuid.New().String(), sub.CategoryID, uid,
			sub.Name, sub.Icon, sub.SortOrder, now,
		)
		if err != nil {
			return classify(err, fmt.Sprintf("creating subcategory %q", sub.Name))
		}
	}

	if err := tx.Commit(); err != nil {
		return classify(err, "committing subcategories")
	}
	return nil
}
