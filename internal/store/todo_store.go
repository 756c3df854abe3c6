package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/model"
)

const todoColumns = `id, user_id, category_id, subcategory_id, title, description,
	priority, is_completed, completed_at, deadline, sort_order, created_at, updated_at`

// todoRow is the column layout of the todos table.
type todoRow struct {
	ID            string     `db:"id"`
	UserID        string     `db:"user_id"`
	CategoryID    *string    `db:"category_id"`
	SubcategoryID *string    `db:"subcategory_id"`
	Title         string     `db:"title"`
	Description   *string    `db:"description"`
	Priority      string     `db:"priority"`
	IsCompleted   bool       `db:"is_completed"`
	CompletedAt   *time.Time `db:"completed_at"`
	Deadline      *string    `db:"deadline"`
	SortOrder     int        `db:"sort_order"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (r todoRow) toModel() (model.Todo, error) {
	todo := model.Todo{
		ID:            r.ID,
		UserID:        r.UserID,
		CategoryID:    r.CategoryID,
		SubcategoryID: r.SubcategoryID,
		Title:         r.Title,
		Description:   r.Description,
		Priority:      model.Priority(r.Priority),
		IsCompleted:   r.IsCompleted,
		CompletedAt:   r.CompletedAt,
		SortOrder:     r.SortOrder,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Deadline != nil && *r.Deadline != "" {
		d, err := civil.ParseDate(*r.Deadline)
		if err != nil {
			return model.Todo{}, fmt.Errorf("parsing deadline of todo %s: %w", r.ID, err)
		}
		todo.Deadline = &d
	}
	return todo, nil
}

// nullable converts an optional value into a column value.
func nullable[T any](v *T) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// dateArg converts an optional calendar date into a column value.
func dateArg(d *civil.Date) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

// FetchTodos returns the current user's todos matching q, ordered by
// sort_order ascending. A subcategory filter takes precedence over a
// category filter.
func (c *Client) FetchTodos(ctx context.Context, q TodoQuery) ([]model.Todo, error) {
	uid, err := c.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + todoColumns + " FROM todos WHERE user_id = ?"
	args := []interface{}{uid}

	switch {
	case q.Filter.SubcategoryID != nil:
		query += " AND subcategory_id = ?"
		args = append(args, *q.Filter.SubcategoryID)
	case q.Filter.CategoryID != nil:
		query += " AND category_id = ?"
		args = append(args, *q.Filter.CategoryID)
	}
	query += " ORDER BY sort_order ASC, created_at ASC"

	var rows []todoRow
	if err := c.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classify(err, "querying todos")
	}

	todos := make([]model.Todo, 0, len(rows))
	for _, r := range rows {
		todo, err := r.toModel()
		if err != nil {
			return nil, classify(err, "scanning todo row")
		}
		todos = append(todos, todo)
	}
	return todos, nil
}

// InsertTodo creates a todo owned by the current user and returns the
// stored row. The id and timestamps are assigned here; SortOrder is taken
// from the input.
func (c *Client) InsertTodo(ctx context.Context, todo model.Todo) (model.Todo, error) {
	uid, err := c.requireUser(ctx)
	if err != nil {
		return model.Todo{}, err
	}
	if strings.TrimSpace(todo.Title) == "" {
		return model.Todo{}, apperrors.ErrEmptyTitle
	}

	todo.ID = uuid.New().String()
	todo.UserID = uid
	now := time.Now().UTC()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	if todo.Priority == "" {
		todo.Priority = model.PriorityMedium
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO todos (
			id, user_id, category_id, subcategory_id, title, description,
			priority, is_completed, completed_at, deadline, sort_order,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		todo.ID, todo.UserID, nullable(todo.CategoryID), nullable(todo.SubcategoryID),
		todo.Title, nullable(todo.Description), string(todo.Priority),
		boolToInt(todo.IsCompleted), nullable(todo.CompletedAt), dateArg(todo.Deadline),
		todo.SortOrder, todo.CreatedAt, todo.UpdatedAt,
	)
	if err != nil {
		return model.Todo{}, classify(err, "creating todo")
	}

	var row todoRow
	err = c.db.GetContext(ctx, &row,
		"SELECT "+todoColumns+" FROM todos WHERE id = ?", todo.ID)
	if err != nil {
		return model.Todo{}, classify(err, fmt.Sprintf("reading back todo %s", todo.ID))
	}
	created, err := row.toModel()
	if err != nil {
		return model.Todo{}, classify(err, "scanning todo row")
	}
	return created, nil
}

// UpdateTodo applies a partial update to one of the current user's todos.
func (c *Client) UpdateTodo(ctx context.Context, id string, patch model.TodoPatch) error {
	uid, err := c.requireUser(ctx)
	if err != nil {
		return err
	}

	sets, args := patchAssignments(patch)
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id, uid)

	// A filter that matches nothing is not an error, same as a hosted store.
	_, err = c.db.ExecContext(ctx,
		"UPDATE todos SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?",
		args...,
	)
	if err != nil {
		return classify(err, fmt.Sprintf("updating todo %s", id))
	}
	return nil
}

// patchAssignments lists the SET clauses and arguments for a patch.
func patchAssignments(p model.TodoPatch) ([]string, []interface{}) {
	var sets []string
	var args []interface{}

	add := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.Title != nil {
		add("title", strings.TrimSpace(*p.Title))
	}
	if p.Description.Set {
		add("description", nullable(p.Description.Value))
	}
	if p.CategoryID.Set {
		add("category_id", nullable(p.CategoryID.Value))
	}
	if p.SubcategoryID.Set {
		add("subcategory_id", nullable(p.SubcategoryID.Value))
	}
	if p.Priority != nil {
		add("priority", string(*p.Priority))
	}
	if p.IsCompleted != nil {
		add("is_completed", boolToInt(*p.IsCompleted))
	}
	if p.CompletedAt.Set {
		add("completed_at", nullable(p.CompletedAt.Value))
	}
	if p.Deadline.Set {
		add("deadline", dateArg(p.Deadline.Value))
	}
	if p.SortOrder != nil {
		add("sort_order", *p.SortOrder)
	}
	if p.UpdatedAt != nil {
		add("updated_at", p.UpdatedAt.UTC())
	}
	return sets, args
}

// DeleteTodo removes one of the current user's todos. Deleting a todo that
// is already gone succeeds.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	uid, err := c.requireUser(ctx)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx,
		"DELETE FROM todos WHERE id = ? AND user_id = ?", id, uid)
	if err != nil {
		return classify(err, fmt.Sprintf("deleting todo %s", id))
	}
	return nil
}

// getTodo reads a single todo by id regardless of owner. Used by tests and
// maintenance code; the gateway never exposes it.
func (s *SQLiteStore) getTodo(ctx context.Context, id string) (*model.Todo, error) {
	var row todoRow
	err := s.db.GetContext(ctx, &row, "SELECT "+todoColumns+" FROM todos WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.WithMessage(apperrors.ErrTodoNotFound, fmt.Sprintf("todo %s not found", id))
	}
	if err != nil {
		return nil, classify(err, fmt.Sprintf("getting todo %s", id))
	}
	todo, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &todo, nil
}
