package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasknest/internal/model"
)

func TestProjector_MemoizesOnInputs(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	todos := []model.Todo{
		{ID: "1", Priority: model.PriorityLow, CreatedAt: base},
		{ID: "2", Priority: model.PriorityHigh, CreatedAt: base.Add(time.Minute)},
	}
	p := NewProjector()

	b := p.Board(todos, model.SortByPriority)
	assert.Equal(t, []string{"2", "1"}, ids(b.Active))
	assert.Equal(t, 2, b.Counts[CountAll])

	p.Board(append([]model.Todo(nil), todos...), model.SortByPriority)
	assert.Equal(t, 1, p.Computations())

	b = p.Board(todos, model.SortByCreatedAt)
	assert.Equal(t, 2, p.Computations())
	assert.Equal(t, []string{"2", "1"}, ids(b.Active))

	done := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	changed := append([]model.Todo(nil), todos...)
	changed[0].IsCompleted = true
	changed[0].CompletedAt = &done
	b = p.Board(changed, model.SortByCreatedAt)
	assert.Equal(t, 3, p.Computations())
	assert.Equal(t, []string{"2"}, ids(b.Active))
	assert.Equal(t, []string{"1"}, ids(b.Completed))
	assert.Equal(t, 1, b.Counts[CountAll])
}

func TestProjector_DescriptionEditRecomputes(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	before := "draft"
	todos := []model.Todo{{ID: "1", Priority: model.PriorityLow, Description: &before, CreatedAt: base, UpdatedAt: base}}
	p := NewProjector()

	b := p.Board(todos, model.SortByCreatedAt)
	require.Len(t, b.Active, 1)
	assert.Equal(t, "draft", *b.Active[0].Description)

	after := "final"
	edited := []model.Todo{todos[0]}
	edited[0].Description = &after
	b = p.Board(edited, model.SortByCreatedAt)
	assert.Equal(t, 2, p.Computations())
	assert.Equal(t, "final", *b.Active[0].Description)

	edited[0].Description = nil
	b = p.Board(edited, model.SortByCreatedAt)
	assert.Equal(t, 3, p.Computations())
	assert.Nil(t, b.Active[0].Description)
}
