package store

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/model"
)

// gatewayMetrics holds the collectors shared by every instrumented call.
type gatewayMetrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newGatewayMetrics(reg prometheus.Registerer) *gatewayMetrics {
	factory := promauto.With(reg)
	return &gatewayMetrics{
		// Labels: op (gateway method), result (ok, validation, auth, not_found, network, store)
		ops: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tasknest",
			Subsystem: "store",
			Name:      "ops_total",
			Help:      "Gateway calls by operation and result",
		}, []string{"op", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tasknest",
			Subsystem: "store",
			Name:      "op_duration_seconds",
			Help:      "Gateway call latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"op"}),
	}
}

func (m *gatewayMetrics) observe(op string, start time.Time, err error) {
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = apperrors.KindOf(err).String()
	}
	m.ops.WithLabelValues(op, result).Inc()
}

// InstrumentedGateway records prometheus metrics around another Gateway.
type InstrumentedGateway struct {
	next    Gateway
	metrics *gatewayMetrics
}

var _ Gateway = (*InstrumentedGateway)(nil)

// Instrumented wraps next so every call is counted and timed. The
// collectors are registered on reg; pass prometheus.NewRegistry() to keep
// them out of the default registry.
func Instrumented(next Gateway, reg prometheus.Registerer) *InstrumentedGateway {
	return &InstrumentedGateway{next: next, metrics: newGatewayMetrics(reg)}
}

func (g *InstrumentedGateway) CurrentUserID(ctx context.Context) (string, error) {
	return g.next.CurrentUserID(ctx)
}

func (g *InstrumentedGateway) FetchTodos(ctx context.Context, q TodoQuery) ([]model.Todo, error) {
	start := time.Now()
	todos, err := g.next.FetchTodos(ctx, q)
	g.metrics.observe("fetch_todos", start, err)
	return todos, err
}

func (g *InstrumentedGateway) InsertTodo(ctx context.Context, todo model.Todo) (model.Todo, error) {
	start := time.Now()
	created, err := g.next.InsertTodo(ctx, todo)
	g.metrics.observe("insert_todo", start, err)
	return created, err
}

func (g *InstrumentedGateway) UpdateTodo(ctx context.Context, id string, patch model.TodoPatch) error {
	start := time.Now()
	err := g.next.UpdateTodo(ctx, id, patch)
	g.metrics.observe("update_todo", start, err)
	return err
}

func (g *InstrumentedGateway) DeleteTodo(ctx context.Context, id string) error {
	start := time.Now()
	err := g.next.DeleteTodo(ctx, id)
	g.metrics.observe("delete_todo", start, err)
	return err
}

func (g *InstrumentedGateway) FetchCategoriesWithSubcategories(ctx context.Context) ([]model.Category, error) {
	start := time.Now()
	cats, err := g.next.FetchCategoriesWithSubcategories(ctx)
	g.metrics.observe("fetch_categories", start, err)
	return cats, err
}

func (g *InstrumentedGateway) HasCategories(ctx context.Context) (bool, error) {
	start := time.Now()
	ok, err := g.next.HasCategories(ctx)
	g.metrics.observe("has_categories", start, err)
	return ok, err
}

func (g *InstrumentedGateway) InsertCategory(ctx context.Context, cat model.Category) (model.Category, error) {
	start := time.Now()
	created, err := g.next.InsertCategory(ctx, cat)
	g.metrics.observe("insert_category", start, err)
	return created, err
}

func (g *InstrumentedGateway) InsertSubcategories(ctx context.Context, subs []model.Subcategory) error {
	start := time.Now()
	err := g.next.InsertSubcategories(ctx, subs)
	g.metrics.observe("insert_subcategories", start, err)
	return err
}
