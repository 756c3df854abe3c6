// Package session wires the per-user service graph: store, identity,
// repositories and view projector. Everything a command or the board needs
// hangs off a Session; nothing is kept in package-level state.
package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/99designs/keyring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/auth"
	"github.com/nhle/tasknest/internal/categories"
	"github.com/nhle/tasknest/internal/credential"
	"github.com/nhle/tasknest/internal/logger"
	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/store"
	"github.com/nhle/tasknest/internal/todos"
	"github.com/nhle/tasknest/internal/views"
)

// Option customizes Open.
type Option func(*options)

type options struct {
	log      *zap.SugaredLogger
	ring     keyring.Keyring
	registry prometheus.Registerer
	now      func() time.Time
}

// WithLogger uses log instead of building one from the config.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) { o.log = log }
}

// WithKeyring stores the session token in ring instead of the system keyring.
func WithKeyring(ring keyring.Keyring) Option {
	return func(o *options) { o.ring = ring }
}

// WithRegisterer registers the gateway metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// WithClock sets the time source of the todo repository.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Session is one user's service graph.
type Session struct {
	Config     *model.AppConfig
	Log        *zap.SugaredLogger
	Store      *store.SQLiteStore
	Auth       *auth.Service
	Gateway    store.Gateway
	Categories *categories.Repository
	Todos      *todos.Repository
	Projector  *views.Projector
	Metrics    *prometheus.Registry

	ownsLog bool
}

// Open builds a session from cfg. The caller must Close it.
func Open(ctx context.Context, cfg *model.AppConfig, opts ...Option) (*Session, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{Config: cfg, Log: o.log}
	if s.Log == nil {
		log, err := logger.New(cfg.Log.Env, cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		s.Log = log
		s.ownsLog = true
	}

	sortBy, err := model.ParseSortOption(cfg.Display.SortBy)
	if err != nil {
		s.closeLog()
		return nil, fmt.Errorf("display.sort_by: %w", err)
	}

	db, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		s.closeLog()
		return nil, fmt.Errorf("opening store: %w", err)
	}
	s.Store = db

	var vault *credential.Vault
	if o.ring != nil {
		vault = credential.NewVaultWithKeyring(o.ring)
	} else {
		vault, err = credential.NewVault(credential.Options{
			Backend: cfg.Auth.KeyringBackend,
			FileDir: cfg.Auth.KeyringDir,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	reg := o.registry
	if reg == nil {
		s.Metrics = prometheus.NewRegistry()
		reg = s.Metrics
	}

	s.Auth = auth.New(db, vault, s.Log.Named("auth"))
	s.Gateway = store.Instrumented(db.Gateway(s.Auth), reg)
	s.Categories = categories.New(s.Gateway, s.Log.Named("categories"))
	s.Todos = todos.New(s.Gateway, s.Log.Named("todos"),
		todos.WithSort(sortBy),
		todos.WithSequencedFetches(cfg.Sync.SequenceFetches),
		todos.WithClock(o.now),
	)
	s.Projector = views.NewProjector()

	s.Log.Debugw("session opened", "store", cfg.Store.Path)
	return s, nil
}

// Timeout returns a context bounded by store.timeout_sec.
func (s *Session) Timeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, time.Duration(s.Config.Store.TimeoutSec)*time.Second)
}

// Load fetches the category tree (seeding defaults for new users) and the
// todo list for the active filter.
func (s *Session) Load(ctx context.Context) error {
	if err := s.Categories.Load(ctx); err != nil {
		return err
	}
	return s.Todos.Refetch(ctx)
}

// Board returns the memoized list projection of the current todos.
func (s *Session) Board() views.Board {
	return s.Projector.Board(s.Todos.Todos(), s.Todos.SortBy())
}

// WriteMetrics writes the session's gateway metrics to w in the Prometheus
// text format. It writes nothing when metrics go to an external registerer.
func (s *Session) WriteMetrics(w io.Writer) error {
	if s.Metrics == nil {
		return nil
	}
	families, err := s.Metrics.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

// Close releases the store and flushes the logger.
func (s *Session) Close() error {
	var err error
	if s.Store != nil {
		err = s.Store.Close()
		s.Store = nil
	}
	s.closeLog()
	return err
}

func (s *Session) closeLog() {
	if s.ownsLog {
		logger.Sync(s.Log)
		s.ownsLog = false
	}
}

// RequireUser returns the signed-in user or ErrUnauthenticated.
func (s *Session) RequireUser(ctx context.Context) (*model.User, error) {
	u, err := s.Auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return u, nil
}
