package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nhle/tasknest/internal/apperrors"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore is the managed store backing the gateway: a SQLite database
// holding profiles, categories, subcategories and todos.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables foreign keys and WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		dsn = "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if dbPath == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Gateway returns a client whose calls are scoped to the user reported by
// users, the way row-level security scopes a hosted database session.
func (s *SQLiteStore) Gateway(users UserSource) *Client {
	return &Client{db: s.db, users: users}
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Client is a user-scoped view of the store implementing Gateway.
type Client struct {
	db    *sqlx.DB
	users UserSource
}

var _ Gateway = (*Client)(nil)

// CurrentUserID returns the id of the signed-in user, or "" if none.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	id, err := c.users.CurrentUserID(ctx)
	if err != nil {
		return "", classify(err, "resolving current user")
	}
	return id, nil
}

// requireUser returns the current user id or ErrUnauthenticated.
func (c *Client) requireUser(ctx context.Context) (string, error) {
	id, err := c.CurrentUserID(ctx)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", apperrors.ErrUnauthenticated
	}
	return id, nil
}

// classify wraps a driver error with context and sorts it into the
// apperrors taxonomy. Already classified errors keep their kind.
func classify(err error, msg string) error {
	wrapped := fmt.Errorf("%s: %w", msg, err)

	var appErr *apperrors.Error
	switch {
	case errors.As(err, &appErr):
		return wrapped
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone):
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, wrapped)
	case isConstraint(err):
		return apperrors.Wrap(apperrors.ErrConstraint, wrapped)
	default:
		return apperrors.Wrap(apperrors.ErrStore, wrapped)
	}
}

// isConstraint reports whether err is a SQLite constraint violation
// (unique, foreign key, check, not null).
func isConstraint(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
