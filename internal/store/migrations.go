package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
	id           TEXT PRIMARY KEY,
	email        TEXT NOT NULL UNIQUE,
	display_name TEXT,
	avatar_url   TEXT,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS categories (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	icon        TEXT NOT NULL DEFAULT '',
	color_light TEXT NOT NULL DEFAULT '',
	color_dark  TEXT NOT NULL DEFAULT '',
	sort_order  INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_user_sort
	ON categories(user_id, sort_order);

CREATE TABLE IF NOT EXISTS subcategories (
	id          TEXT PRIMARY KEY,
	category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	user_id     TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	icon        TEXT NOT NULL DEFAULT '',
	sort_order  INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_subcategories_category_sort
	ON subcategories(category_id, sort_order);
CREATE INDEX IF NOT EXISTS idx_subcategories_user_id ON subcategories(user_id);

CREATE TABLE IF NOT EXISTS todos (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	category_id    TEXT REFERENCES categories(id) ON DELETE SET NULL,
	subcategory_id TEXT REFERENCES subcategories(id) ON DELETE SET NULL,
	title          TEXT NOT NULL CHECK(length(trim(title)) > 0),
	description    TEXT,
	priority       TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('high', 'medium', 'low')),
	is_completed   INTEGER NOT NULL DEFAULT 0 CHECK(is_completed IN (0, 1)),
	completed_at   DATETIME,
	deadline       TEXT,
	sort_order     INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_todos_user_sort ON todos(user_id, sort_order);
CREATE INDEX IF NOT EXISTS idx_todos_category_id ON todos(category_id);
CREATE INDEX IF NOT EXISTS idx_todos_subcategory_id ON todos(subcategory_id);
CREATE INDEX IF NOT EXISTS idx_todos_deadline ON todos(deadline);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_todos_user_completed_at
	ON todos(user_id, completed_at);
CREATE INDEX IF NOT EXISTS idx_todos_user_created_at
	ON todos(user_id, created_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
