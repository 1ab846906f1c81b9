package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/liftlab/coach-engine/internal/config"
)

// Common errors.
var (
	ErrNotFound = errors.New("record not found")
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB bundles a sql.DB with the driver it was opened with. The full-text
// index only exists on SQLite; repositories consult the driver to decide
// which query paths are available.
type DB struct {
	*sql.DB
	Driver string

	ftsAvailable bool
}

// Open opens a database connection for the configured driver.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case DriverSQLite:
		dsn := fmt.Sprintf("file:%s?_journal_mode=%s&_foreign_keys=on", cfg.SQLite.Path, cfg.SQLite.JournalMode)
		db, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		maxConns := cfg.SQLite.MaxOpenConns
		if maxConns <= 0 {
			maxConns = 1
		}
		db.SetMaxOpenConns(maxConns)
		return &DB{DB: db, Driver: DriverSQLite}, nil

	case DriverPostgres:
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		return &DB{DB: db, Driver: DriverPostgres}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// OpenInMemory opens a throwaway in-memory SQLite database. Useful in tests.
func OpenInMemory() (*DB, error) {
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &DB{DB: db, Driver: DriverSQLite}, nil
}

// sqliteSchema creates the knowledge and feedback tables.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS knowledge_items (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		source_url TEXT,
		tags TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS ix_knowledge_title ON knowledge_items(title)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		session_id TEXT,
		goal TEXT,
		experience_level TEXT,
		rpe INTEGER,
		adherence INTEGER,
		notes TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS ix_feedback_session ON feedback(session_id)`,
}

// sqliteFTSSchema creates the FTS5 index with triggers that keep it in sync
// with knowledge_items. Applied best-effort: the linked SQLite may lack the
// fts5 module (go-sqlite3 compiles it behind the sqlite_fts5 build tag), in
// which case search degrades to the substring path.
var sqliteFTSSchema = []string{
	`CREATE VIRTUAL TABLE IF NOT EXISTS knowledge_fts USING fts5(
		title, content, tags, content='knowledge_items', content_rowid='id'
	)`,
	`CREATE TRIGGER IF NOT EXISTS knowledge_ai AFTER INSERT ON knowledge_items BEGIN
		INSERT INTO knowledge_fts(rowid, title, content, tags)
		VALUES (new.id, new.title, new.content, new.tags);
	END`,
	`CREATE TRIGGER IF NOT EXISTS knowledge_ad AFTER DELETE ON knowledge_items BEGIN
		INSERT INTO knowledge_fts(knowledge_fts, rowid, title, content, tags)
		VALUES('delete', old.id, old.title, old.content, old.tags);
	END`,
	`CREATE TRIGGER IF NOT EXISTS knowledge_au AFTER UPDATE ON knowledge_items BEGIN
		INSERT INTO knowledge_fts(knowledge_fts, rowid, title, content, tags)
		VALUES('delete', old.id, old.title, old.content, old.tags);
		INSERT INTO knowledge_fts(rowid, title, content, tags)
		VALUES (new.id, new.title, new.content, new.tags);
	END`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS knowledge_items (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		content TEXT NOT NULL,
		source_url VARCHAR(500),
		tags VARCHAR(200)
	)`,
	`CREATE INDEX IF NOT EXISTS ix_knowledge_title ON knowledge_items(title)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		session_id VARCHAR(64),
		goal VARCHAR(64),
		experience_level VARCHAR(32),
		rpe INTEGER,
		adherence INTEGER,
		notes TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS ix_feedback_session ON feedback(session_id)`,
}

// Migrate applies the idempotent schema for the connected driver. The FTS5
// index is optional: when the fts5 module is missing the database still
// migrates and FTSAvailable reports false.
func (db *DB) Migrate() error {
	stmts := sqliteSchema
	if db.Driver == DriverPostgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	if db.Driver != DriverSQLite {
		return nil
	}
	for _, stmt := range sqliteFTSSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.ftsAvailable = false
			return nil
		}
	}
	db.ftsAvailable = true
	return nil
}

// FTSAvailable reports whether the full-text index was created. Only ever
// true on SQLite, and only after Migrate.
func (db *DB) FTSAvailable() bool {
	return db.ftsAvailable
}

// placeholder returns the positional placeholder for the connected driver.
func (db *DB) placeholder(n int) string {
	if db.Driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
