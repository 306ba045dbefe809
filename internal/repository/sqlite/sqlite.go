// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of the SQLite C sources — no CGo, no C
// compiler, cross-compiles everywhere Go does. A single-file embedded
// database is exactly the right size for a personal site: three small
// collections, one process, no database server to run.
//
// The comment↔reply linkage is deliberately kept in a separate
// comment_replies table rather than an enforced foreign key from replies:
// it models the comment's ordered reply-reference array, and both sides of
// the link are maintained together inside explicit transactions.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Blank import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// sql.DB is a pool, not a single connection — it is lazily established on
// first use and shared by every request in the process.
type DB struct {
	conn *sql.DB
}

// New creates a SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/portfolio.db" → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Force an immediate connection so a bad path or permissions problem
	// surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — important for a
	// web server where list requests overlap mutations.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer it next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the identity repository view of this database.
// The sub-repository types share the one connection pool; splitting them
// keeps each entity's SQL in its own file and its method set small.
func (db *DB) Users() *UserDB {
	return &UserDB{conn: db.conn}
}

// Comments returns the comment repository view of this database.
func (db *DB) Comments() *CommentDB {
	return &CommentDB{conn: db.conn}
}

// Replies returns the reply repository view of this database.
func (db *DB) Replies() *ReplyDB {
	return &ReplyDB{conn: db.conn}
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every start.
//
// The 1000/500 content bounds are also enforced at the service boundary;
// the CHECK constraints here are the storage-side mirror of the same rule,
// so a bug above this layer cannot persist an oversized body.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			username      TEXT NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			image         TEXT NOT NULL DEFAULT '/Default.jpg',
			provider      TEXT NOT NULL CHECK (provider IN ('manual', 'oauth')),
			provider_id   TEXT UNIQUE,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			content    TEXT NOT NULL CHECK (length(content) <= 1000),
			user_id    TEXT NOT NULL REFERENCES users(id),
			username   TEXT NOT NULL,
			user_image TEXT NOT NULL DEFAULT '/Default.jpg',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS replies (
			id         TEXT PRIMARY KEY,
			content    TEXT NOT NULL CHECK (length(content) <= 500),
			user_id    TEXT NOT NULL REFERENCES users(id),
			username   TEXT NOT NULL,
			user_image TEXT NOT NULL DEFAULT '/Default.jpg',
			comment_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating replies table: %w", err)
	}

	// The ordered reply-reference list owned by each comment. position is
	// append-only per comment; listing orders by it.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comment_replies (
			comment_id TEXT NOT NULL,
			reply_id   TEXT NOT NULL,
			position   INTEGER NOT NULL,
			PRIMARY KEY (comment_id, reply_id)
		);
		CREATE INDEX IF NOT EXISTS idx_comment_replies_order ON comment_replies(comment_id, position);
	`)
	if err != nil {
		return fmt.Errorf("creating comment_replies table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite exposes no typed constraint error, so we match the
// stable message prefix SQLite itself produces.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
