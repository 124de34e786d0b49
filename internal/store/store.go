package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const (
	tableContentState = "content_state"
	tableStatements   = "statements"
)

// Store holds the database connection and provides access to repositories.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	counter *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	counter, err := newSequenceCounter(db)
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, counter: counter}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// StateRepo returns a StateRepo backed by this store.
func (s *Store) StateRepo() StateRepo {
	return &stateRepo{drv: s.drv}
}

// StatementRepo returns a StatementRepo backed by this store.
func (s *Store) StatementRepo() StatementRepo {
	return &statementRepo{drv: s.drv, counter: s.counter}
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// migrate creates the tables this store needs if they don't exist.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	tables := []*entsql.TableBuilder{
		builder().CreateTable(tableContentState).IfNotExists().
			Columns(
				entsql.Column("content_id").Type("TEXT").Attr("PRIMARY KEY"),
				entsql.Column("state").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("view_state").Type("INTEGER").Attr("NOT NULL"),
				entsql.Column("updated_at").Type("INTEGER").Attr("NOT NULL"),
			),
		builder().CreateTable(tableStatements).IfNotExists().
			Columns(
				entsql.Column("id").Type("INTEGER").Attr("PRIMARY KEY AUTOINCREMENT"),
				entsql.Column("sequence").Type("INTEGER").Attr("NOT NULL"),
				entsql.Column("batch_seq").Type("INTEGER").Attr("NOT NULL"),
				entsql.Column("content_id").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("statement_id").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("object_id").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("interaction_type").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("registration").Type("TEXT").Attr("NOT NULL"),
				entsql.Column("score_raw").Type("REAL"),
				entsql.Column("score_max").Type("REAL"),
				entsql.Column("emitted_at").Type("INTEGER").Attr("NOT NULL"),
				entsql.Column("data").Type("TEXT").Attr("NOT NULL"),
			),
	}
	for _, t := range tables {
		query, args := t.Query()
		if err := drv.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path:
// $XDG_DATA_HOME/speakset/speakset.db, or ~/.local/share/speakset/speakset.db.
func DefaultDBPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "speakset", "speakset.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
