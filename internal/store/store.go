package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// pragmas are applied by the driver on every new connection.
var pragmas = []string{
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// Store owns the SQLite connection and hands out repositories.
type Store struct {
	db  *sqlx.DB
	log *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for migration and seeding messages.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string, opts ...Option) (*Store, error) {
	s := &Store{log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}

	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, &Error{Op: "open database", Err: err}
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, &Error{Op: "auto-migrate", Err: err}
	}

	// One connection, one statement in flight. Set after migration since
	// the migrator issues pragmas outside its own transaction.
	db.SetMaxOpenConns(1)

	// sqlx has no bind type registered under "sqlite"; "sqlite3" maps to
	// the same '?' placeholders.
	s.db = sqlx.NewDb(db, dialect.SQLite)
	s.log.Debug("store opened", zap.String("dsn", dsn))
	return s, nil
}

// migrate creates missing tables and columns. It never drops anything, so
// databases written by older releases keep their data.
func migrate(ctx context.Context, db *sql.DB) error {
	drv := entsql.OpenDB(dialect.SQLite, db)
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, Tables...)
}

// DB returns the underlying *sqlx.DB for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Repo returns a repository that runs each statement on its own.
func (s *Store) Repo() *Repo {
	return &Repo{q: s.db}
}

// View runs fn inside a transaction that is always rolled back. All reads
// made through the repository observe one consistent snapshot.
func (s *Store) View(ctx context.Context, fn func(*Repo) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &Error{Op: "begin read", Err: err}
	}
	defer tx.Rollback()
	return fn(&Repo{q: tx})
}

// Update runs fn inside a transaction, committing if fn returns nil.
func (s *Store) Update(ctx context.Context, fn func(*Repo) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &Error{Op: "begin write", Err: err}
	}
	if err := fn(&Repo{q: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return &Error{Op: "commit", Err: err}
	}
	return nil
}

// withPragmas appends the connection pragmas to dsn as _pragma query
// parameters, leaving any the caller already set alone.
func withPragmas(dsn string) string {
	var b strings.Builder
	b.WriteString(dsn)
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, p := range pragmas {
		name := p[:strings.IndexByte(p, '(')]
		if strings.Contains(dsn, "_pragma="+name) {
			continue
		}
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

// DefaultDBPath resolves the database file path in priority order:
// 1. PYLEARN_DB environment variable
// 2. $XDG_DATA_HOME/pylearn/pylearn.db
// 3. ~/.local/share/pylearn/pylearn.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("PYLEARN_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "pylearn.db")
	return p, EnsureDir(p)
}

// DataDir returns the per-user data directory ($XDG_DATA_HOME/pylearn or
// ~/.local/share/pylearn). It is not created.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "pylearn"), nil
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
