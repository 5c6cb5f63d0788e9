// Package docsql exposes a document-store style API (find, insert, update,
// remove, keyed by filter documents) executing against a relational backend.
//
// A DB is a session owning one pinned connection and one transaction shared
// by every table handle obtained from it: a commit or rollback on any handle
// affects all outstanding work across every table of the session. A DB is
// not safe for concurrent use; open one session per goroutine instead of
// sharing one.
package docsql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/leapstack-labs/docsql/pkg/dialect"
)

// TxMode governs whether mutating operations commit implicitly or require
// an explicit Commit call. It is fixed at session construction.
type TxMode int

const (
	// TxModeExplicit leaves mutations uncommitted until Commit is called.
	// This is the default.
	TxModeExplicit TxMode = iota

	// TxModeAuto commits every statement immediately.
	TxModeAuto
)

func (m TxMode) String() string {
	if m == TxModeAuto {
		return "auto"
	}
	return "explicit"
}

// Config holds the session configuration.
type Config struct {
	// Driver is the registered dialect name ("sqlite", "postgres",
	// "mysql", "duckdb").
	Driver string

	// DSN is the driver-specific data source name.
	// Use ":memory:" with the sqlite driver for an in-memory database.
	DSN string

	// TxMode selects implicit or explicit commits. Defaults to explicit.
	TxMode TxMode

	// Logger receives debug-level operation logs. Nil discards them.
	Logger *slog.Logger
}

// runner executes statements; satisfied by *sql.Conn and *sql.Tx.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// DB is a database session: it owns the pinned connection, the active
// transaction, and a cache of table handles keyed by name.
type DB struct {
	pool    *sql.DB
	conn    *sql.Conn
	dialect dialect.Dialect
	mode    TxMode
	logger  *slog.Logger

	tx     *sql.Tx
	tables map[string]*Table
	closed bool
}

// Open resolves the configured dialect, opens the driver and pins a single
// connection that every table handle of this session will share. The pinned
// connection is also what makes ":memory:" sqlite databases coherent, since
// each new connection to one would otherwise see a separate database.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	d, err := dialect.Get(cfg.Driver)
	if err != nil {
		return nil, err
	}

	pool, err := sql.Open(d.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d.Name(), err)
	}

	db, err := New(ctx, pool, d, cfg)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an existing database handle in a session. The session takes
// ownership of pool and closes it on Close.
func New(ctx context.Context, pool *sql.DB, d dialect.Dialect, cfg Config) (*DB, error) {
	conn, err := pool.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With(
		slog.String("session", uuid.NewString()),
		slog.String("dialect", d.Name()),
	)
	logger.Debug("session opened", slog.String("txmode", cfg.TxMode.String()))

	return &DB{
		pool:    pool,
		conn:    conn,
		dialect: d,
		mode:    cfg.TxMode,
		logger:  logger,
		tables:  make(map[string]*Table),
	}, nil
}

// Dialect returns the session's dialect.
func (db *DB) Dialect() dialect.Dialect { return db.dialect }

// Table returns the handle for the named table, constructing and caching it
// on first use. The name is case-sensitive as given, and repeated calls
// return the identical handle instance for the life of the session. All
// handles share the session's connection and transaction.
func (db *DB) Table(name string) *Table {
	if t, ok := db.tables[name]; ok {
		return t
	}
	t := &Table{
		db:       db,
		name:     name,
		compiler: dialect.Compiler(db.dialect),
	}
	db.tables[name] = t
	return t
}

// runner returns the execution target for the next statement: the active
// transaction under explicit mode (begun lazily), the pinned connection
// under auto mode.
func (db *DB) runner(ctx context.Context) (runner, error) {
	if db.closed {
		return nil, ErrSessionClosed
	}
	if db.mode == TxModeAuto {
		return db.conn, nil
	}
	if db.tx == nil {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return nil, &ExecError{Op: "begin", Err: err}
		}
		db.tx = tx
	}
	return db.tx, nil
}

// Commit commits the active transaction. It is a no-op when nothing is
// pending, and under auto mode there never is.
func (db *DB) Commit() error {
	if db.closed {
		return ErrSessionClosed
	}
	if db.tx == nil {
		return nil
	}
	tx := db.tx
	db.tx = nil
	if err := tx.Commit(); err != nil {
		return &ExecError{Op: "commit", Err: err}
	}
	db.logger.Debug("transaction committed")
	return nil
}

// Rollback discards the active transaction. No-op when nothing is pending.
func (db *DB) Rollback() error {
	if db.closed {
		return ErrSessionClosed
	}
	if db.tx == nil {
		return nil
	}
	tx := db.tx
	db.tx = nil
	if err := tx.Rollback(); err != nil {
		return &ExecError{Op: "rollback", Err: err}
	}
	db.logger.Debug("transaction rolled back")
	return nil
}

// ListTables returns the lower-cased names of all tables, including any
// created in the current uncommitted transaction.
func (db *DB) ListTables(ctx context.Context) ([]string, error) {
	r, err := db.runner(ctx)
	if err != nil {
		return nil, err
	}
	return db.dialect.ListTables(ctx, r)
}

// TableExists reports whether the named table exists. The check is
// case-insensitive: the name is lower-cased and matched against ListTables.
func (db *DB) TableExists(ctx context.Context, name string) (bool, error) {
	names, err := db.ListTables(ctx)
	if err != nil {
		return false, err
	}
	name = strings.ToLower(name)
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// CreateTable creates a table from raw column specs such as
// "id INTEGER NOT NULL". primaryKey, when non-nil, names the primary key
// columns and must not be empty. If the table already exists the call fails
// with TableExistsError unless forceRecreate is set, in which case the
// existing table is dropped first. Schema DDL commits immediately.
func (db *DB) CreateTable(ctx context.Context, name string, columns, primaryKey []string, forceRecreate bool) error {
	if len(columns) == 0 {
		return &InvalidSchemaError{Reason: "at least one column spec required"}
	}
	if primaryKey != nil && len(primaryKey) == 0 {
		return &InvalidSchemaError{Reason: "primary key must contain at least one column"}
	}

	exists, err := db.TableExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		if !forceRecreate {
			return &TableExistsError{Table: name}
		}
		if err := db.DropTable(ctx, name, true); err != nil {
			return err
		}
	}

	specs := strings.Join(columns, ", ")
	if len(primaryKey) > 0 {
		specs += ", PRIMARY KEY (" + strings.Join(primaryKey, ", ") + ")"
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", name, specs)

	r, err := db.runner(ctx)
	if err != nil {
		return err
	}
	db.logger.Debug("creating table", slog.String("table", name), slog.String("sql", stmt))
	if _, err := r.ExecContext(ctx, stmt); err != nil {
		return &ExecError{Op: "create table", Table: name, Err: err}
	}
	return db.Commit()
}

// DropTable drops a table. If the table does not exist the call fails with
// TableNotFoundError unless silent is set. The drop itself is unconditional
// (DROP TABLE IF EXISTS) and commits immediately.
func (db *DB) DropTable(ctx context.Context, name string, silent bool) error {
	if !silent {
		exists, err := db.TableExists(ctx, name)
		if err != nil {
			return err
		}
		if !exists {
			return &TableNotFoundError{Table: name}
		}
	}

	r, err := db.runner(ctx)
	if err != nil {
		return err
	}
	db.logger.Debug("dropping table", slog.String("table", name))
	if _, err := r.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return &ExecError{Op: "drop table", Table: name, Err: err}
	}
	return db.Commit()
}

// TruncateTable removes all rows from a table via the dialect, which falls
// back to an unconditional DELETE on backends without native TRUNCATE.
// Unlike DDL, truncation follows the session's transaction mode.
func (db *DB) TruncateTable(ctx context.Context, name string) error {
	r, err := db.runner(ctx)
	if err != nil {
		return err
	}
	db.logger.Debug("truncating table", slog.String("table", name))
	if err := db.dialect.TruncateTable(ctx, r, name); err != nil {
		return &ExecError{Op: "truncate table", Table: name, Err: err}
	}
	return nil
}

// SetForeignKeyChecks toggles foreign key enforcement for this session.
// Disabling it is useful for bulk deletes on self-referential tables. The
// pragma runs directly on the pinned connection, outside any open
// transaction, because some backends (sqlite) ignore it mid-transaction.
func (db *DB) SetForeignKeyChecks(ctx context.Context, enabled bool) error {
	if db.closed {
		return ErrSessionClosed
	}
	db.logger.Debug("setting foreign key checks", slog.Bool("enabled", enabled))
	if err := db.dialect.SetForeignKeyChecks(ctx, db.conn, enabled); err != nil {
		return &ExecError{Op: "set foreign key checks", Err: err}
	}
	return nil
}

// Close releases the pinned connection and the underlying handle, and
// invalidates the table handle cache. Any uncommitted work is discarded.
// Using the session or a stale table handle afterwards returns
// ErrSessionClosed.
func (db *DB) Close() error {
	if db.closed {
		return nil
	}
	db.closed = true
	db.tables = make(map[string]*Table)

	if db.tx != nil {
		_ = db.tx.Rollback()
		db.tx = nil
	}

	var firstErr error
	if err := db.conn.Close(); err != nil {
		firstErr = err
	}
	if err := db.pool.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	db.logger.Debug("session closed")
	if firstErr != nil {
		return fmt.Errorf("failed to close session: %w", firstErr)
	}
	return nil
}
