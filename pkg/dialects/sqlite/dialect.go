// Package sqlite provides the SQLite dialect for DocSQL, backed by the
// pure-Go modernc.org driver.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/docsql/pkg/dialect"
	"github.com/leapstack-labs/docsql/pkg/query"

	_ "modernc.org/sqlite" // sqlite driver
)

func init() {
	dialect.Register("sqlite", func() dialect.Dialect { return New() })
}

// Dialect implements dialect.Dialect for SQLite.
type Dialect struct{}

// New creates a new SQLite dialect instance.
func New() *Dialect {
	return &Dialect{}
}

// Name returns the dialect name.
func (d *Dialect) Name() string { return "sqlite" }

// DriverName returns the database/sql driver name.
func (d *Dialect) DriverName() string { return "sqlite" }

// Placeholder formats bind parameters; SQLite uses "?".
func (d *Dialect) Placeholder(n int) string { return query.Question(n) }

// ListTables returns all table names from sqlite_master, lower-cased.
// Internal sqlite_* tables are excluded.
func (d *Dialect) ListTables(ctx context.Context, q dialect.Queryer) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	names, err := dialect.ScanTableNames(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	for i, name := range names {
		names[i] = strings.ToLower(name)
	}
	return names, nil
}

// TruncateTable deletes all rows. SQLite has no TRUNCATE statement.
func (d *Dialect) TruncateTable(ctx context.Context, e dialect.Execer, table string) error {
	_, err := e.ExecContext(ctx, "DELETE FROM "+table)
	return err
}

// SetForeignKeyChecks toggles the foreign_keys pragma for the connection.
func (d *Dialect) SetForeignKeyChecks(ctx context.Context, e dialect.Execer, enabled bool) error {
	pragma := "PRAGMA foreign_keys = OFF"
	if enabled {
		pragma = "PRAGMA foreign_keys = ON"
	}
	_, err := e.ExecContext(ctx, pragma)
	return err
}

// InsertIDs derives batch ids. SQLite reports the rowid of the last
// inserted row, so the batch occupies (reported-n, reported].
func (d *Dialect) InsertIDs(reported, n int64) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = reported - n + 1 + int64(i)
	}
	return ids
}

var _ dialect.Dialect = (*Dialect)(nil)
