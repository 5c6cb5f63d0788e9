// Package duckdb provides the DuckDB dialect for DocSQL.
package duckdb

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/docsql/pkg/dialect"
	"github.com/leapstack-labs/docsql/pkg/query"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	dialect.Register("duckdb", func() dialect.Dialect { return New() })
}

// Dialect implements dialect.Dialect for DuckDB.
type Dialect struct{}

// New creates a new DuckDB dialect instance.
func New() *Dialect {
	return &Dialect{}
}

// Name returns the dialect name.
func (d *Dialect) Name() string { return "duckdb" }

// DriverName returns the database/sql driver name.
func (d *Dialect) DriverName() string { return "duckdb" }

// Placeholder formats bind parameters; DuckDB uses "?".
func (d *Dialect) Placeholder(n int) string { return query.Question(n) }

// ListTables returns all base tables in the main schema, lower-cased by
// DuckDB's identifier folding.
func (d *Dialect) ListTables(ctx context.Context, q dialect.Queryer) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = 'main'`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	names, err := dialect.ScanTableNames(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return names, nil
}

// TruncateTable deletes all rows. DELETE is used instead of DuckDB's
// TRUNCATE so the statement works inside an open transaction.
func (d *Dialect) TruncateTable(ctx context.Context, e dialect.Execer, table string) error {
	_, err := e.ExecContext(ctx, "DELETE FROM "+table)
	return err
}

// SetForeignKeyChecks is not supported: DuckDB has no session-level toggle
// for constraint enforcement.
func (d *Dialect) SetForeignKeyChecks(ctx context.Context, e dialect.Execer, enabled bool) error {
	return fmt.Errorf("duckdb does not support toggling foreign key checks")
}

// InsertIDs returns nil: the duckdb driver does not report LastInsertId.
func (d *Dialect) InsertIDs(reported, n int64) []int64 {
	return nil
}

var _ dialect.Dialect = (*Dialect)(nil)
