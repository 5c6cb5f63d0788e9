// Package postgres provides the PostgreSQL dialect for DocSQL, backed by
// the pgx driver in database/sql compatibility mode.
package postgres

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/docsql/pkg/dialect"
	"github.com/leapstack-labs/docsql/pkg/query"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

func init() {
	dialect.Register("postgres", func() dialect.Dialect { return New() })
}

// Dialect implements dialect.Dialect for PostgreSQL.
type Dialect struct{}

// New creates a new PostgreSQL dialect instance.
func New() *Dialect {
	return &Dialect{}
}

// Name returns the dialect name.
func (d *Dialect) Name() string { return "postgres" }

// DriverName returns the database/sql driver name.
func (d *Dialect) DriverName() string { return "pgx" }

// Placeholder formats bind parameters; PostgreSQL uses "$1", "$2", ...
func (d *Dialect) Placeholder(n int) string { return query.Dollar(n) }

// ListTables returns all base tables in the public schema. PostgreSQL
// folds unquoted identifiers to lower case already.
func (d *Dialect) ListTables(ctx context.Context, q dialect.Queryer) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_type = 'BASE TABLE'`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	names, err := dialect.ScanTableNames(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return names, nil
}

// TruncateTable uses PostgreSQL's native TRUNCATE.
func (d *Dialect) TruncateTable(ctx context.Context, e dialect.Execer, table string) error {
	_, err := e.ExecContext(ctx, "TRUNCATE TABLE "+table)
	return err
}

// SetForeignKeyChecks toggles trigger-based constraint enforcement via
// session_replication_role, the closest PostgreSQL equivalent of MySQL's
// foreign_key_checks. Requires superuser or appropriate grants.
func (d *Dialect) SetForeignKeyChecks(ctx context.Context, e dialect.Execer, enabled bool) error {
	role := "replica"
	if enabled {
		role = "origin"
	}
	_, err := e.ExecContext(ctx, "SET session_replication_role = "+role)
	return err
}

// InsertIDs returns nil: the pgx driver does not report LastInsertId.
// Callers needing generated keys should select them back or use a
// client-assigned key.
func (d *Dialect) InsertIDs(reported, n int64) []int64 {
	return nil
}

var _ dialect.Dialect = (*Dialect)(nil)
