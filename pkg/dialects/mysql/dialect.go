// Package mysql provides the MySQL dialect for DocSQL.
package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/docsql/pkg/dialect"
	"github.com/leapstack-labs/docsql/pkg/query"

	_ "github.com/go-sql-driver/mysql" // mysql driver
)

func init() {
	dialect.Register("mysql", func() dialect.Dialect { return New() })
}

// Dialect implements dialect.Dialect for MySQL.
type Dialect struct{}

// New creates a new MySQL dialect instance.
func New() *Dialect {
	return &Dialect{}
}

// Name returns the dialect name.
func (d *Dialect) Name() string { return "mysql" }

// DriverName returns the database/sql driver name.
func (d *Dialect) DriverName() string { return "mysql" }

// Placeholder formats bind parameters; MySQL uses "?".
func (d *Dialect) Placeholder(n int) string { return query.Question(n) }

// ListTables returns all table names in the current database, lower-cased.
func (d *Dialect) ListTables(ctx context.Context, q dialect.Queryer) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SHOW TABLES")
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

// TruncateTable uses MySQL's native TRUNCATE.
func (d *Dialect) TruncateTable(ctx context.Context, e dialect.Execer, table string) error {
	_, err := e.ExecContext(ctx, "TRUNCATE TABLE "+table)
	return err
}

// SetForeignKeyChecks toggles the foreign_key_checks session variable.
// Disabling it is useful when deleting from a table with a foreign key
// pointing to itself.
func (d *Dialect) SetForeignKeyChecks(ctx context.Context, e dialect.Execer, enabled bool) error {
	value := 0
	if enabled {
		value = 1
	}
	_, err := e.ExecContext(ctx, fmt.Sprintf("SET foreign_key_checks = %d", value))
	return err
}

// InsertIDs derives batch ids. MySQL reports the id of the first inserted
// row, so the batch occupies [reported, reported+n).
func (d *Dialect) InsertIDs(reported, n int64) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = reported + int64(i)
	}
	return ids
}

var _ dialect.Dialect = (*Dialect)(nil)
