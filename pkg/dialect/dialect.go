// Package dialect provides the backend dialect contract for DocSQL.
//
// This package contains the public contract that all backend dialects must
// implement. Concrete dialect implementations are in pkg/dialects/
// subdirectories and register themselves via init().
package dialect

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/docsql/pkg/query"
)

// Execer executes statements that do not return rows. Satisfied by *sql.DB,
// *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, sql string, args ...any) (sql.Result, error)
}

// Queryer executes statements that return rows.
type Queryer interface {
	QueryContext(ctx context.Context, sql string, args ...any) (*sql.Rows, error)
}

// Dialect captures everything backend-specific the session needs: which
// database/sql driver to open, how to format bind placeholders, and the
// schema operations that have no portable SQL spelling.
type Dialect interface {
	// Name returns the dialect name ("sqlite", "postgres", ...).
	Name() string

	// DriverName returns the database/sql driver name to open.
	DriverName() string

	// Placeholder formats the bind parameter at 1-based position n.
	Placeholder(n int) string

	// ListTables returns the names of all tables, lower-cased.
	ListTables(ctx context.Context, q Queryer) ([]string, error)

	// TruncateTable removes all rows from a table. Dialects without a
	// native TRUNCATE fall back to an unconditional DELETE.
	TruncateTable(ctx context.Context, e Execer, table string) error

	// SetForeignKeyChecks toggles foreign key enforcement for the session.
	// Dialects without a session-level toggle return an error.
	SetForeignKeyChecks(ctx context.Context, e Execer, enabled bool) error

	// InsertIDs derives the generated ids of an n-row insert from the
	// driver-reported LastInsertId. Returns nil when the backend does not
	// report generated ids.
	InsertIDs(reported, n int64) []int64
}

// Compiler returns a query compiler using the dialect's placeholder style.
func Compiler(d Dialect) *query.Compiler {
	return query.NewCompiler(d.Placeholder)
}

// ScanTableNames drains a single-column result set of table names.
// Shared by dialect implementations.
func ScanTableNames(rows *sql.Rows) ([]string, error) {
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
