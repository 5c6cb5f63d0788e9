package docsql

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/leapstack-labs/docsql/pkg/query"
)

// Table is a handle bound to one table name. It owns no connection state of
// its own: every operation runs through the session's shared connection and
// transaction, so commits and rollbacks are session-wide. Handles are
// obtained from DB.Table and cached there, one instance per name.
type Table struct {
	db       *DB
	name     string
	compiler *query.Compiler
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Find executes a SELECT for the filter and returns a cursor over the
// matching rows. projection, when given, restricts and orders the selected
// columns; otherwise all columns are returned. Result order is whatever the
// backend returns. The cursor is one-shot; calling Find again re-executes.
func (t *Table) Find(ctx context.Context, filter query.Filter, projection ...string) (*Cursor, error) {
	return t.find(ctx, filter, projection, 0)
}

// FindOne executes a SELECT limited to one row server-side and returns the
// matching document, or (nil, nil) when no row matches. Absence is not an
// error.
func (t *Table) FindOne(ctx context.Context, filter query.Filter, projection ...string) (query.Doc, error) {
	cur, err := t.find(ctx, filter, projection, 1)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close() }()

	if !cur.Next() {
		if err := cur.Err(); err != nil {
			return nil, &ExecError{Op: "find one", Table: t.name, Err: err}
		}
		return nil, nil
	}
	return cur.Doc(), nil
}

func (t *Table) find(ctx context.Context, filter query.Filter, projection []string, limit int) (*Cursor, error) {
	stmt, args, err := t.compiler.Select(t.name, filter, projection, limit)
	if err != nil {
		return nil, err
	}
	rows, err := t.query(ctx, "find", stmt, args)
	if err != nil {
		return nil, err
	}
	cur, err := newCursor(rows)
	if err != nil {
		return nil, &ExecError{Op: "find", Table: t.name, Err: err}
	}
	return cur, nil
}

// Count returns the number of rows matching the filter.
func (t *Table) Count(ctx context.Context, filter query.Filter) (int64, error) {
	stmt, args, err := t.compiler.Count(t.name, filter)
	if err != nil {
		return 0, err
	}
	rows, err := t.query(ctx, "count", stmt, args)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, &ExecError{Op: "count", Table: t.name, Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, &ExecError{Op: "count", Table: t.name, Err: err}
	}
	return n, nil
}

// Insert writes one document and returns the backend-generated id, or 0
// when the backend does not report generated ids (postgres, duckdb).
func (t *Table) Insert(ctx context.Context, doc query.Doc) (int64, error) {
	stmt, args, err := t.compiler.Insert(t.name, doc)
	if err != nil {
		return 0, err
	}
	res, err := t.exec(ctx, "insert", stmt, args)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		// Backend does not report generated ids.
		return 0, nil
	}
	return id, nil
}

// InsertBatch writes all documents in one multi-row INSERT, so the batch is
// atomic: either every row is written or none. All documents must share the
// same column set or the call fails with SchemaMismatchError before
// anything executes. The returned ids are derived from the driver-reported
// insert id and are nil when the backend does not report one.
func (t *Table) InsertBatch(ctx context.Context, docs []query.Doc) ([]int64, error) {
	stmt, args, err := t.compiler.Insert(t.name, docs...)
	if err != nil {
		return nil, err
	}
	res, err := t.exec(ctx, "insert batch", stmt, args)
	if err != nil {
		return nil, err
	}
	reported, err := res.LastInsertId()
	if err != nil {
		return nil, nil
	}
	return t.db.dialect.InsertIDs(reported, int64(len(docs))), nil
}

// Update sets the given columns on every row matching the filter and
// returns the affected row count. An empty filter updates the whole table;
// there is no implicit guard.
func (t *Table) Update(ctx context.Context, filter query.Filter, set query.Doc) (int64, error) {
	stmt, args, err := t.compiler.Update(t.name, filter, set)
	if err != nil {
		return 0, err
	}
	res, err := t.exec(ctx, "update", stmt, args)
	if err != nil {
		return 0, err
	}
	return t.affected(res, "update")
}

// Remove deletes every row matching the filter and returns the affected
// row count. An empty filter deletes the whole table.
func (t *Table) Remove(ctx context.Context, filter query.Filter) (int64, error) {
	stmt, args, err := t.compiler.Delete(t.name, filter)
	if err != nil {
		return 0, err
	}
	res, err := t.exec(ctx, "remove", stmt, args)
	if err != nil {
		return 0, err
	}
	return t.affected(res, "remove")
}

// Commit commits the session's transaction. Because every handle shares
// one transaction, this persists pending mutations across all tables of
// the session, not just this one.
func (t *Table) Commit() error {
	return t.db.Commit()
}

func (t *Table) exec(ctx context.Context, op, stmt string, args []any) (sql.Result, error) {
	r, err := t.db.runner(ctx)
	if err != nil {
		return nil, err
	}
	t.db.logger.Debug("executing",
		slog.String("op", op), slog.String("table", t.name), slog.String("sql", stmt))
	res, err := r.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, &ExecError{Op: op, Table: t.name, Err: err}
	}
	return res, nil
}

func (t *Table) query(ctx context.Context, op, stmt string, args []any) (*sql.Rows, error) {
	r, err := t.db.runner(ctx)
	if err != nil {
		return nil, err
	}
	t.db.logger.Debug("querying",
		slog.String("op", op), slog.String("table", t.name), slog.String("sql", stmt))
	rows, err := r.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &ExecError{Op: op, Table: t.name, Err: err}
	}
	return rows, nil
}

func (t *Table) affected(res sql.Result, op string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &ExecError{Op: op, Table: t.name, Err: err}
	}
	return n, nil
}
