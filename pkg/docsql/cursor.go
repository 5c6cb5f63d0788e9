package docsql

import (
	"database/sql"

	"github.com/leapstack-labs/docsql/pkg/query"
)

// Cursor is a lazy, one-shot iterator over the rows of a Find. Each row is
// materialized as a column → value document.
//
//	cur, err := users.Find(ctx, query.Filter{"state": 2})
//	...
//	defer cur.Close()
//	for cur.Next() {
//		doc := cur.Doc()
//	}
//	err = cur.Err()
type Cursor struct {
	rows *sql.Rows
	cols []string
	doc  query.Doc
	err  error
}

func newCursor(rows *sql.Rows) (*Cursor, error) {
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	return &Cursor{rows: rows, cols: cols}, nil
}

// Next advances to the next row, returning false when the result set is
// exhausted or a scan fails. Check Err after iteration.
func (c *Cursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}

	values := make([]any, len(c.cols))
	ptrs := make([]any, len(c.cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		c.err = err
		return false
	}

	doc := make(query.Doc, len(c.cols))
	for i, col := range c.cols {
		val := values[i]
		// Text columns arrive as []byte from some drivers.
		if b, ok := val.([]byte); ok {
			val = string(b)
		}
		doc[col] = val
	}
	c.doc = doc
	return true
}

// Doc returns the current row. Valid only after a true Next.
func (c *Cursor) Doc() query.Doc { return c.doc }

// Err returns the first error encountered during iteration.
func (c *Cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

// Close releases the underlying result set. Safe to call more than once.
func (c *Cursor) Close() error {
	return c.rows.Close()
}

// All drains the cursor into a slice and closes it.
func (c *Cursor) All() ([]query.Doc, error) {
	defer func() { _ = c.Close() }()

	var docs []query.Doc
	for c.Next() {
		docs = append(docs, c.Doc())
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
