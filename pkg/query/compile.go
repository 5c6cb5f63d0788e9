package query

import (
	"fmt"
	"strings"
)

// Neutral fragments for conditions that can match everything or nothing.
// Emitted for empty $in/$nin operands and empty logical groups so the
// compiler never produces invalid SQL like "IN ()".
const (
	matchAll  = "1 = 1"
	matchNone = "1 = 0"
)

// Compiler translates filters, projections and value documents into SQL
// fragments for one placeholder style. The zero value uses "?" placeholders.
// A Compiler is stateless and safe to share.
type Compiler struct {
	placeholder Placeholder
}

// NewCompiler returns a Compiler using the given placeholder style.
// A nil placeholder defaults to Question.
func NewCompiler(ph Placeholder) *Compiler {
	if ph == nil {
		ph = Question
	}
	return &Compiler{placeholder: ph}
}

// builder threads the running parameter index through one compilation, so
// dollar-style placeholders stay globally numbered across SET and WHERE.
type builder struct {
	ph   Placeholder
	idx  int
	args []any
}

func (b *builder) next(val any) string {
	b.idx++
	b.args = append(b.args, val)
	return b.ph(b.idx)
}

// Where compiles a filter into a WHERE fragment (without the WHERE keyword)
// and its ordered bind parameters. An empty filter compiles to an empty
// fragment: the caller emits no WHERE clause and the statement matches all
// rows.
func (c *Compiler) Where(f Filter) (string, []any, error) {
	b := &builder{ph: c.ph()}
	frag, err := b.where(f)
	if err != nil {
		return "", nil, err
	}
	return frag, b.args, nil
}

// Projection compiles an ordered column list into a SELECT list.
// An empty list selects all columns.
func Projection(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}
	return strings.Join(columns, ", ")
}

// Select compiles a full SELECT statement. limit > 0 appends a LIMIT clause.
func (c *Compiler) Select(table string, f Filter, columns []string, limit int) (string, []any, error) {
	b := &builder{ph: c.ph()}
	frag, err := b.where(f)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("SELECT %s FROM %s", Projection(columns), table)
	if frag != "" {
		sql += " WHERE " + frag
	}
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	return sql, b.args, nil
}

// Count compiles a SELECT COUNT(*) statement.
func (c *Compiler) Count(table string, f Filter) (string, []any, error) {
	b := &builder{ph: c.ph()}
	frag, err := b.where(f)
	if err != nil {
		return "", nil, err
	}
	sql := "SELECT COUNT(*) FROM " + table
	if frag != "" {
		sql += " WHERE " + frag
	}
	return sql, b.args, nil
}

// Insert compiles one multi-row INSERT statement for the given documents.
// All documents must share the same column set; a mismatch fails with
// SchemaMismatchError before anything reaches the backend, so a batch is
// all-or-nothing at the compile stage and atomic at the execute stage.
// Column order is the sorted key order of the first document.
func (c *Compiler) Insert(table string, docs ...Doc) (string, []any, error) {
	if len(docs) == 0 {
		return "", nil, fmt.Errorf("insert into %s: no documents", table)
	}
	columns := sortedKeys(docs[0])
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("insert into %s: empty document", table)
	}
	for i, doc := range docs[1:] {
		if mismatch := sameColumns(columns, doc); mismatch != nil {
			mismatch.Row = i + 1
			return "", nil, mismatch
		}
	}

	b := &builder{ph: c.ph()}
	rows := make([]string, len(docs))
	for i, doc := range docs {
		cells := make([]string, len(columns))
		for j, col := range columns {
			cells[j] = b.next(doc[col])
		}
		rows[i] = "(" + strings.Join(cells, ", ") + ")"
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(columns, ", "), strings.Join(rows, ", "))
	return sql, b.args, nil
}

// Update compiles an UPDATE statement. An empty filter is legal and updates
// every row in the table; callers wanting a guard must supply one.
func (c *Compiler) Update(table string, f Filter, set Doc) (string, []any, error) {
	if len(set) == 0 {
		return "", nil, fmt.Errorf("update %s: empty value document", table)
	}
	b := &builder{ph: c.ph()}
	assigns := make([]string, 0, len(set))
	for _, col := range sortedKeys(set) {
		assigns = append(assigns, col+" = "+b.next(set[col]))
	}
	frag, err := b.where(f)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(assigns, ", "))
	if frag != "" {
		sql += " WHERE " + frag
	}
	return sql, b.args, nil
}

// Delete compiles a DELETE statement. An empty filter deletes every row.
func (c *Compiler) Delete(table string, f Filter) (string, []any, error) {
	b := &builder{ph: c.ph()}
	frag, err := b.where(f)
	if err != nil {
		return "", nil, err
	}
	sql := "DELETE FROM " + table
	if frag != "" {
		sql += " WHERE " + frag
	}
	return sql, b.args, nil
}

func (c *Compiler) ph() Placeholder {
	if c == nil || c.placeholder == nil {
		return Question
	}
	return c.placeholder
}

// where validates and compiles a filter in one pass.
func (b *builder) where(f Filter) (string, error) {
	if len(f) == 0 {
		return "", nil
	}
	root, err := parse(f)
	if err != nil {
		return "", err
	}
	// The root group is not parenthesized; nested groups are.
	return b.joinKids(root)
}

// node compiles a single tree node to SQL.
func (b *builder) node(n node) (string, error) {
	switch v := n.(type) {
	case cond:
		return b.cond(v), nil
	case group:
		frag, err := b.joinKids(v)
		if err != nil {
			return "", err
		}
		if frag == matchAll || frag == matchNone {
			return frag, nil
		}
		return "(" + frag + ")", nil
	default:
		return "", fmt.Errorf("unknown filter node %T", n)
	}
}

// joinKids compiles a group's children and joins them with AND/OR.
// An empty AND group is vacuously true, an empty OR group vacuously false.
func (b *builder) joinKids(g group) (string, error) {
	if len(g.kids) == 0 {
		if g.or {
			return matchNone, nil
		}
		return matchAll, nil
	}
	parts := make([]string, 0, len(g.kids))
	for _, kid := range g.kids {
		frag, err := b.node(kid)
		if err != nil {
			return "", err
		}
		parts = append(parts, frag)
	}
	sep := " AND "
	if g.or {
		sep = " OR "
	}
	return strings.Join(parts, sep), nil
}

// cond compiles a single comparison. Set membership with an empty operand
// degenerates to a constant condition rather than invalid SQL.
func (b *builder) cond(c cond) string {
	switch c.tag {
	case opIn, opNin:
		values := c.val.([]any)
		if len(values) == 0 {
			if c.tag == opNin {
				return matchAll
			}
			return matchNone
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = b.next(v)
		}
		keyword := "IN"
		if c.tag == opNin {
			keyword = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", c.col, keyword, strings.Join(cells, ", "))
	default:
		return fmt.Sprintf("%s %s %s", c.col, compareOps[c.tag], b.next(c.val))
	}
}
