// Package query compiles document-style filter, projection and value
// objects into parameterized SQL.
//
// This package contains the public contract between callers speaking the
// document API (filters like {"age": {"$gte": 21}}) and the relational
// backends that execute the result. It is pure: no I/O, no state, and every
// operand travels as a bind parameter, never as interpolated SQL text.
package query

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Filter is a document-style query predicate. Each key is either a column
// name mapped to a literal value (equality) or to an operator document such
// as {"$gt": 5}, or one of the logical keys "$and"/"$or" mapped to a slice
// of nested filters. An empty Filter matches all rows.
type Filter map[string]any

// Doc is a column → value mapping. It is the payload for insert and update
// operations and the shape of every result row.
type Doc map[string]any

// Placeholder formats the bind parameter at 1-based position n.
type Placeholder func(n int) string

// Question is the "?" placeholder style (sqlite, mysql, duckdb).
func Question(int) string { return "?" }

// Dollar is the "$1", "$2", ... placeholder style (postgres).
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

// Comparison operator tags and their SQL spellings.
var compareOps = map[string]string{
	"$eq":  "=",
	"$ne":  "<>",
	"$gt":  ">",
	"$gte": ">=",
	"$lt":  "<",
	"$lte": "<=",
}

const (
	opIn  = "$in"
	opNin = "$nin"
	opAnd = "$and"
	opOr  = "$or"
)

// node is the validated form of a Filter: a tagged tree of conditions and
// logical groups, built once at the API boundary before compilation.
type node interface{ isNode() }

// cond is a single column comparison.
type cond struct {
	col string
	tag string // "$eq", "$gt", "$in", ...
	val any
}

// group is an AND/OR combination of child nodes.
type group struct {
	or   bool
	kids []node
}

func (cond) isNode()  {}
func (group) isNode() {}

// parse validates a Filter into a node tree. Unknown operator tags fail
// with UnsupportedOperatorError; malformed operands fail with a plain error.
func parse(f Filter) (group, error) {
	g := group{}
	for _, key := range sortedKeys(f) {
		val := f[key]
		switch key {
		case opAnd, opOr:
			children, err := parseLogical(key, val)
			if err != nil {
				return group{}, err
			}
			g.kids = append(g.kids, group{or: key == opOr, kids: children})
		default:
			if len(key) > 0 && key[0] == '$' {
				return group{}, &UnsupportedOperatorError{Op: key}
			}
			kids, err := parseColumn(key, val)
			if err != nil {
				return group{}, err
			}
			g.kids = append(g.kids, kids...)
		}
	}
	return g, nil
}

// parseLogical parses the operand of "$and"/"$or": a slice of nested filters.
func parseLogical(key string, val any) ([]node, error) {
	filters, err := asFilters(val)
	if err != nil {
		return nil, fmt.Errorf("operand of %s: %w", key, err)
	}
	children := make([]node, 0, len(filters))
	for _, child := range filters {
		n, err := parse(child)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return children, nil
}

// parseColumn parses a single column entry. An operator document yields one
// condition per tag, conjoined by the caller; anything else is an equality.
func parseColumn(col string, val any) ([]node, error) {
	doc, ok := asDoc(val)
	if !ok {
		return []node{cond{col: col, tag: "$eq", val: val}}, nil
	}
	kids := make([]node, 0, len(doc))
	for _, tag := range sortedKeys(doc) {
		operand := doc[tag]
		switch {
		case tag == opIn || tag == opNin:
			values, ok := asSlice(operand)
			if !ok {
				return nil, fmt.Errorf("operand of %s on column %q must be a slice", tag, col)
			}
			kids = append(kids, cond{col: col, tag: tag, val: values})
		default:
			if _, ok := compareOps[tag]; !ok {
				return nil, &UnsupportedOperatorError{Op: tag}
			}
			kids = append(kids, cond{col: col, tag: tag, val: operand})
		}
	}
	return kids, nil
}

// asFilters converts a "$and"/"$or" operand into a slice of Filters.
func asFilters(val any) ([]Filter, error) {
	switch v := val.(type) {
	case []Filter:
		return v, nil
	case []map[string]any:
		filters := make([]Filter, len(v))
		for i, m := range v {
			filters[i] = Filter(m)
		}
		return filters, nil
	case []any:
		filters := make([]Filter, len(v))
		for i, elem := range v {
			doc, ok := asDoc(elem)
			if !ok {
				return nil, fmt.Errorf("element %d is not a filter document", i)
			}
			filters[i] = Filter(doc)
		}
		return filters, nil
	default:
		return nil, fmt.Errorf("expected a slice of filter documents, got %T", val)
	}
}

// asDoc reports whether val is a string-keyed document.
func asDoc(val any) (map[string]any, bool) {
	switch v := val.(type) {
	case map[string]any:
		return v, true
	case Filter:
		return v, true
	case Doc:
		return v, true
	default:
		return nil, false
	}
}

// asSlice expands any slice or array operand into []any, so callers can pass
// []int, []string etc. for $in/$nin without converting by hand.
func asSlice(val any) ([]any, bool) {
	if v, ok := val.([]any); ok {
		return v, true
	}
	rv := reflect.ValueOf(val)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// sortedKeys returns the keys of a string-keyed map in sorted order. Go maps
// are unordered; sorting keeps compiled SQL deterministic across calls.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
