package query

import (
	"fmt"
	"sort"
	"strings"
)

// UnsupportedOperatorError is returned when a filter contains an operator
// tag the compiler does not recognize.
type UnsupportedOperatorError struct {
	Op string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator %q", e.Op)
}

// SchemaMismatchError is returned when the documents of a batch insert do
// not share the same column set. Row is the zero-based index of the first
// offending document.
type SchemaMismatchError struct {
	Row  int
	Want []string
	Got  []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("batch document %d has columns (%s), want (%s)",
		e.Row, strings.Join(e.Got, ", "), strings.Join(e.Want, ", "))
}

// sameColumns checks that doc has exactly the given column set.
func sameColumns(columns []string, doc Doc) *SchemaMismatchError {
	if len(doc) == len(columns) {
		ok := true
		for _, col := range columns {
			if _, present := doc[col]; !present {
				ok = false
				break
			}
		}
		if ok {
			return nil
		}
	}
	got := make([]string, 0, len(doc))
	for k := range doc {
		got = append(got, k)
	}
	sort.Strings(got)
	return &SchemaMismatchError{Want: columns, Got: got}
}
