package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/docsql/pkg/query"
)

// renderDocs writes result documents in the requested format. columns, when
// non-empty, fixes the column order; otherwise the sorted key set of the
// first document is used.
func renderDocs(w io.Writer, columns []string, docs []query.Doc, format string) error {
	if len(columns) == 0 && len(docs) > 0 {
		for col := range docs[0] {
			columns = append(columns, col)
		}
		sort.Strings(columns)
	}

	switch format {
	case "json":
		return renderJSON(w, docs)
	default:
		return renderTable(w, columns, docs)
	}
}

func renderTable(w io.Writer, columns []string, docs []query.Doc) error {
	if len(docs) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(columns))
	for i, col := range columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, doc := range docs {
		row := make(table.Row, len(columns))
		for i, col := range columns {
			row[i] = formatValue(doc[col])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(docs))
	return nil
}

func renderJSON(w io.Writer, docs []query.Doc) error {
	if docs == nil {
		docs = []query.Doc{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}

func formatValue(val any) string {
	if val == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", val)
}
