package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/docsql/pkg/query"
)

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List all tables in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			names, err := db.ListTables(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newFindCommand() *cobra.Command {
	var (
		filterArg  string
		columnsArg string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "find TABLE",
		Short: "Find rows matching a filter document",
		Example: `  docsql find users
  docsql find users --filter '{"state": 2}'
  docsql find users --filter '{"age": {"$gte": 21}}' --columns id,username
  docsql find users --filter '{"$or": [{"state": 1}, {"state": 2}]}' -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(filterArg)
			if err != nil {
				return err
			}
			var columns []string
			if columnsArg != "" {
				columns = strings.Split(columnsArg, ",")
			}

			db, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			cur, err := db.Table(args[0]).Find(cmd.Context(), filter, columns...)
			if err != nil {
				return err
			}
			defer func() { _ = cur.Close() }()

			var docs []query.Doc
			for cur.Next() {
				docs = append(docs, cur.Doc())
				if limit > 0 && len(docs) >= limit {
					break
				}
			}
			if err := cur.Err(); err != nil {
				return err
			}
			return renderDocs(cmd.OutOrStdout(), columns, docs, cfg.Format)
		},
	}

	cmd.Flags().StringVar(&filterArg, "filter", "", "JSON filter document (default: match all)")
	cmd.Flags().StringVar(&columnsArg, "columns", "", "comma-separated columns to select")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of rows to print (0 = all)")
	return cmd
}

func newCountCommand() *cobra.Command {
	var filterArg string

	cmd := &cobra.Command{
		Use:   "count TABLE",
		Short: "Count rows matching a filter document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(filterArg)
			if err != nil {
				return err
			}

			db, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			n, err := db.Table(args[0]).Count(cmd.Context(), filter)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}

	cmd.Flags().StringVar(&filterArg, "filter", "", "JSON filter document (default: match all)")
	return cmd
}

func newInsertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert TABLE DOC [DOC...]",
		Short: "Insert one or more JSON documents as rows",
		Long: `Insert JSON documents into a table. With more than one document the
insert is a single atomic batch, and all documents must share the same
column set.`,
		Example: `  docsql insert users '{"username": "ann", "state": 1}'
  docsql insert users '{"username": "ann"}' '{"username": "bob"}'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := make([]query.Doc, 0, len(args)-1)
			for _, arg := range args[1:] {
				doc, err := parseDoc(arg)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}

			db, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			table := db.Table(args[0])
			if len(docs) == 1 {
				id, err := table.Insert(cmd.Context(), docs[0])
				if err != nil {
					return err
				}
				if err := db.Commit(); err != nil {
					return err
				}
				if id != 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "inserted 1 row (id %d)\n", id)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "inserted 1 row")
				}
				return nil
			}

			ids, err := table.InsertBatch(cmd.Context(), docs)
			if err != nil {
				return err
			}
			if err := db.Commit(); err != nil {
				return err
			}
			if ids != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "inserted %d rows (ids %v)\n", len(docs), ids)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "inserted %d rows\n", len(docs))
			}
			return nil
		},
	}
	return cmd
}

func newRemoveCommand() *cobra.Command {
	var filterArg string

	cmd := &cobra.Command{
		Use:   "remove TABLE",
		Short: "Remove rows matching a filter document",
		Long: `Remove rows matching a filter. An empty filter removes every row in
the table; that is deliberate, so double-check before omitting --filter.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(filterArg)
			if err != nil {
				return err
			}

			db, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			n, err := db.Table(args[0]).Remove(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if err := db.Commit(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d rows\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&filterArg, "filter", "", "JSON filter document (default: match all)")
	return cmd
}
