// Package cli provides the command-line interface for DocSQL.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/docsql/internal/config"
	"github.com/leapstack-labs/docsql/pkg/docsql"
	"github.com/leapstack-labs/docsql/pkg/query"

	// Register the built-in dialects.
	_ "github.com/leapstack-labs/docsql/pkg/dialects/duckdb"
	_ "github.com/leapstack-labs/docsql/pkg/dialects/mysql"
	_ "github.com/leapstack-labs/docsql/pkg/dialects/postgres"
	_ "github.com/leapstack-labs/docsql/pkg/dialects/sqlite"
)

var (
	cfgFile string
	cfg     *config.Config
)

// Version information (set at build time).
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docsql",
		Short: "DocSQL - document-store API over relational databases",
		Long: `DocSQL lets you query relational databases with document-store
filters: JSON documents describing equality, comparison, set membership
and logical combination, compiled to parameterized SQL.

Filters look like MongoDB queries:

  docsql find users --filter '{"state": 2, "age": {"$gte": 21}}'`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			var err error
			var used string
			cfg, used, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if cfg.Verbose && used != "" {
				fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default docsql.yaml)")
	flags.String("driver", config.DefaultDriver, "database dialect: sqlite, postgres, mysql, duckdb")
	flags.String("dsn", config.DefaultDSN, "data source name (\":memory:\" for in-memory sqlite)")
	flags.String("txmode", config.DefaultTxMode, "transaction mode: auto or explicit")
	flags.StringP("format", "f", config.DefaultFormat, "output format: table or json")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newTablesCommand())
	rootCmd.AddCommand(newFindCommand())
	rootCmd.AddCommand(newCountCommand())
	rootCmd.AddCommand(newInsertCommand())
	rootCmd.AddCommand(newRemoveCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// openSession opens a database session from the loaded configuration.
func openSession(cmd *cobra.Command) (*docsql.DB, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}

	var logger *slog.Logger
	if cfg.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	return docsql.Open(cmd.Context(), docsql.Config{
		Driver: cfg.Driver,
		DSN:    cfg.DSN,
		TxMode: mode,
		Logger: logger,
	})
}

// parseFilter decodes a JSON filter document. An empty string is the empty
// filter, matching all rows.
func parseFilter(arg string) (query.Filter, error) {
	if arg == "" {
		return query.Filter{}, nil
	}
	var f map[string]any
	if err := json.Unmarshal([]byte(arg), &f); err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", arg, err)
	}
	return query.Filter(f), nil
}

// parseDoc decodes a JSON value document.
func parseDoc(arg string) (query.Doc, error) {
	var d map[string]any
	if err := json.Unmarshal([]byte(arg), &d); err != nil {
		return nil, fmt.Errorf("invalid document %q: %w", arg, err)
	}
	if len(d) == 0 {
		return nil, fmt.Errorf("empty document %q", arg)
	}
	return query.Doc(d), nil
}
