// Package config provides configuration loading for the docsql CLI.
// It is decoupled from command wiring so other embedders can reuse it.
package config

import (
	"fmt"

	"github.com/leapstack-labs/docsql/pkg/docsql"
)

// Config file names searched in the working directory.
const (
	ConfigFileName    = "docsql.yaml"
	ConfigFileNameAlt = "docsql.yml"
)

// Defaults applied before any config source is loaded.
const (
	DefaultDriver = "sqlite"
	DefaultDSN    = "docsql.db"
	DefaultTxMode = "auto"
	DefaultFormat = "table"
)

// Config holds the CLI configuration.
type Config struct {
	// Driver is the dialect name: sqlite, postgres, mysql, duckdb.
	Driver string `koanf:"driver"`

	// DSN is the driver-specific data source name.
	DSN string `koanf:"dsn"`

	// TxMode is "auto" or "explicit".
	TxMode string `koanf:"txmode"`

	// Format is the default output format: table, json.
	Format string `koanf:"format"`

	// Verbose enables debug logging to stderr.
	Verbose bool `koanf:"verbose"`
}

// Mode converts the configured transaction mode string.
func (c *Config) Mode() (docsql.TxMode, error) {
	switch c.TxMode {
	case "auto", "":
		return docsql.TxModeAuto, nil
	case "explicit":
		return docsql.TxModeExplicit, nil
	default:
		return 0, fmt.Errorf("invalid txmode %q (want auto or explicit)", c.TxMode)
	}
}
