package duckdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/docsql/pkg/dialect"
)

func TestRegistered(t *testing.T) {
	assert.True(t, dialect.IsRegistered("duckdb"))
}

func TestIdentity(t *testing.T) {
	d := New()
	assert.Equal(t, "duckdb", d.Name())
	assert.Equal(t, "duckdb", d.DriverName())
	assert.Equal(t, "?", d.Placeholder(1))
}

func TestForeignKeyToggleUnsupported(t *testing.T) {
	err := New().SetForeignKeyChecks(context.Background(), nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foreign key")
}

func TestInsertIDsNotReported(t *testing.T) {
	assert.Nil(t, New().InsertIDs(0, 2))
}
