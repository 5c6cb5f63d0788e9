package sqlite

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/docsql/pkg/dialect"
)

func TestRegistered(t *testing.T) {
	assert.True(t, dialect.IsRegistered("sqlite"))
}

func TestIdentity(t *testing.T) {
	d := New()
	assert.Equal(t, "sqlite", d.Name())
	assert.Equal(t, "sqlite", d.DriverName())
	assert.Equal(t, "?", d.Placeholder(3))
}

func TestListTablesLowercases(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Users").AddRow("posts"))

	names, err := New().ListTables(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "posts"}, names)
}

func TestTruncateFallsBackToDelete(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, New().TruncateTable(context.Background(), db, "users"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIDsEndAtReported(t *testing.T) {
	// sqlite reports the rowid of the last row of a batch.
	assert.Equal(t, []int64{3, 4, 5}, New().InsertIDs(5, 3))
	assert.Equal(t, []int64{7}, New().InsertIDs(7, 1))
}
