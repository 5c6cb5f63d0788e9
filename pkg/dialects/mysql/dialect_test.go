package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/docsql/pkg/dialect"
)

func TestRegistered(t *testing.T) {
	assert.True(t, dialect.IsRegistered("mysql"))
}

func TestIdentity(t *testing.T) {
	d := New()
	assert.Equal(t, "mysql", d.Name())
	assert.Equal(t, "mysql", d.DriverName())
	assert.Equal(t, "?", d.Placeholder(1))
}

func TestForeignKeyChecksSQL(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("SET foreign_key_checks = 0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET foreign_key_checks = 1").WillReturnResult(sqlmock.NewResult(0, 0))

	d := New()
	require.NoError(t, d.SetForeignKeyChecks(context.Background(), db, false))
	require.NoError(t, d.SetForeignKeyChecks(context.Background(), db, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIDsStartAtReported(t *testing.T) {
	// mysql reports the id of the first row of a batch.
	assert.Equal(t, []int64{5, 6, 7}, New().InsertIDs(5, 3))
}
