package migrations

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpFilesOrdered(t *testing.T) {
	files, err := upFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_mint_requests.up.sql",
		"000002_notifications.up.sql",
		"000003_outbox.up.sql",
	}, files)
}

func TestUpAppliesInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS mint_requests")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS notifications")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS outbox")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Up(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS mint_requests")).WillReturnError(errors.New("permission denied"))

	err = Up(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000001_mint_requests.up.sql")
}
