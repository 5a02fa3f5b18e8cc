package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutURLIsNil(t *testing.T) {
	pool, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.Nil(t, pool)
}

func TestNilPoolIsSafe(t *testing.T) {
	var pool *Pool
	assert.Error(t, pool.Health(context.Background()))
	assert.NoError(t, pool.Close())
}

func TestHealthPings(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectClose()

	pool := &Pool{db: db}
	require.NoError(t, pool.Health(context.Background()))
	require.NoError(t, pool.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
