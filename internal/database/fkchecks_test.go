package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func borrowMockConn(t *testing.T) (*sql.Conn, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

func TestForeignKeyChecksRestoredAfterSuccess(t *testing.T) {
	conn, mock := borrowMockConn(t)
	ctx := context.Background()

	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `customers`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 1").WillReturnResult(sqlmock.NewResult(0, 0))

	err := WithForeignKeyChecksDisabled(ctx, conn, func() error {
		_, err := conn.ExecContext(ctx, "DELETE FROM `customers` WHERE `id` = ?", 1)
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForeignKeyChecksRestoredAfterError(t *testing.T) {
	conn, mock := borrowMockConn(t)
	failure := errors.New("statement failed")

	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 1").WillReturnResult(sqlmock.NewResult(0, 0))

	err := WithForeignKeyChecksDisabled(context.Background(), conn, func() error {
		return failure
	})

	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForeignKeyChecksRestoredWhenContextCancelled(t *testing.T) {
	conn, mock := borrowMockConn(t)
	ctx, cancel := context.WithCancel(context.Background())

	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 1").WillReturnResult(sqlmock.NewResult(0, 0))

	err := WithForeignKeyChecksDisabled(ctx, conn, func() error {
		cancel()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForeignKeyChecksNotDisabled(t *testing.T) {
	conn, mock := borrowMockConn(t)

	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 0").WillReturnError(errors.New("access denied"))

	called := false
	err := WithForeignKeyChecksDisabled(context.Background(), conn, func() error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForeignKeyChecksRestoreFailureIsReported(t *testing.T) {
	conn, mock := borrowMockConn(t)

	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 0").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 1").WillReturnError(errors.New("connection lost"))

	err := WithForeignKeyChecksDisabled(context.Background(), conn, func() error {
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to restore foreign key checks")
	assert.NoError(t, mock.ExpectationsWereMet())
}
