package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbdesk/mysql-admin/internal/models"
	"github.com/dbdesk/mysql-admin/internal/repositories"
)

type memoryHistory struct {
	mu        sync.Mutex
	entries   []models.QueryHistory
	createErr error
	limit     int
}

func (h *memoryHistory) Create(ctx context.Context, entry *models.QueryHistory) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.createErr != nil {
		return h.createErr
	}
	h.entries = append([]models.QueryHistory{*entry}, h.entries...)
	return nil
}

func (h *memoryHistory) GetRecent(ctx context.Context, limit int) ([]models.QueryHistory, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.limit = limit
	if limit > len(h.entries) {
		limit = len(h.entries)
	}
	return h.entries[:limit], nil
}

func newQueryService(t *testing.T, history QueryHistoryStore) (*QueryService, sqlmock.Sqlmock) {
	db, mock := newMock(t)
	return NewQueryService(db, repositories.NewTableRepository(), history, quietLogger()), mock
}

func TestExecuteSelectReturnsRows(t *testing.T) {
	history := &memoryHistory{}
	svc, mock := newQueryService(t, history)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM customers")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), []byte("Ann")))

	result, err := svc.Execute(context.Background(), "  SELECT id, name FROM customers")

	require.NoError(t, err)
	assert.Equal(t, []models.Row{{"id": int64(1), "name": "Ann"}}, result)
	require.Len(t, history.entries, 1)
	assert.True(t, history.entries[0].Success)
	assert.Equal(t, "  SELECT id, name FROM customers", history.entries[0].QueryText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteCheckTableReturnsRows(t *testing.T) {
	svc, mock := newQueryService(t, &memoryHistory{})

	mock.ExpectQuery(regexp.QuoteMeta("CHECK TABLE customers")).
		WillReturnRows(sqlmock.NewRows([]string{"Table", "Op", "Msg_type", "Msg_text"}).
			AddRow([]byte("shop.customers"), []byte("check"), []byte("status"), []byte("OK")))

	result, err := svc.Execute(context.Background(), "CHECK TABLE customers")

	require.NoError(t, err)
	assert.Equal(t, []models.Row{{"Table": "shop.customers", "Op": "check", "Msg_type": "status", "Msg_text": "OK"}}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteStatementReturnsCounts(t *testing.T) {
	svc, mock := newQueryService(t, nil)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE customers SET name = 'x'")).
		WillReturnResult(sqlmock.NewResult(0, 4))

	result, err := svc.Execute(context.Background(), "UPDATE customers SET name = 'x'")

	require.NoError(t, err)
	assert.Equal(t, &ExecResult{AffectedRows: 4}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteInsertReportsInsertID(t *testing.T) {
	svc, mock := newQueryService(t, nil)

	mock.ExpectExec("INSERT INTO customers").WillReturnResult(sqlmock.NewResult(17, 1))

	result, err := svc.Execute(context.Background(), "INSERT INTO customers (name) VALUES ('Ann')")

	require.NoError(t, err)
	assert.Equal(t, &ExecResult{AffectedRows: 1, InsertID: 17}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteIgnoresLeadingComments(t *testing.T) {
	svc, mock := newQueryService(t, nil)

	mock.ExpectQuery("SHOW TABLES").WillReturnRows(sqlmock.NewRows([]string{"Tables_in_shop"}).AddRow([]byte("orders")))

	result, err := svc.Execute(context.Background(), "-- list them\n/* all of them */ SHOW TABLES")

	require.NoError(t, err)
	assert.Equal(t, []models.Row{{"Tables_in_shop": "orders"}}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteEmptyQuery(t *testing.T) {
	history := &memoryHistory{}
	svc, mock := newQueryService(t, history)

	for _, query := range []string{"", "   ", "-- only a comment", "/* nothing */"} {
		_, err := svc.Execute(context.Background(), query)
		assert.ErrorIs(t, err, ErrInvalidInput, query)
	}

	assert.Empty(t, history.entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteRecordsFailures(t *testing.T) {
	history := &memoryHistory{}
	svc, mock := newQueryService(t, history)

	mock.ExpectQuery("SELECT \\* FROM ghosts").
		WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'shop.ghosts' doesn't exist"})

	_, err := svc.Execute(context.Background(), "SELECT * FROM ghosts")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Table 'shop.ghosts' doesn't exist", EngineMessage(err))
	require.Len(t, history.entries, 1)
	assert.False(t, history.entries[0].Success)
	assert.Equal(t, "Table 'shop.ghosts' doesn't exist", history.entries[0].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteSurvivesHistoryFailure(t *testing.T) {
	svc, mock := newQueryService(t, &memoryHistory{createErr: errors.New("redis down")})

	mock.ExpectExec("DELETE FROM logs").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Execute(context.Background(), "DELETE FROM logs")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistory(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		svc, _ := newQueryService(t, nil)

		entries, err := svc.History(context.Background(), 10)

		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("default limit", func(t *testing.T) {
		history := &memoryHistory{entries: []models.QueryHistory{{QueryText: "SELECT 2"}, {QueryText: "SELECT 1"}}}
		svc, _ := newQueryService(t, history)

		entries, err := svc.History(context.Background(), 0)

		require.NoError(t, err)
		assert.Equal(t, defaultHistoryLimit, history.limit)
		assert.Len(t, entries, 2)
		assert.Equal(t, "SELECT 2", entries[0].QueryText)
	})
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT 1", true},
		{"select * from t", true},
		{"(SELECT 1) UNION (SELECT 2)", true},
		{"SHOW DATABASES", true},
		{"DESC customers", true},
		{"EXPLAIN SELECT 1", true},
		{"WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"CHECK TABLE customers", true},
		{"ANALYZE TABLE customers", true},
		{"OPTIMIZE TABLE customers", true},
		{"REPAIR TABLE customers", true},
		{"checksum table customers", true},
		{"CALL refresh_totals()", true},
		{"HELP 'contents'", true},
		{"INSERT INTO t VALUES (1)", false},
		{"UPDATE t SET a = 1", false},
		{"CREATE TABLE t (id INT)", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, returnsRows(normalizeQuery(tt.query)))
		})
	}
}
