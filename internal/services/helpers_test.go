package services

import (
	"database/sql"
	"database/sql/driver"
	"io"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/dbdesk/mysql-admin/internal/repositories"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var (
	describeColumns    = []string{"Field", "Type", "Null", "Key", "Default", "Extra"}
	foreignKeyColumns  = []string{"COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME"}
	referencingColumns = []string{"TABLE_NAME", "COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME"}
)

func expectDescribe(mock sqlmock.Sqlmock, table string, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta("DESCRIBE `" + table + "`")).WillReturnRows(rows)
}

// expectTable queues the DESCRIBE and PRIMARY KEY lookups that load a table's
// schema. An empty primaryKey models a table without a PRIMARY KEY constraint.
func expectTable(mock sqlmock.Sqlmock, table string, rows *sqlmock.Rows, primaryKey ...string) {
	expectDescribe(mock, table, rows)
	keys := sqlmock.NewRows([]string{"COLUMN_NAME"})
	for _, name := range primaryKey {
		keys.AddRow(name)
	}
	mock.ExpectQuery(regexp.QuoteMeta("AND CONSTRAINT_NAME = 'PRIMARY'")).
		WithArgs(table).
		WillReturnRows(keys)
}

func customersDescribe() *sqlmock.Rows {
	return sqlmock.NewRows(describeColumns).
		AddRow("id", "int", "NO", "PRI", nil, "auto_increment").
		AddRow("name", "varchar(255)", "NO", "", nil, "").
		AddRow("email", "varchar(255)", "YES", "", nil, "")
}

func ordersDescribe() *sqlmock.Rows {
	return sqlmock.NewRows(describeColumns).
		AddRow("id", "int", "NO", "PRI", nil, "auto_increment").
		AddRow("customer_id", "int", "NO", "MUL", nil, "").
		AddRow("total", "decimal(10,2)", "NO", "", "0.00", "")
}

func expectReferencing(mock sqlmock.Sqlmock, rows *sqlmock.Rows, args ...interface{}) {
	values := make([]driver.Value, len(args))
	for i, a := range args {
		values[i] = a
	}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE REFERENCED_TABLE_SCHEMA = DATABASE()")).
		WithArgs(values...).
		WillReturnRows(rows)
}

type fixture struct {
	schema   *SchemaService
	mutation *MutationService
	data     *DataService
	table    *TableService
}

func newFixture(db *sql.DB) fixture {
	logger := quietLogger()
	schemaRepo := repositories.NewSchemaRepository()
	tableRepo := repositories.NewTableRepository()
	schema := NewSchemaService(db, schemaRepo, tableRepo, logger)
	return fixture{
		schema:   schema,
		mutation: NewMutationService(db, schema, schemaRepo, tableRepo, logger),
		data:     NewDataService(db, schema, tableRepo, logger),
		table:    NewTableService(db, schemaRepo, tableRepo, logger),
	}
}
