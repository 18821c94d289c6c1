package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dbdesk/mysql-admin/internal/models"
)

// Assignment is one column/value pair of an INSERT or UPDATE, kept in a
// stable order so statements are deterministic.
type Assignment struct {
	Column string
	Value  interface{}
}

// Filter is a `column LIKE %value%` condition.
type Filter struct {
	Column string
	Value  string
}

// SelectOptions describes a paginated read. Column names must already be
// validated against the table.
type SelectOptions struct {
	Filters []Filter
	SortBy  string
	Desc    bool
	Limit   int
	Offset  int
}

type TableRepository struct{}

func NewTableRepository() *TableRepository {
	return &TableRepository{}
}

func (r *TableRepository) Insert(ctx context.Context, q Executor, table string, values []Assignment) (sql.Result, error) {
	columns := make([]string, len(values))
	placeholders := make([]string, len(values))
	args := make([]interface{}, len(values))
	for i, v := range values {
		columns[i] = QuoteIdent(v.Column)
		placeholders[i] = "?"
		args[i] = v.Value
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(table),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	return q.ExecContext(ctx, query, args...)
}

func (r *TableRepository) Update(ctx context.Context, q Executor, table, keyColumn string, key interface{}, changes []Assignment) (int64, error) {
	sets := make([]string, len(changes))
	args := make([]interface{}, 0, len(changes)+1)
	for i, c := range changes {
		sets[i] = QuoteIdent(c.Column) + " = ?"
		args = append(args, c.Value)
	}
	args = append(args, key)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		QuoteIdent(table),
		strings.Join(sets, ", "),
		QuoteIdent(keyColumn),
	)

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *TableRepository) Delete(ctx context.Context, q Executor, table, keyColumn string, key interface{}) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", QuoteIdent(table), QuoteIdent(keyColumn))

	result, err := q.ExecContext(ctx, query, key)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func whereClause(filters []Filter) (string, []interface{}) {
	if len(filters) == 0 {
		return "", nil
	}
	conditions := make([]string, len(filters))
	args := make([]interface{}, len(filters))
	for i, f := range filters {
		conditions[i] = QuoteIdent(f.Column) + " LIKE ?"
		args[i] = "%" + f.Value + "%"
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *TableRepository) Count(ctx context.Context, q Executor, table string, filters []Filter) (int64, error) {
	where, args := whereClause(filters)
	query := "SELECT COUNT(*) FROM " + QuoteIdent(table) + where

	var total int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *TableRepository) Select(ctx context.Context, q Executor, table string, opts SelectOptions) ([]models.Row, error) {
	where, args := whereClause(opts.Filters)
	query := "SELECT * FROM " + QuoteIdent(table) + where

	if opts.SortBy != "" {
		direction := "ASC"
		if opts.Desc {
			direction = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", QuoteIdent(opts.SortBy), direction)
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

func (r *TableRepository) CreateDatabase(ctx context.Context, q Executor, name string) error {
	_, err := q.ExecContext(ctx, "CREATE DATABASE "+QuoteIdent(name))
	return err
}

func (r *TableRepository) DropDatabase(ctx context.Context, q Executor, name string) error {
	_, err := q.ExecContext(ctx, "DROP DATABASE "+QuoteIdent(name))
	return err
}

// Exec runs a statement that returns no rows, such as generated DDL.
func (r *TableRepository) Exec(ctx context.Context, q Executor, statement string) (sql.Result, error) {
	return q.ExecContext(ctx, statement)
}

func (r *TableRepository) DropTable(ctx context.Context, q Executor, table string) error {
	_, err := q.ExecContext(ctx, "DROP TABLE "+QuoteIdent(table))
	return err
}

// Query runs a free-form statement that returns rows.
func (r *TableRepository) Query(ctx context.Context, q Executor, statement string) ([]models.Row, error) {
	rows, err := q.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}
