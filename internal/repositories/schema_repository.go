package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dbdesk/mysql-admin/internal/models"
)

// systemDatabases are hidden from the database list.
var systemDatabases = map[string]bool{
	"information_schema": true,
	"mysql":              true,
	"performance_schema": true,
	"sys":                true,
}

// IsSystemDatabase reports whether name is one of MySQL's own schemas.
func IsSystemDatabase(name string) bool {
	return systemDatabases[strings.ToLower(name)]
}

type SchemaRepository struct{}

func NewSchemaRepository() *SchemaRepository {
	return &SchemaRepository{}
}

// GetDatabases returns all non-system databases on the server
func (r *SchemaRepository) GetDatabases(ctx context.Context, q Executor) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	databases := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if IsSystemDatabase(name) {
			continue
		}
		databases = append(databases, name)
	}

	return databases, rows.Err()
}

// DatabaseExists matches the name exactly, unlike SHOW DATABASES LIKE.
func (r *SchemaRepository) DatabaseExists(ctx context.Context, q Executor, name string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM INFORMATION_SCHEMA.SCHEMATA
		WHERE SCHEMA_NAME = ?
	`

	var count int
	if err := q.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetTables returns all table names in the active database
func (r *SchemaRepository) GetTables(ctx context.Context, q Executor) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// DescribeTable returns the columns of a table in declaration order. Unknown
// tables fail with the engine's "no such table" error.
func (r *SchemaRepository) DescribeTable(ctx context.Context, q Executor, table string) ([]models.ColumnDescriptor, error) {
	rows, err := q.QueryContext(ctx, "DESCRIBE "+QuoteIdent(table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make([]models.ColumnDescriptor, 0)
	for rows.Next() {
		var (
			field, colType, null, key, extra string
			defaultValue                     sql.NullString
		)
		if err := rows.Scan(&field, &colType, &null, &key, &defaultValue, &extra); err != nil {
			return nil, err
		}

		col := models.ColumnDescriptor{
			Name:            field,
			DeclaredType:    colType,
			Nullable:        null == "YES",
			IsAutoIncrement: strings.Contains(strings.ToLower(extra), "auto_increment"),
			KeyRole:         models.KeyRoleNone,
			Key:             key,
			Extra:           extra,
		}
		if key == "PRI" {
			col.KeyRole = models.KeyRolePrimary
		}
		if defaultValue.Valid {
			value := defaultValue.String
			col.DefaultValue = &value
		}
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// GetPrimaryKeyColumns returns the columns of the PRIMARY KEY constraint in key
// order. DESCRIBE also reports PRI for a UNIQUE NOT NULL column of a table
// without a primary key, so the constraint itself is the source of truth.
func (r *SchemaRepository) GetPrimaryKeyColumns(ctx context.Context, q Executor, table string) ([]string, error) {
	query := `
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = DATABASE()
			AND TABLE_NAME = ?
			AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION
	`

	rows, err := q.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make([]string, 0, 1)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}

	return columns, rows.Err()
}

// GetForeignKeys returns the outgoing foreign keys of a table
func (r *SchemaRepository) GetForeignKeys(ctx context.Context, q Executor, table string) ([]models.ForeignKey, error) {
	query := `
		SELECT
			COLUMN_NAME,
			REFERENCED_TABLE_NAME,
			REFERENCED_COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = DATABASE()
			AND TABLE_NAME = ?
			AND REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY ORDINAL_POSITION
	`

	rows, err := q.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fks := make([]models.ForeignKey, 0)
	for rows.Next() {
		var fk models.ForeignKey
		if err := rows.Scan(&fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}

	return fks, rows.Err()
}

// GetForeignKeyForColumn returns the foreign key declared on table.column, or nil.
func (r *SchemaRepository) GetForeignKeyForColumn(ctx context.Context, q Executor, table, column string) (*models.ForeignKey, error) {
	query := `
		SELECT
			COLUMN_NAME,
			REFERENCED_TABLE_NAME,
			REFERENCED_COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = DATABASE()
			AND TABLE_NAME = ?
			AND COLUMN_NAME = ?
			AND REFERENCED_TABLE_NAME IS NOT NULL
		LIMIT 1
	`

	var fk models.ForeignKey
	err := q.QueryRowContext(ctx, query, table, column).Scan(&fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fk, nil
}

// GetReferencingConstraints returns the foreign keys of other tables pointing
// at table. An empty column matches every referenced column of the table.
func (r *SchemaRepository) GetReferencingConstraints(ctx context.Context, q Executor, table, column string) ([]models.ReferencingConstraint, error) {
	query := `
		SELECT
			TABLE_NAME,
			COLUMN_NAME,
			REFERENCED_TABLE_NAME,
			REFERENCED_COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE REFERENCED_TABLE_SCHEMA = DATABASE()
			AND REFERENCED_TABLE_NAME = ?
	`
	args := []interface{}{table}
	if column != "" {
		query += "	AND REFERENCED_COLUMN_NAME = ?\n"
		args = append(args, column)
	}
	query += "	ORDER BY TABLE_NAME, ORDINAL_POSITION"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	constraints := make([]models.ReferencingConstraint, 0)
	for rows.Next() {
		var rc models.ReferencingConstraint
		if err := rows.Scan(&rc.ReferencingTable, &rc.ReferencingColumn, &rc.ReferencedTable, &rc.ReferencedColumn); err != nil {
			return nil, err
		}
		constraints = append(constraints, rc)
	}

	return constraints, rows.Err()
}
