package services

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/dbdesk/mysql-admin/internal/models"
	"github.com/dbdesk/mysql-admin/internal/repositories"
	"github.com/dbdesk/mysql-admin/internal/utils"
)

const tableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_0900_ai_ci"

// maxIdentifierLength is the longest constraint name MySQL accepts.
const maxIdentifierLength = 64

// columnTypePattern accepts a MySQL data type with optional length, precision
// or value list and trailing attributes, e.g. "DECIMAL(10, 2) UNSIGNED".
var columnTypePattern = regexp.MustCompile(`(?i)^([a-z]+(?: precision)?)\s*(\(\s*(?:\d+(?:\s*,\s*\d+)?|'[^']*'(?:\s*,\s*'[^']*')*)\s*\))?((?:\s+(?:unsigned|signed|zerofill))*)$`)

var mysqlTypes = map[string]bool{
	"TINYINT": true, "SMALLINT": true, "MEDIUMINT": true, "INT": true, "INTEGER": true, "BIGINT": true,
	"DECIMAL": true, "DEC": true, "NUMERIC": true, "FLOAT": true, "DOUBLE": true, "DOUBLE PRECISION": true, "REAL": true,
	"BIT": true, "BOOL": true, "BOOLEAN": true, "SERIAL": true,
	"DATE": true, "DATETIME": true, "TIMESTAMP": true, "TIME": true, "YEAR": true,
	"CHAR": true, "VARCHAR": true, "BINARY": true, "VARBINARY": true,
	"TINYTEXT": true, "TEXT": true, "MEDIUMTEXT": true, "LONGTEXT": true,
	"TINYBLOB": true, "BLOB": true, "MEDIUMBLOB": true, "LONGBLOB": true,
	"ENUM": true, "SET": true, "JSON": true,
	"GEOMETRY": true, "POINT": true, "LINESTRING": true, "POLYGON": true,
}

// TypeResolver returns the declared type of table.column, or false when it
// cannot be resolved. Unresolvable references skip the compatibility check.
type TypeResolver func(table, column string) (string, bool)

func isValidColumnType(colType string) bool {
	m := columnTypePattern.FindStringSubmatch(strings.TrimSpace(colType))
	if m == nil {
		return false
	}
	return mysqlTypes[strings.ToUpper(m[1])]
}

// baseType is the upper-cased type keyword without length or attributes.
func baseType(colType string) string {
	t := strings.ToUpper(strings.TrimSpace(colType))
	if i := strings.IndexAny(t, "( "); i >= 0 {
		t = t[:i]
	}
	return t
}

func isIntegerType(colType string) bool {
	switch baseType(colType) {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT":
		return true
	}
	return false
}

func isStringType(colType string) bool {
	base := baseType(colType)
	return strings.Contains(base, "CHAR") || strings.Contains(base, "TEXT")
}

func isNumericType(colType string) bool {
	switch baseType(colType) {
	case "DECIMAL", "DEC", "NUMERIC", "FLOAT", "DOUBLE":
		return true
	}
	return false
}

// TypesCompatible reports whether a foreign key column of type a may
// reference a column of type b.
func TypesCompatible(a, b string) bool {
	switch {
	case isIntegerType(a) && isIntegerType(b):
		return true
	case isStringType(a) && isStringType(b):
		return true
	case isNumericType(a) && isNumericType(b):
		return true
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ValidateCreateTable checks a table definition and returns the columns to
// generate from. When no column is marked primary, an integer column named
// "id" is promoted. The first violated rule is returned.
func ValidateCreateTable(table string, columns []models.ColumnSpec, existingTables []string, resolve TypeResolver) ([]models.ColumnSpec, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("%w: Table name is required", ErrInvalidInput)
	}
	if err := validateIdentifier("table", table); err != nil {
		return nil, err
	}
	if utils.Contains(existingTables, table) {
		return nil, fmt.Errorf("%w: %s", ErrTableExists, table)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: At least one column is required", ErrInvalidInput)
	}
	cols := make([]models.ColumnSpec, len(columns))
	copy(cols, columns)

	for i := range cols {
		cols[i].Name = strings.TrimSpace(cols[i].Name)
		cols[i].Type = strings.TrimSpace(cols[i].Type)
		if cols[i].Name == "" {
			return nil, fmt.Errorf("%w: All columns must have a name", ErrInvalidInput)
		}
	}

	seen := make(map[string]bool, len(cols))
	for _, col := range cols {
		if err := validateIdentifier("column", col.Name); err != nil {
			return nil, err
		}
		key := strings.ToLower(col.Name)
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate column name %q", ErrInvalidInput, col.Name)
		}
		seen[key] = true
		if col.Type == "" {
			return nil, fmt.Errorf("%w: column type is required for column %q", ErrInvalidInput, col.Name)
		}
		if !isValidColumnType(col.Type) {
			return nil, fmt.Errorf("%w: invalid column type for %s: %s", ErrInvalidInput, col.Name, col.Type)
		}
	}

	if !hasPrimaryKey(cols) {
		promoted := false
		for i := range cols {
			if strings.EqualFold(cols[i].Name, "id") && isIntegerType(cols[i].Type) {
				cols[i].PrimaryKey = true
				promoted = true
				break
			}
		}
		if !promoted {
			return nil, ErrMissingPrimaryKey
		}
	}

	for _, col := range cols {
		if !col.ForeignKey {
			continue
		}
		if col.ReferencedTable == "" {
			return nil, fmt.Errorf("%w: Column %q is marked as a foreign key but has no referenced table selected", ErrIncompleteForeignKey, col.Name)
		}
		if col.ReferencedColumn == "" {
			return nil, fmt.Errorf("%w: Column %q is marked as a foreign key but has no referenced column selected", ErrIncompleteForeignKey, col.Name)
		}
		if err := validateIdentifier("referenced table", col.ReferencedTable); err != nil {
			return nil, err
		}
		if err := validateIdentifier("referenced column", col.ReferencedColumn); err != nil {
			return nil, err
		}

		refType, ok := referencedType(table, cols, col, resolve)
		if ok && !TypesCompatible(col.Type, refType) {
			return nil, fmt.Errorf("%w: Column %q type (%s) is not compatible with referenced column type (%s)",
				ErrTypeMismatch, col.Name, col.Type, refType)
		}
	}

	return cols, nil
}

func hasPrimaryKey(cols []models.ColumnSpec) bool {
	for _, col := range cols {
		if col.PrimaryKey {
			return true
		}
	}
	return false
}

// referencedType resolves the type of the column col points at. A table may
// reference itself, in which case the type comes from its own definition.
func referencedType(table string, cols []models.ColumnSpec, col models.ColumnSpec, resolve TypeResolver) (string, bool) {
	if col.ReferencedTable == table {
		for _, c := range cols {
			if c.Name == col.ReferencedColumn {
				return c.Type, true
			}
		}
		return "", false
	}
	if resolve == nil {
		return "", false
	}
	return resolve(col.ReferencedTable, col.ReferencedColumn)
}

// GenerateCreateTable renders a CREATE TABLE statement for columns that
// passed ValidateCreateTable.
func GenerateCreateTable(table string, cols []models.ColumnSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", repositories.QuoteIdent(table))

	defs := make([]string, len(cols))
	var primaryKeys []string
	for i, col := range cols {
		def := repositories.QuoteIdent(col.Name) + " " + col.Type
		if col.NotNull {
			def += " NOT NULL"
		}
		if col.AutoIncrement {
			def += " AUTO_INCREMENT"
		}
		defs[i] = def
		if col.PrimaryKey {
			primaryKeys = append(primaryKeys, repositories.QuoteIdent(col.Name))
		}
	}
	b.WriteString(strings.Join(defs, ",\n"))

	if len(primaryKeys) > 0 {
		fmt.Fprintf(&b, ",\nPRIMARY KEY (%s)", strings.Join(primaryKeys, ", "))
	}

	ordinal := 0
	for _, col := range cols {
		if !col.ForeignKey || col.ReferencedTable == "" || col.ReferencedColumn == "" {
			continue
		}
		name := foreignKeyName(table, col.Name, ordinal)
		fmt.Fprintf(&b, ",\nCONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
			repositories.QuoteIdent(name),
			repositories.QuoteIdent(col.Name),
			repositories.QuoteIdent(col.ReferencedTable),
			repositories.QuoteIdent(col.ReferencedColumn),
		)
		ordinal++
	}

	b.WriteString("\n) " + tableOptions)
	return b.String()
}

// foreignKeyName returns fk_<table>_<column>_<ordinal>. Names longer than
// maxIdentifierLength are truncated and tagged with a hash of the full name.
func foreignKeyName(table, column string, ordinal int) string {
	base := fmt.Sprintf("fk_%s_%s", table, column)
	suffix := fmt.Sprintf("_%d", ordinal)
	if len(base)+len(suffix) <= maxIdentifierLength {
		return base + suffix
	}
	h := fnv.New32a()
	h.Write([]byte(base))
	tag := fmt.Sprintf("_%08x", h.Sum32())
	return base[:maxIdentifierLength-len(tag)-len(suffix)] + tag + suffix
}

// BuildCreateTable validates a table definition and renders its CREATE TABLE
// statement.
func BuildCreateTable(table string, columns []models.ColumnSpec, existingTables []string, resolve TypeResolver) (string, error) {
	cols, err := ValidateCreateTable(table, columns, existingTables, resolve)
	if err != nil {
		return "", err
	}
	return GenerateCreateTable(table, cols), nil
}
