package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dbdesk/mysql-admin/internal/models"
	"github.com/dbdesk/mysql-admin/internal/repositories"
)

// referencedDataLimit caps the rows returned for a foreign key lookup.
const referencedDataLimit = 1000

// SchemaService is the metadata inspector: it derives a table's enriched
// schema from DESCRIBE and INFORMATION_SCHEMA on every call.
type SchemaService struct {
	pool       ConnProvider
	schemaRepo *repositories.SchemaRepository
	tableRepo  *repositories.TableRepository
	logger     *logrus.Logger
}

func NewSchemaService(
	pool ConnProvider,
	schemaRepo *repositories.SchemaRepository,
	tableRepo *repositories.TableRepository,
	logger *logrus.Logger,
) *SchemaService {
	return &SchemaService{
		pool:       pool,
		schemaRepo: schemaRepo,
		tableRepo:  tableRepo,
		logger:     logger,
	}
}

// GetTableStructure returns the columns, primary key and foreign key graph of table.
func (s *SchemaService) GetTableStructure(ctx context.Context, table string) (*models.TableSchema, error) {
	if err := validateIdentifier("table", table); err != nil {
		return nil, err
	}

	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return s.inspect(ctx, conn, table)
}

// describe loads the columns and primary key of table without foreign key
// information. Unknown tables fail with ErrNotFound. The primary key is the
// first column of the PRIMARY KEY constraint in column order.
func (s *SchemaService) describe(ctx context.Context, q repositories.Executor, table string) (*models.TableSchema, error) {
	columns, err := s.schemaRepo.DescribeTable(ctx, q, table)
	if err != nil {
		return nil, classifyError(err)
	}

	primary, err := s.schemaRepo.GetPrimaryKeyColumns(ctx, q, table)
	if err != nil {
		return nil, classifyError(err)
	}
	keyColumns := make(map[string]bool, len(primary))
	for _, name := range primary {
		keyColumns[name] = true
	}

	schema := &models.TableSchema{
		Name:              table,
		Columns:           columns,
		ReferencingTables: map[string][]models.ReferencingColumn{},
	}
	for i := range columns {
		if !keyColumns[columns[i].Name] {
			columns[i].KeyRole = models.KeyRoleNone
			continue
		}
		columns[i].KeyRole = models.KeyRolePrimary
		if schema.PrimaryKey == nil {
			name := columns[i].Name
			schema.PrimaryKey = &name
		}
	}
	return schema, nil
}

func (s *SchemaService) inspect(ctx context.Context, q repositories.Executor, table string) (*models.TableSchema, error) {
	schema, err := s.describe(ctx, q, table)
	if err != nil {
		return nil, err
	}

	outgoing, err := s.schemaRepo.GetForeignKeys(ctx, q, table)
	if err != nil {
		return nil, classifyError(err)
	}
	incoming, err := s.schemaRepo.GetReferencingConstraints(ctx, q, table, "")
	if err != nil {
		return nil, classifyError(err)
	}

	byColumn := make(map[string]models.ForeignKey, len(outgoing))
	for _, fk := range outgoing {
		if _, seen := byColumn[fk.Column]; !seen {
			byColumn[fk.Column] = fk
		}
	}
	for i := range schema.Columns {
		fk, ok := byColumn[schema.Columns[i].Name]
		if !ok {
			continue
		}
		schema.Columns[i].IsForeignKey = true
		schema.Columns[i].ReferencedTable = fk.ReferencedTable
		schema.Columns[i].ReferencedColumn = fk.ReferencedColumn
	}

	for _, rc := range incoming {
		schema.ReferencingTables[rc.ReferencingTable] = append(schema.ReferencingTables[rc.ReferencingTable], models.ReferencingColumn{
			Column:           rc.ReferencingColumn,
			ReferencedColumn: rc.ReferencedColumn,
		})
	}

	s.logger.Debugf("Inspected table %s: %d columns, %d outgoing and %d incoming foreign keys",
		table, len(schema.Columns), len(outgoing), len(incoming))
	return schema, nil
}

// GetReferencedData returns the rows of the table that table.column points
// at, ordered by the referenced column.
func (s *SchemaService) GetReferencedData(ctx context.Context, table, column string) (*models.ReferencedData, error) {
	if err := validateIdentifier("table", table); err != nil {
		return nil, err
	}
	if err := validateIdentifier("column", column); err != nil {
		return nil, err
	}

	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	fk, err := s.schemaRepo.GetForeignKeyForColumn(ctx, conn, table, column)
	if err != nil {
		return nil, classifyError(err)
	}
	if fk == nil {
		return nil, fmt.Errorf("%w: No foreign key relationship found for this column", ErrNotFound)
	}

	rows, err := s.tableRepo.Select(ctx, conn, fk.ReferencedTable, repositories.SelectOptions{
		SortBy: fk.ReferencedColumn,
		Limit:  referencedDataLimit,
	})
	if err != nil {
		return nil, classifyError(err)
	}

	return &models.ReferencedData{
		ReferencedTable:  fk.ReferencedTable,
		ReferencedColumn: fk.ReferencedColumn,
		Data:             rows,
	}, nil
}
