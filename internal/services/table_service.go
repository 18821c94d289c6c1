package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dbdesk/mysql-admin/internal/models"
	"github.com/dbdesk/mysql-admin/internal/repositories"
)

type TableService struct {
	pool       ConnProvider
	schemaRepo *repositories.SchemaRepository
	tableRepo  *repositories.TableRepository
	logger     *logrus.Logger
}

func NewTableService(
	pool ConnProvider,
	schemaRepo *repositories.SchemaRepository,
	tableRepo *repositories.TableRepository,
	logger *logrus.Logger,
) *TableService {
	return &TableService{
		pool:       pool,
		schemaRepo: schemaRepo,
		tableRepo:  tableRepo,
		logger:     logger,
	}
}

type CreateTableRequest struct {
	TableName string              `json:"tableName"`
	Columns   []models.ColumnSpec `json:"columns"`
}

// ListTables returns the tables of the active database.
func (s *TableService) ListTables(ctx context.Context) ([]string, error) {
	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	tables, err := s.schemaRepo.GetTables(ctx, conn)
	if err != nil {
		return nil, classifyError(err)
	}
	return tables, nil
}

// PreviewCreateTable validates req against the active database and returns
// the statement CreateTable would run.
func (s *TableService) PreviewCreateTable(ctx context.Context, req *CreateTableRequest) (string, error) {
	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	return s.buildStatement(ctx, conn, req)
}

// CreateTable builds the CREATE TABLE statement for req and executes it.
func (s *TableService) CreateTable(ctx context.Context, req *CreateTableRequest) (string, error) {
	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	statement, err := s.buildStatement(ctx, conn, req)
	if err != nil {
		return "", err
	}

	s.logger.Debugf("Executing DDL: %s", statement)
	if _, err := s.tableRepo.Exec(ctx, conn, statement); err != nil {
		return "", classifyError(err)
	}

	s.logger.Infof("Created table %s", req.TableName)
	return statement, nil
}

func (s *TableService) buildStatement(ctx context.Context, q repositories.Executor, req *CreateTableRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%w: request body is required", ErrInvalidInput)
	}

	tables, err := s.schemaRepo.GetTables(ctx, q)
	if err != nil {
		return "", classifyError(err)
	}

	var lookupErr error
	described := map[string][]models.ColumnDescriptor{}
	resolve := func(table, column string) (string, bool) {
		cols, ok := described[table]
		if !ok {
			var describeErr error
			cols, describeErr = s.schemaRepo.DescribeTable(ctx, q, table)
			if describeErr != nil {
				if lookupErr == nil {
					lookupErr = describeErr
				}
				return "", false
			}
			described[table] = cols
		}
		for _, col := range cols {
			if col.Name == column {
				return col.DeclaredType, true
			}
		}
		return "", false
	}

	statement, err := BuildCreateTable(req.TableName, req.Columns, tables, resolve)
	if err != nil {
		return "", err
	}
	if lookupErr != nil {
		return "", classifyError(lookupErr)
	}
	return statement, nil
}

// DropTable drops a table of the active database.
func (s *TableService) DropTable(ctx context.Context, table string) error {
	if err := validateIdentifier("table", table); err != nil {
		return err
	}

	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := s.tableRepo.DropTable(ctx, conn, table); err != nil {
		return classifyError(err)
	}

	s.logger.Infof("Dropped table %s", table)
	return nil
}
