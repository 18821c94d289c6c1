package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dbdesk/mysql-admin/internal/repositories"
)

// DatabaseSwitcher replaces the active pool. It is implemented by
// *database.Manager.
type DatabaseSwitcher interface {
	Use(ctx context.Context, database string) error
	Database() string
}

// CatalogService lists, creates and drops databases and switches the active one.
type CatalogService struct {
	pool       ConnProvider
	switcher   DatabaseSwitcher
	schemaRepo *repositories.SchemaRepository
	tableRepo  *repositories.TableRepository
	logger     *logrus.Logger
}

func NewCatalogService(
	pool ConnProvider,
	switcher DatabaseSwitcher,
	schemaRepo *repositories.SchemaRepository,
	tableRepo *repositories.TableRepository,
	logger *logrus.Logger,
) *CatalogService {
	return &CatalogService{
		pool:       pool,
		switcher:   switcher,
		schemaRepo: schemaRepo,
		tableRepo:  tableRepo,
		logger:     logger,
	}
}

func validateDatabaseName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: Database name is required", ErrInvalidInput)
	}
	if err := validateIdentifier("database", name); err != nil {
		return fmt.Errorf("%w: Database name can only contain letters, numbers, and underscores", ErrInvalidInput)
	}
	return nil
}

// ListDatabases returns the databases on the server, system schemas excluded.
func (s *CatalogService) ListDatabases(ctx context.Context) ([]string, error) {
	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	databases, err := s.schemaRepo.GetDatabases(ctx, conn)
	if err != nil {
		return nil, classifyError(err)
	}
	return databases, nil
}

func (s *CatalogService) CreateDatabase(ctx context.Context, name string) error {
	if err := validateDatabaseName(name); err != nil {
		return err
	}

	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return err
	}
	defer conn.Close()

	exists, err := s.schemaRepo.DatabaseExists(ctx, conn, name)
	if err != nil {
		return classifyError(err)
	}
	if exists {
		return fmt.Errorf("%w: Database already exists", ErrAlreadyExists)
	}

	if err := s.tableRepo.CreateDatabase(ctx, conn, name); err != nil {
		return classifyError(err)
	}

	s.logger.Infof("Created database %s", name)
	return nil
}

// DropDatabase drops a user database. When it is the active one the pool is
// switched to no database so later connections do not fail on open.
func (s *CatalogService) DropDatabase(ctx context.Context, name string) error {
	if err := validateDatabaseName(name); err != nil {
		return err
	}
	if repositories.IsSystemDatabase(name) {
		return fmt.Errorf("%w: Cannot drop system database %s", ErrInvalidInput, name)
	}

	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return err
	}
	err = s.tableRepo.DropDatabase(ctx, conn, name)
	conn.Close()
	if err != nil {
		return classifyError(err)
	}
	s.logger.Infof("Dropped database %s", name)

	if s.switcher.Database() == name {
		if err := s.switcher.Use(ctx, ""); err != nil {
			s.logger.Warnf("Dropped the active database but could not reset the connection pool: %v", err)
		}
	}
	return nil
}

// UseDatabase makes name the active database. On failure the previous
// database stays active.
func (s *CatalogService) UseDatabase(ctx context.Context, name string) error {
	if err := validateDatabaseName(name); err != nil {
		return err
	}

	if err := s.switcher.Use(ctx, name); err != nil {
		s.logger.Errorf("Failed to switch to database %s: %v", name, err)
		return fmt.Errorf("%w: Failed to connect to database %s: %w", ErrEngine, name, err)
	}
	return nil
}

// ActiveDatabase returns the name of the active database.
func (s *CatalogService) ActiveDatabase() string {
	return s.switcher.Database()
}
