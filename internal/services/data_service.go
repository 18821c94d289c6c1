package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dbdesk/mysql-admin/internal/models"
	"github.com/dbdesk/mysql-admin/internal/repositories"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
)

// ReadOptions selects one page of a table. Filter values match as substrings.
type ReadOptions struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Filter map[string]string
}

// DataService is the paginated reader.
type DataService struct {
	pool      ConnProvider
	schema    *SchemaService
	tableRepo *repositories.TableRepository
	logger    *logrus.Logger
}

func NewDataService(pool ConnProvider, schema *SchemaService, tableRepo *repositories.TableRepository, logger *logrus.Logger) *DataService {
	return &DataService{
		pool:      pool,
		schema:    schema,
		tableRepo: tableRepo,
		logger:    logger,
	}
}

// GetPage returns one page of table together with the filtered row count.
func (s *DataService) GetPage(ctx context.Context, table string, opts ReadOptions) (*models.Page, error) {
	if err := validateIdentifier("table", table); err != nil {
		return nil, err
	}
	if opts.Page < 1 {
		return nil, fmt.Errorf("%w: page must be a positive integer", ErrInvalidInput)
	}
	if opts.Limit < 1 {
		return nil, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidInput)
	}
	if opts.Page-1 > math.MaxInt/opts.Limit {
		return nil, fmt.Errorf("%w: page is out of range for limit %d", ErrInvalidInput, opts.Limit)
	}

	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	schema, err := s.schema.describe(ctx, conn, table)
	if err != nil {
		return nil, err
	}

	if opts.Sort != "" && !schema.HasColumn(opts.Sort) {
		return nil, fmt.Errorf("%w: unknown sort column %q", ErrInvalidInput, opts.Sort)
	}
	for column := range opts.Filter {
		if !schema.HasColumn(column) {
			return nil, fmt.Errorf("%w: unknown filter column %q", ErrInvalidInput, column)
		}
	}

	filters := make([]repositories.Filter, 0, len(opts.Filter))
	for _, col := range schema.Columns {
		if value := opts.Filter[col.Name]; value != "" {
			filters = append(filters, repositories.Filter{Column: col.Name, Value: value})
		}
	}

	total, err := s.tableRepo.Count(ctx, conn, table, filters)
	if err != nil {
		return nil, classifyError(err)
	}

	rows, err := s.tableRepo.Select(ctx, conn, table, repositories.SelectOptions{
		Filters: filters,
		SortBy:  opts.Sort,
		Desc:    strings.EqualFold(opts.Order, "desc"),
		Limit:   opts.Limit,
		Offset:  (opts.Page - 1) * opts.Limit,
	})
	if err != nil {
		return nil, classifyError(err)
	}

	return &models.Page{
		Data: rows,
		Pagination: models.Pagination{
			Total:      total,
			Page:       opts.Page,
			Limit:      opts.Limit,
			TotalPages: totalPages(total, int64(opts.Limit)),
		},
	}, nil
}

func totalPages(total, limit int64) int64 {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}
