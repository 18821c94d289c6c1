package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dbdesk/mysql-admin/internal/models"
	"github.com/dbdesk/mysql-admin/internal/repositories"
)

const defaultHistoryLimit = 50

var commentPattern = regexp.MustCompile(`(?m)--.*$|#.*$|/\*[\s\S]*?\*/`)

// rowReturningKeywords start statements whose result is a row set.
var rowReturningKeywords = []string{
	"SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH", "TABLE", "VALUES",
	"CHECK", "ANALYZE", "OPTIMIZE", "REPAIR", "CHECKSUM", "CALL", "HELP",
}

// QueryHistoryStore keeps executed statements. It is implemented by
// repositories.QueryHistoryRepository.
type QueryHistoryStore interface {
	Create(ctx context.Context, entry *models.QueryHistory) error
	GetRecent(ctx context.Context, limit int) ([]models.QueryHistory, error)
}

type QueryService struct {
	pool      ConnProvider
	tableRepo *repositories.TableRepository
	history   QueryHistoryStore
	logger    *logrus.Logger
}

// NewQueryService creates a QueryService. history may be nil, which disables
// query history.
func NewQueryService(pool ConnProvider, tableRepo *repositories.TableRepository, history QueryHistoryStore, logger *logrus.Logger) *QueryService {
	return &QueryService{
		pool:      pool,
		tableRepo: tableRepo,
		history:   history,
		logger:    logger,
	}
}

type ExecuteQueryRequest struct {
	Query string `json:"query"`
}

// ExecResult is the outcome of a statement that returns no rows.
type ExecResult struct {
	AffectedRows int64 `json:"affectedRows"`
	InsertID     int64 `json:"insertId"`
}

// normalizeQuery strips comments and surrounding whitespace.
func normalizeQuery(query string) string {
	return strings.TrimSpace(commentPattern.ReplaceAllString(query, ""))
}

// returnsRows reports whether a normalized statement produces a row set.
func returnsRows(normalized string) bool {
	fields := strings.Fields(strings.ToUpper(strings.TrimLeft(normalized, "(")))
	if len(fields) == 0 {
		return false
	}
	keyword := strings.TrimRight(fields[0], ";(")
	for _, k := range rowReturningKeywords {
		if keyword == k {
			return true
		}
	}
	return false
}

// Execute runs a free-form statement on the active database. Row-returning
// statements yield []models.Row, all others an *ExecResult.
func (s *QueryService) Execute(ctx context.Context, query string) (interface{}, error) {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return nil, fmt.Errorf("%w: Query is required", ErrInvalidInput)
	}

	started := time.Now()
	result, err := s.execute(ctx, query, returnsRows(normalized))
	s.record(ctx, query, started, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *QueryService) execute(ctx context.Context, query string, rowSet bool) (interface{}, error) {
	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	s.logger.Debugf("Executing query: %s", query)
	if rowSet {
		rows, err := s.tableRepo.Query(ctx, conn, query)
		if err != nil {
			return nil, classifyError(err)
		}
		return rows, nil
	}

	res, err := s.tableRepo.Exec(ctx, conn, query)
	if err != nil {
		return nil, classifyError(err)
	}
	affected, _ := res.RowsAffected()
	insertID, _ := res.LastInsertId()
	return &ExecResult{AffectedRows: affected, InsertID: insertID}, nil
}

// record stores the execution in the history. Failures are logged and never
// fail the query itself.
func (s *QueryService) record(ctx context.Context, query string, started time.Time, execErr error) {
	if s.history == nil {
		return
	}

	entry := &models.QueryHistory{
		QueryText:       query,
		ExecutedAt:      started,
		Success:         execErr == nil,
		ExecutionTimeMs: time.Since(started).Milliseconds(),
	}
	if named, ok := s.pool.(interface{ Database() string }); ok {
		entry.Database = named.Database()
	}
	if execErr != nil {
		entry.Error = EngineMessage(execErr)
	}

	if err := s.history.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warnf("Failed to record query history: %v", err)
	}
}

// History returns the most recent executions, newest first. It is empty when
// history is disabled.
func (s *QueryService) History(ctx context.Context, limit int) ([]models.QueryHistory, error) {
	if s.history == nil {
		return []models.QueryHistory{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	entries, err := s.history.GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return entries, nil
}
