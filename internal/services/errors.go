package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/dbdesk/mysql-admin/internal/database"
	"github.com/dbdesk/mysql-admin/internal/models"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrSchema             = errors.New("schema error")
	ErrConstraintConflict = errors.New("constraint conflict")
	ErrConnection         = errors.New("database connection error")
	ErrEngine             = errors.New("database engine error")
	ErrAlreadyExists      = errors.New("already exists")

	ErrMissingPrimaryKey    = fmt.Errorf("%w: at least one column must be a primary key", ErrInvalidInput)
	ErrIncompleteForeignKey = fmt.Errorf("%w: foreign key requires a referenced table and column", ErrInvalidInput)
	ErrTypeMismatch         = fmt.Errorf("%w: incompatible foreign key type", ErrInvalidInput)
	ErrTableExists          = fmt.Errorf("%w: table already exists", ErrAlreadyExists)
)

// MySQL server error numbers the classifier distinguishes.
const (
	erDBCreateExists   = 1007
	erDBDropExists     = 1008
	erBadDB            = 1049
	erTableExists      = 1050
	erBadTable         = 1051
	erNoSuchTable      = 1146
	erRowIsReferenced2 = 1451
	erNoReferencedRow2 = 1452
)

// ConstraintConflictError reports that a mutation is blocked by foreign keys
// of other tables. Constraints is empty when the engine rejected the
// statement itself and no structured list is available.
type ConstraintConflictError struct {
	Summary     string
	Detail      string
	Solution    string
	Constraints []models.ReferencingConstraint
	Cause       error
}

func (e *ConstraintConflictError) Error() string {
	return e.Summary
}

func (e *ConstraintConflictError) Is(target error) bool {
	return target == ErrConstraintConflict
}

func (e *ConstraintConflictError) Unwrap() error {
	return e.Cause
}

const forceSolution = "You can use force=true parameter to bypass checks (not recommended)"

// classifyError maps a driver error onto the service error taxonomy. Errors
// that are already classified pass through unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		ErrInvalidInput, ErrNotFound, ErrSchema, ErrConstraintConflict,
		ErrConnection, ErrEngine, ErrAlreadyExists,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case erNoSuchTable, erBadDB, erBadTable, erDBDropExists:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		case erRowIsReferenced2, erNoReferencedRow2:
			return &ConstraintConflictError{
				Summary:  "Operation violates foreign key constraints",
				Detail:   "This change violates foreign key constraints. You need to update the referencing records first.",
				Solution: forceSolution,
				Cause:    err,
			}
		case erDBCreateExists, erTableExists:
			return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
		default:
			return fmt.Errorf("%w: %w", ErrEngine, err)
		}
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, database.ErrNoPool) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	return fmt.Errorf("%w: %w", ErrEngine, err)
}

// EngineMessage returns the message reported by the MySQL server, or the
// error text when err did not come from the server.
func EngineMessage(err error) string {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Message
	}
	return err.Error()
}

// EngineCode returns the MySQL error number as a string, or "" when err did
// not come from the server.
func EngineCode(err error) string {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return strconv.Itoa(int(myErr.Number))
	}
	return ""
}
