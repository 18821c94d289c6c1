package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbdesk/mysql-admin/internal/utils"
)

// ConnProvider hands out one connection per logical operation. It is
// satisfied by *database.Manager and by *sql.DB.
type ConnProvider interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

func borrow(ctx context.Context, pool ConnProvider) (*sql.Conn, error) {
	conn, err := pool.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return conn, nil
}

func validateIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: %s name is required", ErrInvalidInput, kind)
	}
	if !utils.IsValidIdentifier(name) {
		return fmt.Errorf("%w: invalid %s name %q", ErrInvalidInput, kind, name)
	}
	return nil
}
