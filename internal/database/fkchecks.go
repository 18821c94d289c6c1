package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
)

const (
	disableForeignKeyChecks = "SET FOREIGN_KEY_CHECKS = 0"
	enableForeignKeyChecks  = "SET FOREIGN_KEY_CHECKS = 1"
)

// WithForeignKeyChecksDisabled runs fn with FOREIGN_KEY_CHECKS off on conn and
// turns them back on before returning, whatever fn returns. If the checks
// cannot be restored the connection is discarded instead of going back to
// the pool with the checks off.
func WithForeignKeyChecksDisabled(ctx context.Context, conn *sql.Conn, fn func() error) (err error) {
	if _, err := conn.ExecContext(ctx, disableForeignKeyChecks); err != nil {
		return fmt.Errorf("failed to disable foreign key checks: %w", err)
	}

	defer func() {
		// The request context may already be cancelled here.
		_, restoreErr := conn.ExecContext(context.WithoutCancel(ctx), enableForeignKeyChecks)
		if restoreErr == nil {
			return
		}
		discard(conn)
		err = errors.Join(err, fmt.Errorf("failed to restore foreign key checks: %w", restoreErr))
	}()

	return fn()
}

// discard makes database/sql close the underlying connection when conn is released.
func discard(conn *sql.Conn) {
	_ = conn.Raw(func(any) error { return driver.ErrBadConn })
}
