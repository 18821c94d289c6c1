package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// ErrNoPool is returned when no pool has been opened yet.
var ErrNoPool = errors.New("database connection pool is not initialized")

// PoolConfig holds the pool sizing applied to every pool the Manager opens.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// Opener opens a pool for a driver configuration.
type Opener func(cfg *mysql.Config) (*sql.DB, error)

func openMySQL(cfg *mysql.Config) (*sql.DB, error) {
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid connection settings: %w", err)
	}
	return sql.OpenDB(connector), nil
}

// Manager owns the connection pool of the active database. Switching
// databases replaces the pool wholesale; operations that already borrowed a
// connection keep it until they release it.
type Manager struct {
	mu       sync.RWMutex
	db       *sql.DB
	cfg      *mysql.Config
	pool     PoolConfig
	open     Opener
	logger   *logrus.Logger
	pingWait time.Duration
}

type Option func(*Manager)

// WithOpener replaces the function used to open new pools.
func WithOpener(open Opener) Option {
	return func(m *Manager) { m.open = open }
}

func WithPoolConfig(pool PoolConfig) Option {
	return func(m *Manager) { m.pool = pool }
}

// NewManager wraps an already opened pool. cfg is the template used when
// switching to another database.
func NewManager(db *sql.DB, cfg *mysql.Config, logger *logrus.Logger, opts ...Option) *Manager {
	m := &Manager{
		db:       db,
		cfg:      cfg.Clone(),
		pool:     DefaultPoolConfig(),
		open:     openMySQL,
		logger:   logger,
		pingWait: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect opens and pings the initial pool described by cfg.
func Connect(ctx context.Context, cfg *mysql.Config, logger *logrus.Logger, opts ...Option) (*Manager, error) {
	m := NewManager(nil, cfg, logger, opts...)

	db, err := m.openPool(ctx, m.cfg)
	if err != nil {
		return nil, err
	}
	m.db = db

	logger.Infof("Connected to MySQL at %s (database: %q)", cfg.Addr, cfg.DBName)
	return m, nil
}

func (m *Manager) openPool(ctx context.Context, cfg *mysql.Config) (*sql.DB, error) {
	db, err := m.open(cfg)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(m.pool.MaxOpenConns)
	db.SetMaxIdleConns(m.pool.MaxIdleConns)
	db.SetConnMaxLifetime(m.pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(m.pool.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, m.pingWait)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// DB returns the current pool.
func (m *Manager) DB() *sql.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

// Database returns the name of the active database ("" when none is selected).
func (m *Manager) Database() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.DBName
}

// Conn borrows one connection from the current pool. The caller must Close it
// on every exit path.
func (m *Manager) Conn(ctx context.Context) (*sql.Conn, error) {
	db := m.DB()
	if db == nil {
		return nil, ErrNoPool
	}
	return db.Conn(ctx)
}

// Ping checks the current pool.
func (m *Manager) Ping(ctx context.Context) error {
	db := m.DB()
	if db == nil {
		return ErrNoPool
	}
	return db.PingContext(ctx)
}

// Use opens a pool for database, swaps it in and closes the previous pool.
// On failure the previous pool stays active.
func (m *Manager) Use(ctx context.Context, database string) error {
	m.mu.RLock()
	cfg := m.cfg.Clone()
	m.mu.RUnlock()
	cfg.DBName = database

	m.logger.Infof("Creating new connection pool for database: %s", database)
	db, err := m.openPool(ctx, cfg)
	if err != nil {
		return err
	}

	m.mu.Lock()
	old := m.db
	m.db = db
	m.cfg = cfg
	m.mu.Unlock()

	if old != nil {
		// Connections still borrowed from the old pool are closed as they are released.
		go func() {
			if err := old.Close(); err != nil {
				m.logger.Warnf("Error closing previous connection pool: %v", err)
			}
		}()
	}

	m.logger.Infof("Successfully switched to database: %s", database)
	return nil
}

// Close closes the current pool.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	m.logger.Info("Database connection pool closed")
	return err
}
