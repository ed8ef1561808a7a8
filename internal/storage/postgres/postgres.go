// Package postgres persists player buff state in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/config"
)

// SchemaVersion is the migration the repositories in this package expect.
const SchemaVersion = 2

const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
)

// ErrSchemaOutdated is returned by CheckSchema when migrations are missing
// or were left dirty.
var ErrSchemaOutdated = errors.New("database schema is not migrated")

// Pool wraps a pgx connection pool with health and schema checks.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to PostgreSQL, retrying with a doubling backoff while the
// server is not yet accepting connections.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a pinged Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	wait := connectBackoff
	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			pool.Close()
			return nil, fmt.Errorf("pinging database after %d attempts: %w", attempt, err)
		}
		logger.Warn("database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return &Pool{pool: pool}, nil
}

// CheckSchema verifies golang-migrate has applied at least SchemaVersion
// and left no migration dirty.
func (p *Pool) CheckSchema(ctx context.Context) error {
	var (
		version int64
		dirty   bool
	)
	err := p.pool.QueryRow(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%w: no migrations applied", ErrSchemaOutdated)
	case err != nil:
		return fmt.Errorf("%w: %v", ErrSchemaOutdated, err)
	case dirty:
		return fmt.Errorf("%w: version %d is dirty", ErrSchemaOutdated, version)
	case version < SchemaVersion:
		return fmt.Errorf("%w: at version %d, need %d", ErrSchemaOutdated, version, SchemaVersion)
	}
	return nil
}

// Health checks that the database is reachable within the given timeout.
//
// Precondition: The pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Watch health-checks the database every interval until ctx is done. A
// failed check is logged, and recovery is logged once.
//
// Postcondition: returns nil when ctx is done.
func (p *Pool) Watch(ctx context.Context, interval time.Duration, logger *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	healthy := true
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := p.Health(ctx, interval/2)
			switch {
			case err != nil && ctx.Err() == nil:
				logger.Warn("database health check failed", zap.Error(err))
				healthy = false
			case err == nil && !healthy:
				logger.Info("database reachable again")
				healthy = true
			}
		}
	}
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for use by repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
