package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/compound-data/internal/config"
)

// Conn is a connection checked out of a pool. It must be released exactly once.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Release()
}

// Pool hands out connections and runs standalone statements.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Pools holds both database targets.
type Pools struct {
	// Primary holds snapshot writes and transactions.
	Primary *pgxpool.Pool

	// Alternate is the secondary (local) target.
	Alternate *pgxpool.Pool
}

// NewPools creates connection pools for both databases.
func NewPools(ctx context.Context, cfg config.DatabaseConfig) (*Pools, error) {
	primary, err := Connect(ctx, cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("connect primary: %w", err)
	}

	alternate, err := Connect(ctx, cfg.Alternate)
	if err != nil {
		primary.Close()
		return nil, fmt.Errorf("connect alternate: %w", err)
	}

	return &Pools{
		Primary:   primary,
		Alternate: alternate,
	}, nil
}

// Connect creates a single connection pool.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)
	if cfg.IdleTimeout > 0 {
		poolCfg.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Close closes both connection pools.
func (p *Pools) Close() {
	if p.Primary != nil {
		p.Primary.Close()
	}
	if p.Alternate != nil {
		p.Alternate.Close()
	}
}

// Ping verifies both connections are healthy.
func (p *Pools) Ping(ctx context.Context) error {
	if err := p.Primary.Ping(ctx); err != nil {
		return fmt.Errorf("ping primary: %w", err)
	}
	if err := p.Alternate.Ping(ctx); err != nil {
		return fmt.Errorf("ping alternate: %w", err)
	}
	return nil
}

// Gateway wires both pools into a statement gateway.
func (p *Pools) Gateway(logger *slog.Logger) *Gateway {
	return NewGateway(WrapPool(p.Primary), WrapPool(p.Alternate), logger)
}

// WrapPool adapts a pgxpool.Pool to the Pool interface.
func WrapPool(pool *pgxpool.Pool) Pool {
	return pgxPool{pool: pool}
}

type pgxPool struct {
	pool *pgxpool.Pool
}

func (p pgxPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (p pgxPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.pool.Query(ctx, sql, args...)
}
