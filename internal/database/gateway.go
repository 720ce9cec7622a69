package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Target selects which pool a standalone statement runs on.
type Target int

const (
	Primary Target = iota
	Alternate
)

func (t Target) String() string {
	if t == Alternate {
		return "alternate"
	}
	return "primary"
}

// ParseTarget maps a config value to a Target.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "", "primary":
		return Primary, nil
	case "alternate":
		return Alternate, nil
	default:
		return Primary, fmt.Errorf("unknown database target %q", s)
	}
}

// Gateway runs statements against the primary and alternate pools.
// Transactions always use the primary pool.
type Gateway struct {
	primary   Pool
	alternate Pool
	logger    *slog.Logger
}

// NewGateway creates a Gateway over two injected pools.
func NewGateway(primary, alternate Pool, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		primary:   primary,
		alternate: alternate,
		logger:    logger,
	}
}

func (g *Gateway) pool(target Target) Pool {
	if target == Alternate {
		return g.alternate
	}
	return g.primary
}

// RunStatement issues one statement outside any transaction.
func (g *Gateway) RunStatement(ctx context.Context, target Target, sql string, args ...any) (*Result, error) {
	g.logger.Debug("run statement",
		"target", target,
		"sql", sql,
		"args", len(args),
	)

	rows, err := g.pool(target).Query(ctx, sql, args...)
	if err != nil {
		return nil, execError("query", err)
	}

	res, err := collect(rows)
	if err != nil {
		return nil, execError("query", err)
	}
	return res, nil
}

// Begin checks out a primary connection and opens a transaction on it.
// If BEGIN fails the connection goes back to the pool and no handle is returned.
func (g *Gateway) Begin(ctx context.Context) (*Tx, error) {
	conn, err := g.primary.Acquire(ctx)
	if err != nil {
		g.logger.Error("acquire connection failed", "error", err)
		return nil, execError("acquire", err)
	}

	tx := newTx(conn)
	if _, err := conn.Exec(ctx, "BEGIN"); err != nil {
		conn.Release()
		g.logger.Error("begin transaction failed", "tx", tx.id, "error", err)
		return nil, execError("begin", err)
	}
	tx.state = txOpen

	g.logger.Debug("transaction started", "tx", tx.id)
	return tx, nil
}

// ExecOne runs one parameterized statement inside tx.
// A failure leaves the transaction open; the caller decides whether to roll back.
func (g *Gateway) ExecOne(ctx context.Context, tx *Tx, sql string, args ...any) (*Result, error) {
	if err := checkOpen(tx); err != nil {
		return nil, err
	}

	g.logger.Debug("exec statement", "tx", tx.id, "sql", sql, "args", len(args))

	res, err := g.exec(ctx, tx, sql, args)
	if err != nil {
		g.logger.Error("exec statement failed",
			"tx", tx.id,
			"sql", sql,
			"error", err,
		)
		return nil, execError("exec", err)
	}

	g.logger.Debug("exec statement done",
		"tx", tx.id,
		"command", res.Command,
		"rows", res.RowsAffected,
	)
	return res, nil
}

// ExecMany runs sql once per parameter set, in order, stopping at the first failure.
func (g *Gateway) ExecMany(ctx context.Context, tx *Tx, sql string, params [][]any) error {
	if len(params) == 0 {
		g.logger.Error("exec many: no data available", "sql", sql)
		return ErrNoData
	}
	if err := checkOpen(tx); err != nil {
		return err
	}

	g.logger.Debug("exec many", "tx", tx.id, "sql", sql, "sets", len(params))

	for i, args := range params {
		if _, err := g.exec(ctx, tx, sql, args); err != nil {
			g.logger.Error("exec many failed",
				"tx", tx.id,
				"index", i,
				"error", err,
			)
			return execError("exec", err)
		}
	}
	return nil
}

func (g *Gateway) exec(ctx context.Context, tx *Tx, sql string, args []any) (*Result, error) {
	rows, err := tx.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	res, err := collect(rows)
	if err != nil {
		return nil, err
	}
	tx.stmts++
	return res, nil
}

// Rollback aborts tx and releases its connection, even if ROLLBACK fails.
// A nil handle is logged and ignored.
func (g *Gateway) Rollback(ctx context.Context, tx *Tx) error {
	if tx == nil {
		g.logger.Warn("rollback not executed, transaction handle is not set")
		return nil
	}
	if !tx.Open() {
		return ErrTxClosed
	}
	defer tx.finish(txRolledBack)

	g.logger.Info("sql transaction rollback", "tx", tx.id, "statements", tx.stmts)

	if _, err := tx.conn.Exec(ctx, "ROLLBACK"); err != nil {
		g.logger.Error("rollback failed", "tx", tx.id, "error", err)
		return execError("rollback", err)
	}
	return nil
}

// Commit commits tx and releases its connection, even if COMMIT fails.
// A failed commit is not rolled back here.
func (g *Gateway) Commit(ctx context.Context, tx *Tx) error {
	if tx == nil {
		return ErrNoTx
	}
	if !tx.Open() {
		return ErrTxClosed
	}
	defer tx.finish(txCommitted)

	if _, err := tx.conn.Exec(ctx, "COMMIT"); err != nil {
		g.logger.Error("commit failed", "tx", tx.id, "error", err)
		return execError("commit", err)
	}

	g.logger.Debug("sql transaction committed",
		"tx", tx.id,
		"statements", tx.stmts,
		"duration", time.Since(tx.startedAt),
	)
	return nil
}

// InTx runs fn inside a transaction. It commits when fn returns nil and rolls
// back when fn returns an error or panics. The connection is released on every path.
func (g *Gateway) InTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	tx, err := g.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if tx.Open() {
				_ = g.Rollback(ctx, tx)
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if !tx.Open() {
			return err
		}
		if rbErr := g.Rollback(ctx, tx); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	return g.Commit(ctx, tx)
}

func checkOpen(tx *Tx) error {
	if tx == nil {
		return ErrNoTx
	}
	if !tx.Open() {
		return ErrTxClosed
	}
	return nil
}
