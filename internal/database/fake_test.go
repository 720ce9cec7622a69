package database

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakePool tracks how many connections are checked out.
type fakePool struct {
	mu         sync.Mutex
	size       int
	available  int
	acquireErr error

	// Per-connection behaviour.
	execErr  map[string]error // keyed by exact statement (BEGIN, COMMIT, ROLLBACK)
	queryErr func(n int, sql string) error

	// Standalone statement behaviour.
	rows    *fakeRows
	rowsErr error
	queries []string

	conns []*fakeConn
}

func newFakePool(size int) *fakePool {
	return &fakePool{size: size, available: size, execErr: map[string]error{}}
}

func (p *fakePool) Acquire(ctx context.Context) (Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	if p.available == 0 {
		return nil, errors.New("pool exhausted")
	}
	p.available--
	c := &fakeConn{pool: p}
	p.conns = append(p.conns, c)
	return c, nil
}

func (p *fakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.mu.Lock()
	p.queries = append(p.queries, sql)
	p.mu.Unlock()
	if p.rowsErr != nil {
		return nil, p.rowsErr
	}
	if p.rows != nil {
		return p.rows, nil
	}
	return &fakeRows{tag: "SELECT 0"}, nil
}

func (p *fakePool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

type fakeConn struct {
	pool     *fakePool
	stmts    []string
	args     [][]any
	released int
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.stmts = append(c.stmts, sql)
	if err := c.pool.execErr[sql]; err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag(sql), nil
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.stmts = append(c.stmts, sql)
	c.args = append(c.args, args)
	if c.pool.queryErr != nil {
		if err := c.pool.queryErr(len(c.args), sql); err != nil {
			return nil, err
		}
	}
	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	return &fakeRows{tag: strings.ToUpper(verb) + " 1"}, nil
}

func (c *fakeConn) Release() {
	c.released++
	c.pool.mu.Lock()
	c.pool.available++
	c.pool.mu.Unlock()
}

// queries returns the statements sent through Query (not BEGIN/COMMIT/ROLLBACK).
func (c *fakeConn) queries() int {
	return len(c.args)
}

// fakeRows is a minimal in-memory pgx.Rows.
type fakeRows struct {
	columns []string
	values  [][]any
	tag     string
	err     error

	pos    int
	closed bool
}

func (r *fakeRows) Close()     { r.closed = true }
func (r *fakeRows) Err() error { return r.err }

func (r *fakeRows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag(r.tag)
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.columns))
	for i, name := range r.columns {
		fds[i] = pgconn.FieldDescription{Name: name}
	}
	return fds
}

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return errors.New("fakeRows: Scan not supported")
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.pos-1], nil
}

func (r *fakeRows) RawValues() [][]byte { return nil }
func (r *fakeRows) Conn() *pgx.Conn     { return nil }
