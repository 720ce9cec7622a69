package database

import (
	"time"

	"github.com/google/uuid"
)

type txState int

const (
	txCreated txState = iota
	txOpen
	txCommitted
	txRolledBack
)

func (s txState) String() string {
	switch s {
	case txCreated:
		return "created"
	case txOpen:
		return "open"
	case txCommitted:
		return "committed"
	case txRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Tx is one primary-pool connection bound to an open BEGIN.
// It is owned by the caller until Commit or Rollback.
type Tx struct {
	id        uuid.UUID
	conn      Conn
	state     txState
	startedAt time.Time
	stmts     int
}

func newTx(conn Conn) *Tx {
	return &Tx{
		id:        uuid.New(),
		conn:      conn,
		state:     txCreated,
		startedAt: time.Now(),
	}
}

// ID returns the handle's log correlation id.
func (tx *Tx) ID() uuid.UUID {
	return tx.id
}

// Open reports whether statements can still run on the handle.
func (tx *Tx) Open() bool {
	return tx != nil && tx.state == txOpen
}

// finish moves the handle to a terminal state and releases its connection.
// Only the first call releases.
func (tx *Tx) finish(state txState) {
	if tx.state == txCommitted || tx.state == txRolledBack {
		return
	}
	tx.state = state
	tx.conn.Release()
}
