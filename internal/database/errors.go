package database

import "errors"

var (
	// ErrNoData is returned by ExecMany when there are no parameter sets to run.
	ErrNoData = errors.New("exec many: no data available")

	// ErrNoTx is returned when a nil transaction handle is committed or used.
	ErrNoTx = errors.New("transaction handle is not set")

	// ErrTxClosed is returned when a handle is used after commit or rollback.
	ErrTxClosed = errors.New("transaction already committed or rolled back")
)

// ExecError wraps a driver failure with the gateway operation that hit it.
// The driver error stays reachable through errors.As / errors.Is.
type ExecError struct {
	Op  string // "query", "acquire", "begin", "exec", "commit", "rollback"
	Err error
}

func (e *ExecError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

func execError(op string, err error) error {
	return &ExecError{Op: op, Err: err}
}
