package docsql

import (
	"errors"
	"fmt"
)

// ErrSessionClosed is returned when a session, or a table handle obtained
// from it, is used after Close. Stale handles are a programming error and
// fail loudly rather than touching a dead connection.
var ErrSessionClosed = errors.New("docsql: session is closed")

// TableExistsError is returned by CreateTable when the table already exists
// and force recreation was not requested.
type TableExistsError struct {
	Table string
}

func (e *TableExistsError) Error() string {
	return fmt.Sprintf("table %q already exists", e.Table)
}

// TableNotFoundError is returned by DropTable when the table does not exist
// and silent mode was not requested.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %q does not exist", e.Table)
}

// InvalidSchemaError is returned by CreateTable for malformed column specs
// or an empty primary key list.
type InvalidSchemaError struct {
	Reason string
}

func (e *InvalidSchemaError) Error() string {
	return "invalid schema: " + e.Reason
}

// ExecError wraps a failure raised by the backend driver, carrying the
// attempted operation and table for context. The driver error is available
// via errors.Unwrap. The session performs no retries; the error surfaces
// to the caller as-is.
type ExecError struct {
	Op    string
	Table string
	Err   error
}

func (e *ExecError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s on table %q failed: %v", e.Op, e.Table, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }
