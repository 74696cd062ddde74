package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrMissingConfig means DATABASE_URL or DATABASE_AUTH_TOKEN was absent.
	// No connection object exists when this is returned.
	ErrMissingConfig = errors.New("database configuration missing")

	// ErrNotConnected means a gateway call was made without a live handle.
	ErrNotConnected = errors.New("database not connected")
)

// SchemaError wraps a DDL statement failure during EnsureSchema. Any schema
// failure is fatal for the bootstrap attempt that triggered it.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: create %s: %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// SQLSTATE for unique_violation.
const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a unique-constraint violation.
// Classification is strictly by SQLSTATE, never by message text.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
