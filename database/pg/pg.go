// Package pg provides small utilities for the lib/pq
// database driver.
package pg

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/onyx-protocol/txfilter/errors"
)

// ErrUserInputNotFound indicates that a query returned no rows
// for an identifier supplied by the user. Handlers map it to a
// client error rather than an internal one.
var ErrUserInputNotFound = errors.New("pg: user input not found")

// DB holds methods common to the DB, Tx, and Stmt types
// in package database/sql.
type DB interface {
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
}

// IsUniqueViolation returns true if the given error is a Postgres unique
// constraint violation error.
func IsUniqueViolation(err error) bool {
	pqErr, ok := errors.Root(err).(*pq.Error)
	return ok && pqErr.Code.Name() == "unique_violation"
}
