// Package repository defines the data access layer.  Each repository owns
// one table (or one aggregate such as a restaurant with its dishes) and
// exposes context-aware methods over a shared sqlx handle.  The sentinel
// values below let handlers map failures to HTTP status codes.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/selvawasi/selvawasi-api/internal/database"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write violates a unique or foreign key
// constraint, e.g. deleting a boat that still has schedules.  Handlers
// translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering an email already in use.
var ErrEmailExists = errors.New("email already exists")

// mapErr folds driver errors into the sentinels above.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case database.IsDuplicateKey(err), database.IsForeignKey(err):
		return errors.Join(ErrConflict, err)
	}
	return err
}

// affected converts a zero RowsAffected into ErrNotFound.
func affected(res sql.Result, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// now returns the timestamp written to created_at/updated_at columns.
// Seconds precision keeps SQLite text timestamps and MySQL DATETIME
// ordering identical.
func now() time.Time { return time.Now().UTC().Truncate(time.Second) }

// insertID executes an INSERT and returns the generated id.
func insertID(ctx context.Context, ex sqlx.ExecerContext, query string, args ...interface{}) (uint64, error) {
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// likePrefix lower-cases s and strips LIKE wildcards for a prefix match.
func likePrefix(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("%", "", "_", "").Replace(s)
	return s + "%"
}
