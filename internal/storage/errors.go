package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrActiveSessionExists is returned when a user already has an active session.
	ErrActiveSessionExists = errors.New("active session already exists")
	// ErrUnsupportedLanguage is returned for language codes outside the supported set.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrInvalidEntry is returned for exercise entries violating table constraints.
	ErrInvalidEntry = errors.New("invalid exercise entry")
)

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
