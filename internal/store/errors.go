package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrDuplicateKey is returned when a uniquely keyed row already exists.
	ErrDuplicateKey = errors.New("already exists")
	// ErrInvalid is returned when a row fails validation before it is written.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound is returned when a keyed row does not exist.
	ErrNotFound = errors.New("not found")
)

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
