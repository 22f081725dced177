package postgres

import (
	"database/sql"
	"errors"

	"github.com/afterus/afterus-backend/internal/database"
	"github.com/afterus/afterus-backend/internal/repository"
)

// mapError translates driver errors into repository sentinels
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return repository.ErrNotFound
	case database.IsUniqueViolation(err):
		return repository.ErrDuplicate
	default:
		return err
	}
}

// expectRow reports ErrNotFound when a write touched nothing
func expectRow(res sql.Result, err error) error {
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
