package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound     = errors.New("post not found")
	ErrUserNotFound = errors.New("user not found")
	ErrSlugTaken    = errors.New("slug already taken")
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrCode(err) == "23505"
}

func isForeignKeyViolation(err error) bool {
	return pgErrCode(err) == "23503"
}

// Postgres rejects malformed UUID text with 22P02; callers treat a bad
// id the same as a missing row.
func isInvalidID(err error) bool {
	return pgErrCode(err) == "22P02"
}
