package repository

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// psql builds queries with $N placeholders, understood by both pgx and modernc sqlite.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// isUniqueViolation works for both SQLite and PostgreSQL
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value")
}
