package sqlite

import (
	"errors"
	"strings"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func isForeignKeyViolation(err error) bool {
	return hasConstraintCode(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	return hasConstraintCode(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE constraint failed")
}

// hasConstraintCode matches the extended result code, falling back to the
// message for drivers built without extended codes.
func hasConstraintCode(err error, code int, message string) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlitedriver.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == code {
		return true
	}
	return strings.Contains(err.Error(), message)
}
