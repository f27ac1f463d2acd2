package sqlite

import "strings"

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// violatedColumn reports whether the constraint message names the column.
func violatedColumn(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), column)
}
