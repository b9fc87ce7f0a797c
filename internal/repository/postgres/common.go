package postgres

import (
	"unicode/utf8"

	"doflin-hub/internal/repository"
)

var ErrNotFound = repository.ErrNotFound

type rowScanner interface {
	Scan(dest ...any) error
}

// truncate cuts value to at most max bytes without splitting a rune, so
// the result is always valid UTF-8 for the database.
func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}
