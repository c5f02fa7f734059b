package database

import (
	"strings"

	"gorm.io/gorm"
)

// LockKey takes a transaction-scoped advisory lock on the joined key parts.
// Writers touching the same (user, target) pair serialize on it, so
// check-then-write toggles stay consistent with their counters.
func LockKey(tx *gorm.DB, parts ...string) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", strings.Join(parts, ":")).Error
}
