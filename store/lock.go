package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate adds a row-level lock on dialects that support it. Concurrent
// stock decrements and payment mutations rely on this serialization in
// postgres; sqlite rejects the FOR UPDATE syntax but is single-writer, so
// the clause is skipped there.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
