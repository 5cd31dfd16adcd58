// internals/helpers/query/dialect.go
package query

import "gorm.io/gorm"

// The overdue rules need whole-day date arithmetic, which every engine spells
// differently. Report shapes build their raw suffixes through these helpers
// instead of hard-coding one engine's syntax; tests run the same rules on
// SQLite that production runs on Postgres or MySQL.

// DaysSince renders "whole days between col and today" for the connected
// engine.
func DaysSince(db *gorm.DB, col string) string {
	switch db.Dialector.Name() {
	case "sqlite":
		return "CAST(julianday('now') - julianday(" + col + ") AS INTEGER)"
	case "mysql":
		return "DATEDIFF(CURRENT_DATE, " + col + ")"
	default: // postgres
		return "(CURRENT_DATE - " + col + "::date)"
	}
}

// DaysBetween renders "whole days from a to b" (b - a).
func DaysBetween(db *gorm.DB, a, b string) string {
	switch db.Dialector.Name() {
	case "sqlite":
		return "CAST(julianday(" + b + ") - julianday(" + a + ") AS INTEGER)"
	case "mysql":
		return "DATEDIFF(" + b + ", " + a + ")"
	default:
		return "(" + b + "::date - " + a + "::date)"
	}
}

// Now renders the current timestamp expression, used by the override-reminder
// sub-clause.
func Now(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "sqlite":
		return "datetime('now')"
	default:
		return "CURRENT_TIMESTAMP"
	}
}
