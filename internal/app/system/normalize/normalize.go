// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email normalizes an email address for use as a store key: trimmed and
// lower-cased. Every email comparison in this app (account lookups, the
// unique index on accounts.email, submission storage) goes through this,
// so "Jane@Example.com" and "jane@example.com" resolve to the same account.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses internal runs of
// whitespace to single spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Status lower-cases and trims a status value before enum checks.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
