// Package sqlite implements a SQLite-backed storage.Repository on top of the
// pure-Go modernc.org/sqlite driver.
package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:orders.db?cache=shared"
	//   ":memory:"
	DSN string

	// Table is the target table. "main.orders" is accepted; each segment is
	// quoted separately.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}
