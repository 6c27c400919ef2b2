// Package all registers every built-in storage backend. Import it for side
// effects:
//
//	import _ "csvload/internal/storage/all"
//
// after which storage.New and storage.EnsureTable accept the kinds
// "postgres", "mysql", "mssql" and "sqlite".
package all

import (
	_ "csvload/internal/storage/mssql"
	_ "csvload/internal/storage/mysql"
	_ "csvload/internal/storage/postgres"
	_ "csvload/internal/storage/sqlite"
)
