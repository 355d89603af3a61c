// Package database handles database connections and schema inspection.
//
// It wraps GORM to open either MySQL (the production store) or SQLite (local
// development and tests) from the application's configuration.
//
// # Connect
//
// Connect picks the dialector from Config.Driver, applies connection pool
// settings and pings the database before returning. SQLite connections are
// limited to one open connection so concurrent writers queue instead of
// failing with a lock error.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table on either dialect. The migrate
// command uses it to report the schema it produced.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "items")
package database
