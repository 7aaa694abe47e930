// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL, PostgreSQL or SQLite
// connections from the application's configuration. The service holds two
// connections: the local ledger database it owns, and the read-only database of
// the TLF storage controller.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table. The integrity feature compares
// them against the GORM models the sync engine reads and writes.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "tlf_outfeed")
package database
