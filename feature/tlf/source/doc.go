// Package source reads the automated storage controller database.
//
// The controller owns three tables: board definitions (tlf_boards), one row
// per occupied slot (tlf_slots) and the append-only retrieval log
// (tlf_outfeed). Columns are nullable on the controller side, so the gorm
// models use pointer fields; conversion to the engine's intake rows maps
// NULL to the zero value and leaves validation to the engine.
package source
