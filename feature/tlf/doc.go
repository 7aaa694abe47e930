// Package tlf is the HTTP and scheduling surface of the inventory sync.
//
// Routes are mounted under /tlf:
//
//	POST /tlf/sync                 run a cycle now (409 when another cycle holds the lock)
//	GET  /tlf/snapshot             current snapshot
//	GET  /tlf/snapshot/aggregate   snapshot summed per aggregation key
//	GET  /tlf/cursor               outfeed cursor
//	GET  /tlf/outfeed              attribution log (board, source, limit)
//	GET  /tlf/orphans              orphan registry
//	GET  /tlf/orphans/export       orphan registry as xlsx
//	GET  /tlf/warehouse            warehouse ledger
//	POST /tlf/warehouse/recompute  refresh derived ledger quantities
//	GET  /tlf/archive              archived snapshots of a day
//	GET  /tlf/archive/snapshot     one archived snapshot
//
// The Scheduler runs cycles on a fixed period through the same runner.
package tlf
