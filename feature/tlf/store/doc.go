// Package store persists the reconciliation state in the ledger database.
//
// Tables:
//   - tlf_snapshots: the current inventory snapshot, one row with a version counter
//   - tlf_cursors: the outfeed high-water mark
//   - warehouse_records and purchase_order_lines: the manual warehouse ledger
//   - tlf_outfeed_log: every attributed outfeed event, keyed by source row id
//   - tlf_orphan_panels: units no tracked source could explain
//
// ApplyPlan writes all of a cycle's changes in one transaction. Inserting an
// outfeed row that is already logged aborts the whole transaction, so a plan
// computed by two overlapping cycles is only ever applied once.
package store
