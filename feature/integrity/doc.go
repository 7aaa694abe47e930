// Package integrity provides health checks for the sync's infrastructure.
//
// # Checks Provided
//
//   - Source: Validates that the storage controller tables have the columns and types the sync reads.
//   - Ledger: Validates the tables the sync owns (snapshot, cursor, warehouse ledger, outfeed log, orphans).
//   - Archive: Checks that the snapshot archive bucket exists and counts archived snapshots.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/source : Runs source schema check.
//   - GET /integrity/ledger : Runs ledger schema check (supports ?fix=true to migrate).
//   - GET /integrity/archive : Runs archive check (supports ?fix=true to create the bucket).
package integrity
