// Package reconcile implements the TLF sync cycle: it reconciles the automated
// board storage against the manual warehouse ledger and attributes every unit
// that left storage to TLF_STORAGE, WAREHOUSE or UNKNOWN.
//
// # Pipeline
//
// A cycle is a sequence of stages over plain values:
//
//  1. Load the previous snapshot and the outfeed cursor from the Store.
//  2. Fetch identities, slot occupancy and new outfeed rows from the
//     InventorySource concurrently (3 goroutines).
//  3. BuildSnapshot joins identities with per-board unit counts, skipping the
//     machine buffer slots.
//  4. DiffSnapshots yields the quantity change of every board.
//  5. NormalizeOutfeed drops malformed or foreign rows, GroupSurvivors drops
//     rows already in the outfeed log.
//  6. Attribute runs per board with at least one surviving event.
//  7. Store.ApplyPlan writes snapshot, ledger, log, orphans and cursor in one
//     transaction.
//  8. The written snapshot is re-read and published with its aggregate.
//
// Engine.Plan covers stages 1 to 6 and writes nothing, which is what the
// dry-run command prints. Engine.RunCycle runs the whole cycle.
//
// # Concurrency
//
// Wrap the engine with a Guard so overlapping triggers share one cycle and a
// cycle held by another replica is skipped:
//
//	guard := reconcile.NewGuard(redislock.New(rdb), cfg.LockKey, cfg.LockTTL(), logger)
//	runner := guard.Wrap(reconcile.NewEngine(src, store, notifier, opts, logger))
//	result := runner.RunCycle(ctx)
package reconcile
