package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"tlf-sync/core/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrSourceUnavailable wraps any failed read from the automated storage.
	ErrSourceUnavailable = errors.New("inventory source unavailable")
	// ErrCycleRunning is reported when another cycle holds the lock.
	ErrCycleRunning = errors.New("cycle already running")
)

// InventorySource reads the automated storage. Implementations are read-only.
type InventorySource interface {
	FetchIdentities(ctx context.Context) ([]IdentityRow, error)
	FetchOccupancy(ctx context.Context) ([]SlotRow, error)
	// FetchOutfeed returns rows with a row id greater than afterRowID.
	FetchOutfeed(ctx context.Context, afterRowID int64) ([]OutfeedRow, error)
}

// Store persists everything that survives between cycles.
type Store interface {
	// LoadSnapshot returns nil when no snapshot was written yet.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	LoadCursor(ctx context.Context) (Cursor, error)
	LoggedRowIDs(ctx context.Context, rowIDs []int64) (map[int64]struct{}, error)
	WarehouseStock(ctx context.Context, boardCodes []string) (map[string]LedgerEntry, error)
	// AggregationKeys maps board codes to their aggregation key.
	AggregationKeys(ctx context.Context) (map[string]string, error)
	// ApplyPlan writes the plan atomically.
	ApplyPlan(ctx context.Context, plan *Plan, now time.Time) error
}

// Notifier broadcasts cycle outcomes. Delivery is best effort.
type Notifier interface {
	PublishSnapshot(ctx context.Context, snapshot Snapshot)
	PublishAggregate(ctx context.Context, aggregate AggregateSnapshot)
	PublishError(ctx context.Context, syncErr SyncError)
}

// Archiver keeps a copy of every published snapshot.
type Archiver interface {
	ArchiveSnapshot(ctx context.Context, snapshot Snapshot) error
}

// Runner runs one sync cycle.
type Runner interface {
	RunCycle(ctx context.Context) CycleResult
}

// Engine orchestrates sync cycles. It holds no state between cycles.
type Engine struct {
	source   InventorySource
	store    Store
	notifier Notifier
	archiver Archiver
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine creates an engine. A nil notifier disables publication.
func NewEngine(source InventorySource, store Store, notifier Notifier, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		source:   source,
		store:    store,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
		now:      Now,
	}
}

// WithArchiver attaches a snapshot archiver.
func (e *Engine) WithArchiver(a Archiver) *Engine {
	e.archiver = a
	return e
}

// WithClock replaces the time source, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Plan loads state, fetches the source and computes the cycle without writing.
func (e *Engine) Plan(ctx context.Context) (*Plan, error) {
	previous, err := e.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	cursor, err := e.store.LoadCursor(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cursor: %w", err)
	}

	var (
		identities  []IdentityRow
		slots       []SlotRow
		outfeed     []OutfeedRow
		identityErr error
		slotErr     error
		outfeedErr  error
		wg          sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		identities, identityErr = e.source.FetchIdentities(ctx)
	}()
	go func() {
		defer wg.Done()
		slots, slotErr = e.source.FetchOccupancy(ctx)
	}()
	go func() {
		defer wg.Done()
		outfeed, outfeedErr = e.source.FetchOutfeed(ctx, cursor.LastProcessedID)
	}()
	wg.Wait()

	if identityErr != nil {
		return nil, fmt.Errorf("%w: identities: %w", ErrSourceUnavailable, identityErr)
	}
	if slotErr != nil {
		return nil, fmt.Errorf("%w: occupancy: %w", ErrSourceUnavailable, slotErr)
	}
	if outfeedErr != nil {
		return nil, fmt.Errorf("%w: outfeed: %w", ErrSourceUnavailable, outfeedErr)
	}

	snapshot, invalid := BuildSnapshot(identities, slots, e.opts, e.now())
	deltas := DiffSnapshots(previous, &snapshot)
	batch := NormalizeOutfeed(outfeed, e.opts)

	logged, err := e.store.LoggedRowIDs(ctx, RowIDs(batch.Events))
	if err != nil {
		return nil, fmt.Errorf("failed to read outfeed log: %w", err)
	}
	groups, duplicates := GroupSurvivors(batch.Events, logged)

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	ledger, err := e.store.WarehouseStock(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to read warehouse ledger: %w", err)
	}

	plan := &Plan{
		Cursor:   cursor,
		Previous: previous,
		Snapshot: snapshot,
		Deltas:   deltas,
		Boards:   make([]BoardPlan, 0, len(codes)),
		MaxRowID: batch.MaxRowID,
		Summary: PlanSummary{
			InvalidBoards:   invalid,
			EventsFetched:   len(outfeed),
			EventsDiscarded: batch.DiscardedTotal(),
			EventsDuplicate: duplicates,
		},
	}
	for _, code := range codes {
		plan.Boards = append(plan.Boards, Attribute(code, groups[code], deltas[code], ledger[code]))
	}
	plan.summarize()

	return plan, nil
}

// ApplyPlan persists a plan computed by Plan.
func (e *Engine) ApplyPlan(ctx context.Context, plan *Plan) error {
	if err := e.store.ApplyPlan(ctx, plan, e.now()); err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}
	return nil
}

// RunCycle executes one full cycle: plan, apply and publish.
// Errors are reported in the result and on the notifier's error channel.
func (e *Engine) RunCycle(ctx context.Context) CycleResult {
	cycleID := uuid.NewString()
	l := logger.WithCycle(e.logger, cycleID)

	if e.opts.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.CycleTimeout)
		defer cancel()
	}

	start := time.Now()
	plan, err := e.Plan(ctx)
	if err != nil {
		return e.fail(ctx, l, cycleID, err)
	}
	plan.CycleID = cycleID

	l.Debug("Cycle planned",
		zap.Int("boards", plan.Summary.Boards),
		zap.Int("events_fetched", plan.Summary.EventsFetched),
		zap.Int("events_discarded", plan.Summary.EventsDiscarded),
		zap.Int("events_duplicate", plan.Summary.EventsDuplicate),
	)

	if err := e.ApplyPlan(ctx, plan); err != nil {
		return e.fail(ctx, l, cycleID, err)
	}

	published, err := e.publish(ctx, l)
	if err != nil {
		return e.fail(ctx, l, cycleID, err)
	}

	s := plan.Summary
	l.Info("Cycle completed",
		zap.Int("boards", s.Boards),
		zap.Int("events_processed", s.EventsProcessed),
		zap.Int("from_storage", s.FromStorage),
		zap.Int("from_warehouse", s.FromWarehouse),
		zap.Int("unknown", s.Unknown),
		zap.Int64("cursor", plan.NextCursorID()),
		zap.Duration("duration", time.Since(start)),
	)

	fetchedAt := published.FetchedAt
	return CycleResult{
		OK:                     true,
		FetchedAt:              &fetchedAt,
		BoardsCount:            len(published.Boards),
		OutfeedEventsProcessed: s.EventsProcessed,
		CycleID:                cycleID,
	}
}

// publish re-reads the written snapshot and broadcasts it with its aggregate.
func (e *Engine) publish(ctx context.Context, l *zap.Logger) (*Snapshot, error) {
	snapshot, err := e.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reload snapshot: %w", err)
	}
	if snapshot == nil {
		return nil, errors.New("snapshot missing after apply")
	}
	keys, err := e.store.AggregationKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read aggregation keys: %w", err)
	}

	if e.notifier != nil {
		e.notifier.PublishSnapshot(ctx, *snapshot)
		e.notifier.PublishAggregate(ctx, Aggregate(snapshot, keys))
	}

	if e.archiver != nil {
		if err := e.archiver.ArchiveSnapshot(ctx, *snapshot); err != nil {
			l.Warn("Failed to archive snapshot", zap.Error(err))
		}
	}

	return snapshot, nil
}

func (e *Engine) fail(ctx context.Context, l *zap.Logger, cycleID string, err error) CycleResult {
	l.Error("Cycle failed", zap.Error(err))
	if e.notifier != nil {
		// The cycle context may be the reason for the failure.
		e.notifier.PublishError(context.WithoutCancel(ctx), SyncError{Timestamp: e.now(), Message: err.Error()})
	}
	return CycleResult{OK: false, Error: err.Error(), CycleID: cycleID}
}
