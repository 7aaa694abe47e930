package tlf

import (
	"context"
	"errors"
	"io"
	"time"

	"tlf-sync/core/reconcile"
	"tlf-sync/feature/tlf/archive"
	"tlf-sync/feature/tlf/store"

	"go.uber.org/zap"
)

var (
	// ErrNoSnapshot is returned before the first successful cycle.
	ErrNoSnapshot = errors.New("no snapshot yet")
	// ErrArchiveDisabled is returned by archive reads when no archive is configured.
	ErrArchiveDisabled = errors.New("snapshot archive disabled")
)

// Service exposes sync cycles and the persisted reconciliation state.
type Service struct {
	runner  reconcile.Runner
	store   *store.Store
	archive *archive.Archive
	logger  *zap.Logger
}

// NewService creates a new service. archive may be nil.
func NewService(runner reconcile.Runner, st *store.Store, arc *archive.Archive, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{runner: runner, store: st, archive: arc, logger: logger}
}

// Sync runs a cycle now.
func (s *Service) Sync(ctx context.Context) reconcile.CycleResult {
	return s.runner.RunCycle(ctx)
}

// Snapshot returns the current inventory snapshot.
func (s *Service) Snapshot(ctx context.Context) (*reconcile.Snapshot, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Aggregate returns the current snapshot summed per aggregation key.
func (s *Service) Aggregate(ctx context.Context) (reconcile.AggregateSnapshot, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return reconcile.AggregateSnapshot{}, err
	}
	keys, err := s.store.AggregationKeys(ctx)
	if err != nil {
		return reconcile.AggregateSnapshot{}, err
	}
	return reconcile.Aggregate(snap, keys), nil
}

// Cursor returns the outfeed cursor.
func (s *Service) Cursor(ctx context.Context) (reconcile.Cursor, error) {
	return s.store.LoadCursor(ctx)
}

// OutfeedLog queries the attribution log.
func (s *Service) OutfeedLog(ctx context.Context, q store.LogQuery) ([]store.OutfeedLogEntry, error) {
	return s.store.OutfeedLog(ctx, q)
}

// Orphans lists the orphan registry.
func (s *Service) Orphans(ctx context.Context) ([]store.Orphan, error) {
	return s.store.Orphans(ctx)
}

// ExportOrphans writes the orphan registry as an xlsx workbook.
func (s *Service) ExportOrphans(ctx context.Context, w io.Writer) error {
	orphans, err := s.store.Orphans(ctx)
	if err != nil {
		return err
	}
	return WriteOrphansXLSX(w, orphans)
}

// Warehouse lists the warehouse ledger.
func (s *Service) Warehouse(ctx context.Context) ([]store.WarehouseRecord, error) {
	return s.store.Warehouse(ctx)
}

// Recompute refreshes the derived ledger quantities outside a cycle.
func (s *Service) Recompute(ctx context.Context) (int, error) {
	changed, err := s.store.Recompute(ctx, reconcile.Now())
	if err != nil {
		return 0, err
	}
	s.logger.Info("Warehouse recomputed", zap.Int("changed", changed))
	return changed, nil
}

// ArchivedSnapshots lists the snapshots archived on a UTC day.
func (s *Service) ArchivedSnapshots(ctx context.Context, day time.Time) ([]archive.Entry, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.List(ctx, day)
}

// ArchivedSnapshot loads one archived snapshot.
func (s *Service) ArchivedSnapshot(ctx context.Context, key string) (*reconcile.Snapshot, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Load(ctx, key)
}
