package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tlf-sync/core/reconcile"

	"gorm.io/gorm"
)

// rowIDChunk bounds the IN list of a single lookup.
const rowIDChunk = 500

// Store persists snapshot, cursor, ledger, outfeed log and orphan registry in
// one database. It implements reconcile.Store.
type Store struct {
	db *gorm.DB
}

// New creates a store over an open connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// LoadSnapshot returns the current snapshot, or nil before the first cycle.
func (s *Store) LoadSnapshot(ctx context.Context) (*reconcile.Snapshot, error) {
	var rec SnapshotRecord
	err := s.db.WithContext(ctx).Where("name = ?", SnapshotName).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return decodeSnapshot(rec)
}

// SnapshotVersion returns how many times the snapshot was overwritten.
func (s *Store) SnapshotVersion(ctx context.Context) (int64, error) {
	var rec SnapshotRecord
	err := s.db.WithContext(ctx).Select("name", "version").Where("name = ?", SnapshotName).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot version: %w", err)
	}
	return rec.Version, nil
}

func decodeSnapshot(rec SnapshotRecord) (*reconcile.Snapshot, error) {
	snap := &reconcile.Snapshot{FetchedAt: rec.FetchedAt.UTC()}
	if len(rec.Boards) > 0 {
		if err := json.Unmarshal(rec.Boards, &snap.Boards); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot boards: %w", err)
		}
	}
	return snap, nil
}

// LoadCursor returns the outfeed cursor. Before the first applied cycle it
// reports zero without writing anything.
func (s *Store) LoadCursor(ctx context.Context) (reconcile.Cursor, error) {
	var rec CursorRecord
	err := s.db.WithContext(ctx).Where("name = ?", CursorName).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return reconcile.Cursor{}, nil
	}
	if err != nil {
		return reconcile.Cursor{}, fmt.Errorf("failed to read cursor: %w", err)
	}
	return rec.toCursor(), nil
}

// loadCursor returns the cursor row, creating it at zero.
func loadCursor(db *gorm.DB) (CursorRecord, error) {
	var rec CursorRecord
	if err := db.Where(CursorRecord{Name: CursorName}).FirstOrCreate(&rec).Error; err != nil {
		return rec, fmt.Errorf("failed to read cursor: %w", err)
	}
	return rec, nil
}

func (r CursorRecord) toCursor() reconcile.Cursor {
	c := reconcile.Cursor{LastProcessedID: r.LastProcessedID}
	if r.LastProcessedAt != nil {
		at := r.LastProcessedAt.UTC()
		c.LastProcessedAt = &at
	}
	return c
}

// LoggedRowIDs returns which of the given row ids are already in the outfeed log.
func (s *Store) LoggedRowIDs(ctx context.Context, rowIDs []int64) (map[int64]struct{}, error) {
	out := make(map[int64]struct{})
	for start := 0; start < len(rowIDs); start += rowIDChunk {
		end := min(start+rowIDChunk, len(rowIDs))
		var found []int64
		err := s.db.WithContext(ctx).
			Model(&OutfeedLogEntry{}).
			Where("row_id IN ?", rowIDs[start:end]).
			Pluck("row_id", &found).Error
		if err != nil {
			return nil, fmt.Errorf("failed to read outfeed log: %w", err)
		}
		for _, id := range found {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

// WarehouseStock returns the ledger view of the given boards. Boards without a
// record are absent from the result.
func (s *Store) WarehouseStock(ctx context.Context, boardCodes []string) (map[string]reconcile.LedgerEntry, error) {
	out := make(map[string]reconcile.LedgerEntry, len(boardCodes))
	if len(boardCodes) == 0 {
		return out, nil
	}
	var recs []WarehouseRecord
	err := s.db.WithContext(ctx).
		Select("board_code", "warehouse_qty").
		Where("board_code IN ?", boardCodes).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read warehouse records: %w", err)
	}
	for _, r := range recs {
		out[r.BoardCode] = reconcile.LedgerEntry{Exists: true, WarehouseQty: r.WarehouseQty}
	}
	return out, nil
}

// AggregationKeys maps board codes to their non-empty aggregation key.
func (s *Store) AggregationKeys(ctx context.Context) (map[string]string, error) {
	var recs []WarehouseRecord
	err := s.db.WithContext(ctx).
		Select("board_code", "aggregation_key").
		Where("aggregation_key <> ?", "").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read aggregation keys: %w", err)
	}
	out := make(map[string]string, len(recs))
	for _, r := range recs {
		out[r.BoardCode] = r.AggregationKey
	}
	return out, nil
}
