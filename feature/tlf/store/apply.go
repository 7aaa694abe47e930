package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tlf-sync/core/reconcile"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrAlreadyLogged aborts an apply whose outfeed rows were logged meanwhile by
// another writer. Nothing of the plan is kept.
var ErrAlreadyLogged = errors.New("outfeed rows already logged by a concurrent cycle")

const logBatchSize = 200

// ApplyPlan writes a cycle in a single transaction: snapshot, tlf quantities,
// warehouse debits, outfeed log, orphans, derived fields and cursor.
func (s *Store) ApplyPlan(ctx context.Context, plan *reconcile.Plan, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := writeSnapshot(tx, plan.Snapshot, now); err != nil {
			return err
		}
		if err := syncTLFQty(tx, plan.Snapshot.Quantities(), now); err != nil {
			return err
		}
		if err := applyWarehouseDeltas(tx, plan.Boards, now); err != nil {
			return err
		}
		if err := appendOutfeedLog(tx, plan, now); err != nil {
			return err
		}
		if err := recordOrphans(tx, plan.Boards, now); err != nil {
			return err
		}
		if _, err := recompute(tx, now); err != nil {
			return err
		}
		return advanceCursor(tx, plan.NextCursorID(), now)
	})
}

func writeSnapshot(tx *gorm.DB, snap reconcile.Snapshot, now time.Time) error {
	if snap.Boards == nil {
		snap.Boards = []reconcile.BoardStock{}
	}
	boards, err := json.Marshal(snap.Boards)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	var rec SnapshotRecord
	err = tx.Select("name").Where("name = ?", SnapshotName).Take(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = SnapshotRecord{
			Name:      SnapshotName,
			Version:   1,
			FetchedAt: snap.FetchedAt,
			Boards:    boards,
			UpdatedAt: now,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to create snapshot: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	err = tx.Model(&SnapshotRecord{}).Where("name = ?", SnapshotName).Updates(map[string]any{
		"version":    gorm.Expr("version + 1"),
		"fetched_at": snap.FetchedAt,
		"boards":     boards,
		"updated_at": now,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to overwrite snapshot: %w", err)
	}
	return nil
}

// syncTLFQty sets tlf_qty on every ledger record; boards missing from the
// snapshot drop to zero.
func syncTLFQty(tx *gorm.DB, qty map[string]int, now time.Time) error {
	var recs []WarehouseRecord
	if err := tx.Select("id", "board_code", "tlf_qty").Find(&recs).Error; err != nil {
		return fmt.Errorf("failed to read warehouse records: %w", err)
	}
	for _, r := range recs {
		want := qty[r.BoardCode]
		if r.TLFQty == want {
			continue
		}
		err := tx.Model(&WarehouseRecord{}).Where("id = ?", r.ID).Updates(map[string]any{
			"tlf_qty":    want,
			"updated_at": now,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to set tlf_qty of %s: %w", r.BoardCode, err)
		}
	}
	return nil
}

// applyWarehouseDeltas adds each board's delta to the stored quantity. The
// result is clamped at zero in the statement itself.
func applyWarehouseDeltas(tx *gorm.DB, boards []reconcile.BoardPlan, now time.Time) error {
	for _, b := range boards {
		if !b.HasWarehouseRecord || b.WarehouseDelta == 0 {
			continue
		}
		d := b.WarehouseDelta
		err := tx.Model(&WarehouseRecord{}).Where("board_code = ?", b.BoardCode).Updates(map[string]any{
			"warehouse_qty": gorm.Expr("CASE WHEN warehouse_qty + ? < 0 THEN 0 ELSE warehouse_qty + ? END", d, d),
			"updated_at":    now,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to debit warehouse for %s: %w", b.BoardCode, err)
		}
	}
	return nil
}

func appendOutfeedLog(tx *gorm.DB, plan *reconcile.Plan, now time.Time) error {
	attrs := plan.Attributions()
	if len(attrs) == 0 {
		return nil
	}
	entries := make([]OutfeedLogEntry, 0, len(attrs))
	for _, a := range attrs {
		e := a.Event
		entries = append(entries, OutfeedLogEntry{
			RowID:       e.RowID,
			GroupID:     e.GroupID,
			BoardCode:   e.BoardCode,
			ExitPoint:   e.ExitPoint,
			Destination: string(e.Destination),
			JobName:     e.JobName,
			Plan:        e.Plan,
			EventTime:   e.EventTime,
			Source:      string(a.Origin),
			Quantity:    1,
			Orphaned:    a.Orphaned,
			ProcessedAt: now,
			CycleID:     plan.CycleID,
		})
	}

	res := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(entries, logBatchSize)
	if res.Error != nil {
		return fmt.Errorf("failed to append outfeed log: %w", res.Error)
	}
	if res.RowsAffected != int64(len(entries)) {
		return fmt.Errorf("%w: %d of %d inserted", ErrAlreadyLogged, res.RowsAffected, len(entries))
	}
	return nil
}

func recordOrphans(tx *gorm.DB, boards []reconcile.BoardPlan, now time.Time) error {
	for _, b := range boards {
		orphans := b.Orphans()
		if len(orphans) == 0 {
			continue
		}
		events := make([]OrphanEvent, 0, len(orphans))
		for _, a := range orphans {
			events = append(events, OrphanEvent{
				RowID:       a.Event.RowID,
				GroupID:     a.Event.GroupID,
				JobName:     a.Event.JobName,
				Plan:        a.Event.Plan,
				Destination: string(a.Event.Destination),
				EventTime:   a.Event.EventTime,
			})
		}
		if err := upsertOrphan(tx, b.BoardCode, events, now); err != nil {
			return err
		}
	}
	return nil
}

func upsertOrphan(tx *gorm.DB, boardCode string, events []OrphanEvent, now time.Time) error {
	var panel OrphanPanel
	err := tx.Where("board_code = ?", boardCode).Take(&panel).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		panel = OrphanPanel{BoardCode: boardCode, FirstSeenAt: now}
	case err != nil:
		return fmt.Errorf("failed to read orphan %s: %w", boardCode, err)
	}

	var existing []OrphanEvent
	if len(panel.Events) > 0 {
		if err := json.Unmarshal(panel.Events, &existing); err != nil {
			return fmt.Errorf("failed to decode orphan events of %s: %w", boardCode, err)
		}
	}
	merged, err := json.Marshal(append(existing, events...))
	if err != nil {
		return fmt.Errorf("failed to encode orphan events of %s: %w", boardCode, err)
	}

	panel.TotalQty += len(events)
	panel.LastSeenAt = now
	panel.Events = merged
	if err := tx.Save(&panel).Error; err != nil {
		return fmt.Errorf("failed to save orphan %s: %w", boardCode, err)
	}
	return nil
}

func advanceCursor(tx *gorm.DB, next int64, now time.Time) error {
	rec, err := loadCursor(tx)
	if err != nil {
		return err
	}
	err = tx.Model(&CursorRecord{}).Where("name = ?", CursorName).Updates(map[string]any{
		"last_processed_id": max(rec.LastProcessedID, next),
		"last_processed_at": now,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to advance cursor: %w", err)
	}
	return nil
}
