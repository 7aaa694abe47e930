package store

import (
	"context"
	"fmt"
	"time"

	"tlf-sync/core/reconcile"

	"gorm.io/gorm"
)

// Recompute rewrites on-order and derived quantities of every warehouse
// record. A negative warehouse quantity written outside the cycle is reset to
// zero. It returns the number of records that changed.
func (s *Store) Recompute(ctx context.Context, now time.Time) (int, error) {
	var changed int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		changed, err = recompute(tx, now)
		return err
	})
	return changed, err
}

func recompute(tx *gorm.DB, now time.Time) (int, error) {
	var recs []WarehouseRecord
	if err := tx.Order("board_code").Find(&recs).Error; err != nil {
		return 0, fmt.Errorf("failed to read warehouse records: %w", err)
	}

	var lines []PurchaseOrderLine
	if err := tx.Where("status = ?", OrderStatusOpen).Find(&lines).Error; err != nil {
		return 0, fmt.Errorf("failed to read purchase order lines: %w", err)
	}

	inputs := make([]reconcile.LedgerRecord, len(recs))
	for i, r := range recs {
		inputs[i] = r.ledger()
	}
	orders := make([]reconcile.OpenOrder, len(lines))
	for i, l := range lines {
		orders[i] = reconcile.OpenOrder{MaterialCode: l.MaterialCode, OrderedQty: l.OrderedQty}
	}
	onOrder := reconcile.OnOrderByBoard(inputs, orders)

	changed := 0
	for i, r := range recs {
		in := inputs[i]
		in.WarehouseQty = max(in.WarehouseQty, 0)
		in.OnOrderQty = onOrder[r.BoardCode]
		d := in.Derive()
		if r.WarehouseQty == in.WarehouseQty && r.OnOrderQty == in.OnOrderQty && r.OnHandQty == d.OnHandQty &&
			r.AvailableQty == d.AvailableQty && r.ProjectedQty == d.ProjectedQty {
			continue
		}
		err := tx.Model(&WarehouseRecord{}).Where("id = ?", r.ID).Updates(map[string]any{
			"warehouse_qty": in.WarehouseQty,
			"on_order_qty":  in.OnOrderQty,
			"on_hand_qty":   d.OnHandQty,
			"available_qty": d.AvailableQty,
			"projected_qty": d.ProjectedQty,
			"updated_at":    now,
		}).Error
		if err != nil {
			return changed, fmt.Errorf("failed to recompute %s: %w", r.BoardCode, err)
		}
		changed++
	}
	return changed, nil
}

func (r WarehouseRecord) ledger() reconcile.LedgerRecord {
	return reconcile.LedgerRecord{
		BoardCode:      r.BoardCode,
		AggregationKey: r.AggregationKey,
		WarehouseQty:   r.WarehouseQty,
		TLFQty:         r.TLFQty,
		ReservedQty:    r.ReservedQty,
		OnOrderQty:     r.OnOrderQty,
	}
}
