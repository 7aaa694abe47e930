package source

import (
	"context"
	"fmt"
	"time"

	"tlf-sync/core/reconcile"

	"gorm.io/gorm"
)

// Source reads the automated storage controller database.
type Source struct {
	db         *gorm.DB
	batchLimit int
}

// New creates a source. A positive batchLimit caps outfeed rows per fetch.
func New(db *gorm.DB, batchLimit int) *Source {
	return &Source{db: db, batchLimit: batchLimit}
}

// FetchIdentities reads every board definition.
func (s *Source) FetchIdentities(ctx context.Context) ([]reconcile.IdentityRow, error) {
	var boards []Board
	if err := s.db.WithContext(ctx).Find(&boards).Error; err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", Board{}.TableName(), err)
	}

	rows := make([]reconcile.IdentityRow, 0, len(boards))
	for _, b := range boards {
		rows = append(rows, reconcile.IdentityRow{
			RawID:     b.ID,
			BoardCode: str(b.Code),
			Length:    b.Length.Decimal,
			Width:     b.Width.Decimal,
			Thickness: b.Thickness.Decimal,
		})
	}
	return rows, nil
}

// FetchOccupancy reads the occupied slots.
func (s *Source) FetchOccupancy(ctx context.Context) ([]reconcile.SlotRow, error) {
	var slots []Slot
	err := s.db.WithContext(ctx).
		Select("id", "board_id", "slot_number").
		Where("board_id IS NOT NULL").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", Slot{}.TableName(), err)
	}

	rows := make([]reconcile.SlotRow, 0, len(slots))
	for _, sl := range slots {
		rows = append(rows, reconcile.SlotRow{
			RawID:      num(sl.BoardID),
			SlotNumber: num(sl.SlotNumber),
		})
	}
	return rows, nil
}

// FetchOutfeed reads outfeed rows after the given row id, oldest first.
func (s *Source) FetchOutfeed(ctx context.Context, afterRowID int64) ([]reconcile.OutfeedRow, error) {
	query := s.db.WithContext(ctx).
		Where("id > ?", afterRowID).
		Order("id asc")
	if s.batchLimit > 0 {
		query = query.Limit(s.batchLimit)
	}

	var outfeed []Outfeed
	if err := query.Find(&outfeed).Error; err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", Outfeed{}.TableName(), err)
	}

	rows := make([]reconcile.OutfeedRow, 0, len(outfeed))
	for _, o := range outfeed {
		var updatedAt time.Time
		if o.UpdatedAt != nil {
			updatedAt = *o.UpdatedAt
		}
		rows = append(rows, reconcile.OutfeedRow{
			RowID:       o.ID,
			GroupID:     str(o.GroupID),
			BoardCode:   str(o.BoardCode),
			ExitSlot:    num(o.ExitSlot),
			ProducerTag: str(o.Producer),
			JobName:     str(o.JobName),
			Plan:        str(o.Plan),
			UpdatedAt:   updatedAt,
		})
	}
	return rows, nil
}
