package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultLogLimit caps an outfeed log query without an explicit limit.
const DefaultLogLimit = 100

// LogQuery filters the outfeed log. Empty fields match everything.
type LogQuery struct {
	BoardCode string
	Source    string
	Limit     int
}

// OutfeedLog returns log entries newest first.
func (s *Store) OutfeedLog(ctx context.Context, q LogQuery) ([]OutfeedLogEntry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	db := s.db.WithContext(ctx).Order("row_id DESC").Limit(limit)
	if q.BoardCode != "" {
		db = db.Where("board_code = ?", q.BoardCode)
	}
	if q.Source != "" {
		db = db.Where("source = ?", q.Source)
	}
	var out []OutfeedLogEntry
	if err := db.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to query outfeed log: %w", err)
	}
	return out, nil
}

// Orphan is the decoded form of an OrphanPanel.
type Orphan struct {
	BoardCode   string        `json:"boardCode"`
	TotalQty    int           `json:"totalQty"`
	FirstSeenAt time.Time     `json:"firstSeenAt"`
	LastSeenAt  time.Time     `json:"lastSeenAt"`
	Events      []OrphanEvent `json:"events"`
}

// Orphans lists the orphan registry ordered by board code.
func (s *Store) Orphans(ctx context.Context) ([]Orphan, error) {
	var panels []OrphanPanel
	if err := s.db.WithContext(ctx).Order("board_code").Find(&panels).Error; err != nil {
		return nil, fmt.Errorf("failed to read orphans: %w", err)
	}
	out := make([]Orphan, 0, len(panels))
	for _, p := range panels {
		o := Orphan{
			BoardCode:   p.BoardCode,
			TotalQty:    p.TotalQty,
			FirstSeenAt: p.FirstSeenAt.UTC(),
			LastSeenAt:  p.LastSeenAt.UTC(),
			Events:      []OrphanEvent{},
		}
		if len(p.Events) > 0 {
			if err := json.Unmarshal(p.Events, &o.Events); err != nil {
				return nil, fmt.Errorf("failed to decode orphan events of %s: %w", p.BoardCode, err)
			}
		}
		out = append(out, o)
	}
	return out, nil
}

// Warehouse lists all ledger records ordered by board code.
func (s *Store) Warehouse(ctx context.Context) ([]WarehouseRecord, error) {
	var out []WarehouseRecord
	if err := s.db.WithContext(ctx).Order("board_code").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to read warehouse records: %w", err)
	}
	return out, nil
}

// Migrate creates or updates the tables the store owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	return nil
}
