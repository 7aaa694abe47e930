package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origin is the physical source an outfeed unit is attributed to.
type Origin string

const (
	// OriginStorage means the unit left the automated storage directly.
	OriginStorage Origin = "TLF_STORAGE"
	// OriginWarehouse means the unit was drawn from the manual warehouse.
	OriginWarehouse Origin = "WAREHOUSE"
	// OriginUnknown means neither tracked source can explain the unit.
	OriginUnknown Origin = "UNKNOWN"
)

// Destination is the downstream point an outfeed event delivered to.
type Destination string

const (
	DestinationSaw      Destination = "SAW"
	DestinationCNC      Destination = "CNC"
	DestinationOutfeed1 Destination = "OUTFEED_1"
	DestinationOutfeed2 Destination = "OUTFEED_2"
)

// ParseDestination maps a configured name onto a known destination.
func ParseDestination(name string) (Destination, bool) {
	switch d := Destination(name); d {
	case DestinationSaw, DestinationCNC, DestinationOutfeed1, DestinationOutfeed2:
		return d, true
	}
	return "", false
}

// BoardStock is one row of an inventory snapshot.
type BoardStock struct {
	BoardCode string          `json:"boardCode"`
	RawID     int64           `json:"rawId"`
	Length    decimal.Decimal `json:"length"`
	Width     decimal.Decimal `json:"width"`
	Thickness decimal.Decimal `json:"thickness"`
	TotalQty  int             `json:"totalQty"`
}

// Snapshot is the full state of the automated storage at FetchedAt.
// Boards are ordered by board code, then raw id.
type Snapshot struct {
	FetchedAt time.Time    `json:"fetchedAt"`
	Boards    []BoardStock `json:"boards"`
}

// Quantities sums TotalQty per board code.
func (s *Snapshot) Quantities() map[string]int {
	out := make(map[string]int)
	if s == nil {
		return out
	}
	for _, b := range s.Boards {
		out[b.BoardCode] += b.TotalQty
	}
	return out
}

// AggregateSnapshot is the snapshot summed per aggregation key.
type AggregateSnapshot struct {
	FetchedAt     time.Time      `json:"fetchedAt"`
	QuantityByKey map[string]int `json:"quantityByKey"`
}

// SyncError is published when a cycle fails.
type SyncError struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Cursor is the high-water mark of processed outfeed rows.
type Cursor struct {
	LastProcessedID int64      `json:"lastProcessedId"`
	LastProcessedAt *time.Time `json:"lastProcessedAt"`
}

// OutfeedEvent is one accepted unit removal from the automated storage.
type OutfeedEvent struct {
	RowID       int64       `json:"rowId"`
	GroupID     string      `json:"groupId"`
	BoardCode   string      `json:"boardCode"`
	ExitPoint   int         `json:"exitPoint"`
	Destination Destination `json:"destination"`
	JobName     string      `json:"jobName"`
	Plan        string      `json:"plan"`
	EventTime   time.Time   `json:"eventTime"`
}

// Attribution is the outcome for a single event.
type Attribution struct {
	Event    OutfeedEvent `json:"event"`
	Origin   Origin       `json:"origin"`
	Orphaned bool         `json:"orphaned"`
}

// LedgerEntry is the warehouse view the attribution needs for one board.
type LedgerEntry struct {
	Exists       bool
	WarehouseQty int
}

// CycleResult is what a sync cycle reports to its trigger.
type CycleResult struct {
	OK                     bool       `json:"ok"`
	FetchedAt              *time.Time `json:"fetchedAt,omitempty"`
	BoardsCount            int        `json:"boardsCount"`
	OutfeedEventsProcessed int        `json:"outfeedEventsProcessed"`
	Error                  string     `json:"error,omitempty"`
	CycleID                string     `json:"cycleId,omitempty"`
	Skipped                bool       `json:"skipped,omitempty"`
}
