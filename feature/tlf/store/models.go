package store

import (
	"time"

	"gorm.io/datatypes"
)

// Well-known keys of the singleton rows.
const (
	SnapshotName = "current"
	CursorName   = "outfeed"
)

// OrderStatusOpen marks a purchase order line not yet received.
const OrderStatusOpen = "On Order"

// SnapshotRecord holds the single current inventory snapshot.
type SnapshotRecord struct {
	Name      string         `gorm:"column:name;primaryKey;type:varchar(32)"`
	Version   int64          `gorm:"column:version;type:bigint;not null"`
	FetchedAt time.Time      `gorm:"column:fetched_at"`
	Boards    datatypes.JSON `gorm:"column:boards;type:json"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (SnapshotRecord) TableName() string { return "tlf_snapshots" }

// CursorRecord holds the outfeed high-water mark.
type CursorRecord struct {
	Name            string     `gorm:"column:name;primaryKey;type:varchar(32)"`
	LastProcessedID int64      `gorm:"column:last_processed_id;type:bigint;not null"`
	LastProcessedAt *time.Time `gorm:"column:last_processed_at"`
}

func (CursorRecord) TableName() string { return "tlf_cursors" }

// WarehouseRecord is one manual ledger line. The last three quantities are
// derived from the others and rewritten by every recompute.
type WarehouseRecord struct {
	ID             uint      `gorm:"column:id;primaryKey" json:"id"`
	BoardCode      string    `gorm:"column:board_code;type:varchar(64);uniqueIndex;not null" json:"boardCode"`
	AggregationKey string    `gorm:"column:aggregation_key;type:varchar(64);index" json:"aggregationKey"`
	WarehouseQty   int       `gorm:"column:warehouse_qty;type:int;not null;default:0" json:"warehouseQty"`
	TLFQty         int       `gorm:"column:tlf_qty;type:int;not null;default:0" json:"tlfQty"`
	ReservedQty    int       `gorm:"column:reserved_qty;type:int;not null;default:0" json:"reservedQty"`
	OnOrderQty     int       `gorm:"column:on_order_qty;type:int;not null;default:0" json:"onOrderQty"`
	OnHandQty      int       `gorm:"column:on_hand_qty;type:int;not null;default:0" json:"onHandQty"`
	AvailableQty   int       `gorm:"column:available_qty;type:int;not null;default:0" json:"availableQty"`
	ProjectedQty   int       `gorm:"column:projected_qty;type:int;not null;default:0" json:"projectedQty"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (WarehouseRecord) TableName() string { return "warehouse_records" }

// PurchaseOrderLine is maintained by the order workflow; the sync only reads it.
type PurchaseOrderLine struct {
	ID           uint   `gorm:"column:id;primaryKey" json:"id"`
	MaterialCode string `gorm:"column:material_code;type:varchar(64);index" json:"materialCode"`
	OrderedQty   int    `gorm:"column:ordered_qty;type:int;not null" json:"orderedQty"`
	Status       string `gorm:"column:status;type:varchar(32);index" json:"status"`
}

func (PurchaseOrderLine) TableName() string { return "purchase_order_lines" }

// OutfeedLogEntry is the append-only audit of attributed outfeed events.
type OutfeedLogEntry struct {
	RowID       int64     `gorm:"column:row_id;primaryKey;autoIncrement:false;type:bigint" json:"rowId"`
	GroupID     string    `gorm:"column:group_id;type:varchar(64)" json:"groupId"`
	BoardCode   string    `gorm:"column:board_code;type:varchar(64);index" json:"boardCode"`
	ExitPoint   int       `gorm:"column:exit_point;type:int" json:"exitPoint"`
	Destination string    `gorm:"column:destination;type:varchar(16)" json:"destination"`
	JobName     string    `gorm:"column:job_name;type:varchar(128)" json:"jobName"`
	Plan        string    `gorm:"column:plan;type:varchar(128)" json:"plan"`
	EventTime   time.Time `gorm:"column:event_time" json:"eventTime"`
	Source      string    `gorm:"column:source;type:varchar(16);index" json:"source"`
	Quantity    int       `gorm:"column:quantity;type:int;not null" json:"quantity"`
	Orphaned    bool      `gorm:"column:orphaned;type:boolean" json:"orphaned"`
	ProcessedAt time.Time `gorm:"column:processed_at" json:"processedAt"`
	CycleID     string    `gorm:"column:cycle_id;type:varchar(36)" json:"cycleId"`
}

func (OutfeedLogEntry) TableName() string { return "tlf_outfeed_log" }

// OrphanPanel accumulates unattributable units of one board.
type OrphanPanel struct {
	BoardCode   string         `gorm:"column:board_code;primaryKey;type:varchar(64)"`
	TotalQty    int            `gorm:"column:total_qty;type:int;not null"`
	FirstSeenAt time.Time      `gorm:"column:first_seen_at"`
	LastSeenAt  time.Time      `gorm:"column:last_seen_at"`
	Events      datatypes.JSON `gorm:"column:events;type:json"`
}

func (OrphanPanel) TableName() string { return "tlf_orphan_panels" }

// OrphanEvent is one entry of OrphanPanel.Events.
type OrphanEvent struct {
	RowID       int64     `json:"rowId"`
	GroupID     string    `json:"groupId"`
	JobName     string    `json:"jobName"`
	Plan        string    `json:"plan"`
	Destination string    `json:"destination"`
	EventTime   time.Time `json:"eventTime"`
}

// Models lists every table the store owns, in migration order.
func Models() []any {
	return []any{
		&SnapshotRecord{},
		&CursorRecord{},
		&WarehouseRecord{},
		&PurchaseOrderLine{},
		&OutfeedLogEntry{},
		&OrphanPanel{},
	}
}
