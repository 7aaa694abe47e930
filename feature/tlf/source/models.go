package source

import (
	"time"

	"github.com/shopspring/decimal"
)

// Board is a board definition in the controller database.
type Board struct {
	ID        int64               `gorm:"column:id;primaryKey;type:int"`
	Code      *string             `gorm:"column:code;type:varchar"`
	Length    decimal.NullDecimal `gorm:"column:length;type:decimal"`
	Width     decimal.NullDecimal `gorm:"column:width;type:decimal"`
	Thickness decimal.NullDecimal `gorm:"column:thickness;type:decimal"`
}

func (Board) TableName() string { return "tlf_boards" }

// Slot is one occupied storage position; every row is one physical unit.
type Slot struct {
	ID         int64  `gorm:"column:id;primaryKey;type:int"`
	BoardID    *int64 `gorm:"column:board_id;type:int"`
	SlotNumber *int   `gorm:"column:slot_number;type:int"`
}

func (Slot) TableName() string { return "tlf_slots" }

// Outfeed is an append-only retrieval log row.
type Outfeed struct {
	ID        int64      `gorm:"column:id;primaryKey;type:int"`
	GroupID   *string    `gorm:"column:group_id;type:varchar"`
	BoardCode *string    `gorm:"column:board_code;type:varchar"`
	ExitSlot  *int       `gorm:"column:exit_slot;type:int"`
	Producer  *string    `gorm:"column:producer;type:varchar"`
	JobName   *string    `gorm:"column:job_name;type:varchar"`
	Plan      *string    `gorm:"column:plan;type:varchar"`
	UpdatedAt *time.Time `gorm:"column:updated_at;type:datetime;autoUpdateTime:false"`
}

func (Outfeed) TableName() string { return "tlf_outfeed" }

// Models lists the tables the source reads, for schema checks.
func Models() []any {
	return []any{Board{}, Slot{}, Outfeed{}}
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func num[T int | int64](p *T) T {
	if p == nil {
		return 0
	}
	return *p
}
