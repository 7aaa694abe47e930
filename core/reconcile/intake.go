package reconcile

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// IdentityRow is a board definition read from the automated storage.
type IdentityRow struct {
	RawID     int64           `validate:"gt=0"`
	BoardCode string          `validate:"required"`
	Length    decimal.Decimal `validate:"-"`
	Width     decimal.Decimal `validate:"-"`
	Thickness decimal.Decimal `validate:"-"`
}

// SlotRow is one physical unit occupying a storage slot.
type SlotRow struct {
	RawID      int64 `validate:"gt=0"`
	SlotNumber int
}

// OutfeedRow is an unfiltered row of the outfeed log.
type OutfeedRow struct {
	RowID       int64  `validate:"gt=0"`
	GroupID     string `validate:"required"`
	BoardCode   string `validate:"required"`
	ExitSlot    int
	ProducerTag string
	JobName     string
	Plan        string
	UpdatedAt   time.Time
}

// Reasons an outfeed row is dropped before attribution.
const (
	DiscardInvalid   = "invalid"
	DiscardProducer  = "producer"
	DiscardExitPoint = "exit_point"
)

// OutfeedBatch is the accepted part of one outfeed fetch.
type OutfeedBatch struct {
	Events []OutfeedEvent
	// MaxRowID covers every fetched row, accepted or not.
	MaxRowID  int64
	Discarded map[string]int
}

// DiscardedTotal sums all discard reasons.
func (b OutfeedBatch) DiscardedTotal() int {
	n := 0
	for _, c := range b.Discarded {
		n += c
	}
	return n
}

// NormalizeOutfeed validates raw outfeed rows and maps exit slots to destinations.
func NormalizeOutfeed(rows []OutfeedRow, opts Options) OutfeedBatch {
	batch := OutfeedBatch{
		Events:    make([]OutfeedEvent, 0, len(rows)),
		Discarded: make(map[string]int),
	}

	for _, row := range rows {
		if row.RowID > batch.MaxRowID {
			batch.MaxRowID = row.RowID
		}

		if validate.Struct(row) != nil {
			batch.Discarded[DiscardInvalid]++
			continue
		}
		if opts.ProducerTag != "" && row.ProducerTag != opts.ProducerTag {
			batch.Discarded[DiscardProducer]++
			continue
		}
		dest, ok := opts.ExitPoints[row.ExitSlot]
		if !ok {
			batch.Discarded[DiscardExitPoint]++
			continue
		}

		batch.Events = append(batch.Events, OutfeedEvent{
			RowID:       row.RowID,
			GroupID:     row.GroupID,
			BoardCode:   row.BoardCode,
			ExitPoint:   row.ExitSlot,
			Destination: dest,
			JobName:     row.JobName,
			Plan:        row.Plan,
			EventTime:   row.UpdatedAt,
		})
	}

	return batch
}

// validIdentities drops identity rows that fail validation.
func validIdentities(rows []IdentityRow) ([]IdentityRow, int) {
	out := make([]IdentityRow, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		if validate.Struct(row) != nil {
			dropped++
			continue
		}
		out = append(out, row)
	}
	return out, dropped
}
