package reconcile

import (
	"sort"
	"time"

	"tlf-sync/core/utils"
)

// BuildSnapshot joins board identities with the unit count per board.
// Units in buffer slots are not counted and boards without units are left out.
// It also returns the number of identity rows that failed validation.
func BuildSnapshot(identities []IdentityRow, slots []SlotRow, opts Options, fetchedAt time.Time) (Snapshot, int) {
	counts := make(map[int64]int)
	for _, slot := range slots {
		if slot.RawID <= 0 {
			continue
		}
		if _, buffer := opts.BufferSlots[slot.SlotNumber]; buffer {
			continue
		}
		counts[slot.RawID]++
	}

	valid, dropped := validIdentities(identities)

	boards := make([]BoardStock, 0, len(valid))
	for _, id := range valid {
		qty := counts[id.RawID]
		if qty == 0 {
			continue
		}
		boards = append(boards, BoardStock{
			BoardCode: id.BoardCode,
			RawID:     id.RawID,
			Length:    utils.ScaleDimension(id.Length, opts.DimensionDivisor),
			Width:     utils.ScaleDimension(id.Width, opts.DimensionDivisor),
			Thickness: utils.ScaleDimension(id.Thickness, opts.DimensionDivisor),
			TotalQty:  qty,
		})
	}

	sort.Slice(boards, func(i, j int) bool {
		if boards[i].BoardCode != boards[j].BoardCode {
			return boards[i].BoardCode < boards[j].BoardCode
		}
		return boards[i].RawID < boards[j].RawID
	})

	return Snapshot{FetchedAt: fetchedAt, Boards: boards}, dropped
}

// QuantityDelta is the change of one board between two snapshots.
type QuantityDelta struct {
	OldQty int
	NewQty int
}

// Delta is NewQty - OldQty.
func (d QuantityDelta) Delta() int {
	return d.NewQty - d.OldQty
}

// DiffSnapshots compares per-board quantities for every board in either snapshot.
// A nil previous snapshot counts as empty.
func DiffSnapshots(previous *Snapshot, next *Snapshot) map[string]QuantityDelta {
	oldQty := previous.Quantities()
	newQty := next.Quantities()

	out := make(map[string]QuantityDelta, len(oldQty)+len(newQty))
	for code, qty := range oldQty {
		out[code] = QuantityDelta{OldQty: qty, NewQty: newQty[code]}
	}
	for code, qty := range newQty {
		if _, seen := out[code]; !seen {
			out[code] = QuantityDelta{NewQty: qty}
		}
	}
	return out
}

// GroupSurvivors drops already logged events and groups the rest per board,
// ascending by row id. Repeated row ids within the batch are kept once.
func GroupSurvivors(events []OutfeedEvent, logged map[int64]struct{}) (map[string][]OutfeedEvent, int) {
	groups := make(map[string][]OutfeedEvent)
	seen := make(map[int64]struct{}, len(events))
	duplicates := 0

	for _, ev := range events {
		if _, ok := logged[ev.RowID]; ok {
			duplicates++
			continue
		}
		if _, ok := seen[ev.RowID]; ok {
			duplicates++
			continue
		}
		seen[ev.RowID] = struct{}{}
		groups[ev.BoardCode] = append(groups[ev.BoardCode], ev)
	}

	for code := range groups {
		list := groups[code]
		sort.Slice(list, func(i, j int) bool { return list[i].RowID < list[j].RowID })
	}

	return groups, duplicates
}

// RowIDs lists the row ids of the events.
func RowIDs(events []OutfeedEvent) []int64 {
	ids := make([]int64, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.RowID)
	}
	return ids
}
