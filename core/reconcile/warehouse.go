package reconcile

import "time"

// LedgerRecord holds the input fields of a warehouse record.
type LedgerRecord struct {
	BoardCode      string
	AggregationKey string
	WarehouseQty   int
	TLFQty         int
	ReservedQty    int
	OnOrderQty     int
}

// DerivedQty holds the fields computed from a record's inputs.
type DerivedQty struct {
	OnHandQty    int
	AvailableQty int
	ProjectedQty int
}

// Derive computes on-hand, available and projected quantities.
func (r LedgerRecord) Derive() DerivedQty {
	onHand := r.WarehouseQty + r.TLFQty
	available := max(0, onHand-r.ReservedQty)
	return DerivedQty{
		OnHandQty:    onHand,
		AvailableQty: available,
		ProjectedQty: available + r.OnOrderQty,
	}
}

// OpenOrder is an ordered quantity not yet received.
type OpenOrder struct {
	MaterialCode string
	OrderedQty   int
}

// AggregationAnchors picks the record that carries each aggregation key's orders:
// the member whose board code equals the key, else the smallest board code.
func AggregationAnchors(records []LedgerRecord) map[string]string {
	anchors := make(map[string]string)
	for _, r := range records {
		key := r.AggregationKey
		if key == "" {
			continue
		}
		current, ok := anchors[key]
		switch {
		case !ok:
			anchors[key] = r.BoardCode
		case current == key:
		case r.BoardCode == key || r.BoardCode < current:
			anchors[key] = r.BoardCode
		}
	}
	return anchors
}

// OnOrderByBoard sums open orders per record. A record receives orders placed
// against its own board code and against every aggregation key it anchors.
func OnOrderByBoard(records []LedgerRecord, orders []OpenOrder) map[string]int {
	byMaterial := make(map[string]int)
	for _, o := range orders {
		byMaterial[o.MaterialCode] += o.OrderedQty
	}

	codes := make(map[string]struct{}, len(records))
	for _, r := range records {
		codes[r.BoardCode] = struct{}{}
	}

	// A key that is itself a board code already lands on that record.
	anchored := make(map[string][]string)
	for key, code := range AggregationAnchors(records) {
		if _, isBoard := codes[key]; isBoard {
			continue
		}
		anchored[code] = append(anchored[code], key)
	}

	out := make(map[string]int, len(records))
	for _, r := range records {
		total := byMaterial[r.BoardCode]
		for _, key := range anchored[r.BoardCode] {
			total += byMaterial[key]
		}
		out[r.BoardCode] = total
	}
	return out
}

// Aggregate sums snapshot quantities per aggregation key. Boards without a key
// are reported under their own code. keys maps board code to aggregation key.
func Aggregate(snapshot *Snapshot, keys map[string]string) AggregateSnapshot {
	agg := AggregateSnapshot{QuantityByKey: make(map[string]int)}
	if snapshot == nil {
		return agg
	}
	agg.FetchedAt = snapshot.FetchedAt
	for code, qty := range snapshot.Quantities() {
		key := keys[code]
		if key == "" {
			key = code
		}
		agg.QuantityByKey[key] += qty
	}
	return agg
}

// Now in UTC, truncated to microseconds so values survive a database round trip.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
