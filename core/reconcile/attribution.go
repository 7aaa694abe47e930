package reconcile

// BoardPlan is the attribution outcome for one board in one cycle.
type BoardPlan struct {
	BoardCode string `json:"boardCode"`
	OldQty    int    `json:"oldQty"`
	NewQty    int    `json:"newQty"`
	DeltaT    int    `json:"deltaT"`
	Events    int    `json:"events"`

	FromStorage         int `json:"fromStorage"`
	FromWarehouseDirect int `json:"fromWarehouseDirect"`
	Replenishment       int `json:"replenishment"`
	Demand              int `json:"demand"`
	Deficit             int `json:"deficit"`
	// WarehouseDelta is the additive ledger adjustment, never positive.
	WarehouseDelta int `json:"warehouseDelta"`

	AssignedWarehouse  int  `json:"assignedWarehouse"`
	AssignedUnknown    int  `json:"assignedUnknown"`
	HasWarehouseRecord bool `json:"hasWarehouseRecord"`
	InNewSnapshot      bool `json:"inNewSnapshot"`

	Attributions []Attribution `json:"attributions"`
}

// Orphans returns the attributions that belong in the orphan registry.
func (b BoardPlan) Orphans() []Attribution {
	var out []Attribution
	for _, a := range b.Attributions {
		if a.Orphaned {
			out = append(out, a)
		}
	}
	return out
}

// Attribute assigns an origin to every event of one board.
// Events must be sorted ascending by row id.
//
// The automated storage delta tells how many units physically left it; any
// outfeed beyond that, plus units that moved into storage, is claimed from the
// warehouse ledger up to what the ledger holds. The rest is unknown.
func Attribute(boardCode string, events []OutfeedEvent, qty QuantityDelta, ledger LedgerEntry) BoardPlan {
	s := len(events)
	deltaT := qty.Delta()

	fromStorage := min(s, max(0, -deltaT))
	fromWarehouseDirect := s - fromStorage
	replenishment := max(0, deltaT)
	demand := fromWarehouseDirect + replenishment

	deficit := 0
	warehouseDelta := -demand
	if ledger.Exists {
		w := max(0, ledger.WarehouseQty)
		if w < demand {
			deficit = demand - w
			warehouseDelta = -w
		}
	} else {
		deficit = demand
		warehouseDelta = 0
	}

	assignedWarehouse := max(0, fromWarehouseDirect-deficit)
	inNew := qty.NewQty > 0
	vanished := !inNew && !ledger.Exists

	plan := BoardPlan{
		BoardCode:           boardCode,
		OldQty:              qty.OldQty,
		NewQty:              qty.NewQty,
		DeltaT:              deltaT,
		Events:              s,
		FromStorage:         fromStorage,
		FromWarehouseDirect: fromWarehouseDirect,
		Replenishment:       replenishment,
		Demand:              demand,
		Deficit:             deficit,
		WarehouseDelta:      warehouseDelta,
		AssignedWarehouse:   assignedWarehouse,
		AssignedUnknown:     s - fromStorage - assignedWarehouse,
		HasWarehouseRecord:  ledger.Exists,
		InNewSnapshot:       inNew,
		Attributions:        make([]Attribution, 0, s),
	}

	for i, ev := range events {
		origin := OriginUnknown
		switch {
		case i < fromStorage:
			origin = OriginStorage
		case i < fromStorage+assignedWarehouse:
			origin = OriginWarehouse
		}
		plan.Attributions = append(plan.Attributions, Attribution{
			Event:    ev,
			Origin:   origin,
			Orphaned: origin == OriginUnknown || vanished,
		})
	}

	return plan
}
