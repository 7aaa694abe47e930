package reconcile

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// Plan is everything a cycle computed before writing. Apply it with Engine.ApplyPlan.
type Plan struct {
	CycleID  string    `json:"cycleId"`
	Cursor   Cursor    `json:"cursor"`
	Previous *Snapshot `json:"-"`
	Snapshot Snapshot  `json:"snapshot"`
	// Deltas holds the tlf quantity change of every board in either snapshot.
	Deltas map[string]QuantityDelta `json:"-"`
	// Boards holds one entry per board with surviving events, sorted by code.
	Boards   []BoardPlan `json:"boards"`
	MaxRowID int64       `json:"maxRowId"`
	Summary  PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate counts for a plan.
type PlanSummary struct {
	Boards           int `json:"boards"`
	InvalidBoards    int `json:"invalidBoards"`
	BoardsWithEvents int `json:"boardsWithEvents"`
	EventsFetched    int `json:"eventsFetched"`
	EventsDiscarded  int `json:"eventsDiscarded"`
	EventsDuplicate  int `json:"eventsDuplicate"`
	EventsProcessed  int `json:"eventsProcessed"`
	FromStorage      int `json:"fromStorage"`
	FromWarehouse    int `json:"fromWarehouse"`
	Unknown          int `json:"unknown"`
	Orphaned         int `json:"orphaned"`
	WarehouseDebit   int `json:"warehouseDebit"`
	Deficit          int `json:"deficit"`
}

// NextCursorID is the cursor value after the plan is applied.
func (p *Plan) NextCursorID() int64 {
	return max(p.Cursor.LastProcessedID, p.MaxRowID)
}

// Attributions flattens all board outcomes, ascending by row id.
func (p *Plan) Attributions() []Attribution {
	var out []Attribution
	for _, b := range p.Boards {
		out = append(out, b.Attributions...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Event.RowID < out[j].Event.RowID })
	return out
}

// summarize fills the attribution counters from the board plans.
func (p *Plan) summarize() {
	s := &p.Summary
	s.Boards = len(p.Snapshot.Boards)
	s.BoardsWithEvents = len(p.Boards)
	s.EventsProcessed = 0
	for _, b := range p.Boards {
		s.EventsProcessed += b.Events
		s.FromStorage += b.FromStorage
		s.FromWarehouse += b.AssignedWarehouse
		s.Unknown += b.AssignedUnknown
		s.WarehouseDebit += -b.WarehouseDelta
		s.Deficit += b.Deficit
		s.Orphaned += len(b.Orphans())
	}
}

// WriteReport renders the plan as a plain-text table.
func (p *Plan) WriteReport(w io.Writer) error {
	s := p.Summary
	var sb strings.Builder

	fmt.Fprintf(&sb, "cycle %s\n", p.CycleID)
	fmt.Fprintf(&sb, "cursor %d -> %d\n", p.Cursor.LastProcessedID, p.NextCursorID())
	fmt.Fprintf(&sb, "boards %d (invalid %d), with events %d\n", s.Boards, s.InvalidBoards, s.BoardsWithEvents)
	fmt.Fprintf(&sb, "events fetched %d, discarded %d, duplicate %d, processed %d\n",
		s.EventsFetched, s.EventsDiscarded, s.EventsDuplicate, s.EventsProcessed)
	fmt.Fprintf(&sb, "attributed storage %d, warehouse %d, unknown %d, orphaned %d\n",
		s.FromStorage, s.FromWarehouse, s.Unknown, s.Orphaned)
	fmt.Fprintf(&sb, "warehouse debit %d, deficit %d\n", s.WarehouseDebit, s.Deficit)

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}
	if len(p.Boards) == 0 {
		return nil
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BOARD\tOLD\tNEW\tDELTA\tEVENTS\tTLF\tWH\tUNK\tREPL\tDEFICIT\tWH_DELTA\tRECORD")
	for _, b := range p.Boards {
		record := "no"
		if b.HasWarehouseRecord {
			record = "yes"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			b.BoardCode, b.OldQty, b.NewQty, b.DeltaT, b.Events,
			b.FromStorage, b.AssignedWarehouse, b.AssignedUnknown,
			b.Replenishment, b.Deficit, b.WarehouseDelta, record)
	}
	return tw.Flush()
}
