package reconcile

import (
	"context"
	"sort"
	"sync"
	"time"
)

type fakeSource struct {
	identities []IdentityRow
	slots      []SlotRow
	outfeed    []OutfeedRow
	err        error
	delay      time.Duration
}

func (s *fakeSource) FetchIdentities(ctx context.Context) ([]IdentityRow, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.identities, nil
}

func (s *fakeSource) FetchOccupancy(ctx context.Context) ([]SlotRow, error) {
	return s.slots, nil
}

func (s *fakeSource) FetchOutfeed(ctx context.Context, afterRowID int64) ([]OutfeedRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []OutfeedRow
	for _, row := range s.outfeed {
		if row.RowID > afterRowID {
			out = append(out, row)
		}
	}
	return out, nil
}

// setStock replaces identities and slots so each board holds qty units.
func (s *fakeSource) setStock(stock map[string]int) {
	s.identities = nil
	s.slots = nil
	codes := make([]string, 0, len(stock))
	for code := range stock {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for i, code := range codes {
		rawID := int64(i + 1)
		s.identities = append(s.identities, IdentityRow{RawID: rawID, BoardCode: code})
		for n := 0; n < stock[code]; n++ {
			s.slots = append(s.slots, SlotRow{RawID: rawID, SlotNumber: n + 1})
		}
	}
}

func (s *fakeSource) addEvent(rowID int64, board string) {
	s.outfeed = append(s.outfeed, OutfeedRow{
		RowID:       rowID,
		GroupID:     "G",
		BoardCode:   board,
		ExitSlot:    1,
		ProducerTag: "TLF",
		UpdatedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	})
}

// memStore applies plans to maps with the same semantics as the database store.
type memStore struct {
	mu       sync.Mutex
	snapshot *Snapshot
	cursor   Cursor
	logged   map[int64]Origin
	ledger   map[string]*LedgerRecord
	orphans  map[string]int
	applyErr error
	applies  int
}

func newMemStore() *memStore {
	return &memStore{
		logged:  make(map[int64]Origin),
		ledger:  make(map[string]*LedgerRecord),
		orphans: make(map[string]int),
	}
}

func (m *memStore) setSnapshot(stock map[string]int) {
	snap := &Snapshot{}
	for code, qty := range stock {
		snap.Boards = append(snap.Boards, BoardStock{BoardCode: code, TotalQty: qty})
	}
	m.snapshot = snap
}

func (m *memStore) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return nil, nil
	}
	cp := *m.snapshot
	return &cp, nil
}

func (m *memStore) LoadCursor(ctx context.Context) (Cursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor, nil
}

func (m *memStore) LoggedRowIDs(ctx context.Context, rowIDs []int64) (map[int64]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]struct{})
	for _, id := range rowIDs {
		if _, ok := m.logged[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (m *memStore) WarehouseStock(ctx context.Context, boardCodes []string) (map[string]LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]LedgerEntry)
	for _, code := range boardCodes {
		if r, ok := m.ledger[code]; ok {
			out[code] = LedgerEntry{Exists: true, WarehouseQty: r.WarehouseQty}
		}
	}
	return out, nil
}

func (m *memStore) AggregationKeys(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string)
	for code, r := range m.ledger {
		if r.AggregationKey != "" {
			out[code] = r.AggregationKey
		}
	}
	return out, nil
}

func (m *memStore) ApplyPlan(ctx context.Context, plan *Plan, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	m.applies++

	snap := plan.Snapshot
	m.snapshot = &snap

	qty := snap.Quantities()
	for code, r := range m.ledger {
		r.TLFQty = qty[code]
	}
	for _, b := range plan.Boards {
		if r, ok := m.ledger[b.BoardCode]; ok && b.WarehouseDelta != 0 {
			r.WarehouseQty = max(0, r.WarehouseQty+b.WarehouseDelta)
		}
		for _, a := range b.Attributions {
			m.logged[a.Event.RowID] = a.Origin
			if a.Orphaned {
				m.orphans[b.BoardCode]++
			}
		}
	}

	m.cursor = Cursor{LastProcessedID: plan.NextCursorID(), LastProcessedAt: &now}
	return nil
}

func (m *memStore) warehouseQty() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int)
	for code, r := range m.ledger {
		out[code] = r.WarehouseQty
	}
	return out
}

type fakeNotifier struct {
	mu         sync.Mutex
	snapshots  []Snapshot
	aggregates []AggregateSnapshot
	errors     []SyncError
}

func (n *fakeNotifier) PublishSnapshot(ctx context.Context, s Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshots = append(n.snapshots, s)
}

func (n *fakeNotifier) PublishAggregate(ctx context.Context, a AggregateSnapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.aggregates = append(n.aggregates, a)
}

func (n *fakeNotifier) PublishError(ctx context.Context, e SyncError) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, e)
}

type fakeArchiver struct {
	archived []Snapshot
	err      error
}

func (a *fakeArchiver) ArchiveSnapshot(ctx context.Context, s Snapshot) error {
	a.archived = append(a.archived, s)
	return a.err
}
