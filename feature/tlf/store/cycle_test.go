package store

import (
	"context"
	"testing"

	"tlf-sync/core/reconcile"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type staticSource struct {
	identities []reconcile.IdentityRow
	slots      []reconcile.SlotRow
	outfeed    []reconcile.OutfeedRow
}

func (s *staticSource) FetchIdentities(context.Context) ([]reconcile.IdentityRow, error) {
	return s.identities, nil
}

func (s *staticSource) FetchOccupancy(context.Context) ([]reconcile.SlotRow, error) {
	return s.slots, nil
}

func (s *staticSource) FetchOutfeed(_ context.Context, after int64) ([]reconcile.OutfeedRow, error) {
	var out []reconcile.OutfeedRow
	for _, r := range s.outfeed {
		if r.RowID > after {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestCycle_AgainstStore(t *testing.T) {
	s, db := setupStore(t)
	require.NoError(t, db.Create(&WarehouseRecord{BoardCode: "MDF-19", WarehouseQty: 1}).Error)

	src := &staticSource{
		identities: []reconcile.IdentityRow{{RawID: 1, BoardCode: "MDF-19"}},
		slots:      []reconcile.SlotRow{{RawID: 1, SlotNumber: 10}, {RawID: 1, SlotNumber: 11}},
	}
	opts := reconcile.Options{
		ProducerTag:      "TLF",
		ExitPoints:       map[int]reconcile.Destination{1: reconcile.DestinationSaw},
		DimensionDivisor: decimal.NewFromInt(10),
	}
	engine := reconcile.NewEngine(src, s, nil, opts, zaptest.NewLogger(t))
	ctx := context.Background()

	first := engine.RunCycle(ctx)
	require.True(t, first.OK, first.Error)
	assert.Equal(t, 1, first.BoardsCount)
	assert.Equal(t, 2, record(t, db, "MDF-19").TLFQty)

	// Storage unchanged, three units out: one from the warehouse, two unknown.
	for i := int64(1); i <= 3; i++ {
		src.outfeed = append(src.outfeed, reconcile.OutfeedRow{
			RowID: i, GroupID: "G1", BoardCode: "MDF-19", ExitSlot: 1, ProducerTag: "TLF",
		})
	}
	second := engine.RunCycle(ctx)
	require.True(t, second.OK, second.Error)
	assert.Equal(t, 3, second.OutfeedEventsProcessed)
	assert.Equal(t, 0, record(t, db, "MDF-19").WarehouseQty)

	third := engine.RunCycle(ctx)
	require.True(t, third.OK, third.Error)
	assert.Zero(t, third.OutfeedEventsProcessed)
	assert.Equal(t, 0, record(t, db, "MDF-19").WarehouseQty)

	orphans, err := s.Orphans(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, 2, orphans[0].TotalQty)

	cur, err := s.LoadCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cur.LastProcessedID)
}

func TestPlan_LeavesStoreUntouched(t *testing.T) {
	s, db := setupStore(t)
	src := &staticSource{
		identities: []reconcile.IdentityRow{{RawID: 1, BoardCode: "MDF-19"}},
		slots:      []reconcile.SlotRow{{RawID: 1, SlotNumber: 10}},
		outfeed:    []reconcile.OutfeedRow{{RowID: 1, GroupID: "G1", BoardCode: "MDF-19", ExitSlot: 1}},
	}
	opts := reconcile.Options{ExitPoints: map[int]reconcile.Destination{1: reconcile.DestinationSaw}}
	engine := reconcile.NewEngine(src, s, nil, opts, zaptest.NewLogger(t))

	plan, err := engine.Plan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), plan.NextCursorID())

	for _, m := range Models() {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T", m)
	}
}
