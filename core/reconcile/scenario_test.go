package reconcile

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type scenarioEvent struct {
	Row   int64  `yaml:"row"`
	Board string `yaml:"board"`
}

type scenario struct {
	Name      string           `yaml:"name"`
	Previous  map[string]int   `yaml:"previous"`
	Current   map[string]int   `yaml:"current"`
	Warehouse map[string]int   `yaml:"warehouse"`
	Logged    map[int64]Origin `yaml:"logged"`
	Events    []scenarioEvent  `yaml:"events"`
	Expect    struct {
		Processed int              `yaml:"processed"`
		Cursor    int64            `yaml:"cursor"`
		Origins   map[int64]Origin `yaml:"origins"`
		Warehouse map[string]int   `yaml:"warehouse"`
		Orphans   map[string]int   `yaml:"orphans"`
	} `yaml:"expect"`
}

func loadScenarios(t *testing.T) []scenario {
	t.Helper()
	raw, err := os.ReadFile("testdata/scenarios.yaml")
	require.NoError(t, err)

	var scenarios []scenario
	require.NoError(t, yaml.Unmarshal(raw, &scenarios))
	require.NotEmpty(t, scenarios)
	return scenarios
}

func TestScenarios(t *testing.T) {
	for _, sc := range loadScenarios(t) {
		t.Run(sc.Name, func(t *testing.T) {
			src := &fakeSource{}
			src.setStock(sc.Current)
			for _, ev := range sc.Events {
				src.addEvent(ev.Row, ev.Board)
			}

			store := newMemStore()
			if sc.Previous != nil {
				store.setSnapshot(sc.Previous)
			}
			for code, qty := range sc.Warehouse {
				store.ledger[code] = &LedgerRecord{BoardCode: code, WarehouseQty: qty}
			}
			for row, origin := range sc.Logged {
				store.logged[row] = origin
			}

			result := newTestEngine(src, store, &fakeNotifier{}).RunCycle(context.Background())
			require.True(t, result.OK, result.Error)

			assert.Equal(t, sc.Expect.Processed, result.OutfeedEventsProcessed)
			assert.Equal(t, sc.Expect.Cursor, store.cursor.LastProcessedID)
			assert.Equal(t, sc.Expect.Origins, store.logged)
			assert.Equal(t, sc.Expect.Warehouse, store.warehouseQty())
			assert.Equal(t, sc.Expect.Orphans, store.orphans)
		})
	}
}
