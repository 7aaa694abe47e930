package tlf

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"tlf-sync/core/database"
	"tlf-sync/core/reconcile"
	"tlf-sync/core/storage"
	"tlf-sync/core/storage/mocks"
	"tlf-sync/feature/tlf/archive"
	"tlf-sync/feature/tlf/store"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fetchedAt = time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)

type stubRunner struct {
	result reconcile.CycleResult
	calls  int
}

func (r *stubRunner) RunCycle(context.Context) reconcile.CycleResult {
	r.calls++
	return r.result
}

func setupTestApp(t *testing.T, runner reconcile.Runner, client storage.Client) (*fiber.App, *store.Store, *gorm.DB) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	st := store.New(db)

	var arc *archive.Archive
	if client != nil {
		arc = archive.New(client, storage.Config{Bucket: "tlf-archive", Prefix: "snapshots"}, nil)
	}

	app := fiber.New()
	require.NoError(t, NewFeature(NewService(runner, st, arc, zap.NewNop())).Load(app))
	return app, st, db
}

func seedSnapshot(t *testing.T, st *store.Store, db *gorm.DB) {
	require.NoError(t, db.Create(&store.WarehouseRecord{BoardCode: "MDF-19-A", AggregationKey: "MDF-19", WarehouseQty: 3}).Error)
	plan := &reconcile.Plan{
		CycleID: "c1",
		Snapshot: reconcile.Snapshot{FetchedAt: fetchedAt, Boards: []reconcile.BoardStock{
			{BoardCode: "MDF-19-A", RawID: 1, TotalQty: 2},
			{BoardCode: "OSB-12", RawID: 2, TotalQty: 1},
		}},
		Boards: []reconcile.BoardPlan{
			reconcile.Attribute("GONE-1", []reconcile.OutfeedEvent{{RowID: 5, GroupID: "G", BoardCode: "GONE-1", Destination: reconcile.DestinationCNC}},
				reconcile.QuantityDelta{OldQty: 1}, reconcile.LedgerEntry{}),
		},
		MaxRowID: 5,
	}
	require.NoError(t, st.ApplyPlan(context.Background(), plan, fetchedAt))
}

func getJSON(t *testing.T, app *fiber.App, method, url string, out any) int {
	resp, err := app.Test(httptest.NewRequest(method, url, nil))
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHandleSync(t *testing.T) {
	tests := []struct {
		name   string
		result reconcile.CycleResult
		status int
	}{
		{"ok", reconcile.CycleResult{OK: true, BoardsCount: 3, OutfeedEventsProcessed: 2}, 200},
		{"failed", reconcile.CycleResult{Error: "inventory source unavailable"}, 500},
		{"skipped", reconcile.CycleResult{Error: "cycle already running", Skipped: true}, 409},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{result: tt.result}
			app, _, _ := setupTestApp(t, runner, nil)

			var body map[string]any
			assert.Equal(t, tt.status, getJSON(t, app, "POST", "/tlf/sync", &body))
			assert.Equal(t, tt.result.OK, body["ok"])
			assert.Equal(t, 1, runner.calls)
		})
	}
}

func TestHandleSnapshot(t *testing.T) {
	app, st, db := setupTestApp(t, &stubRunner{}, nil)

	var missing map[string]string
	assert.Equal(t, 404, getJSON(t, app, "GET", "/tlf/snapshot", &missing))
	assert.Equal(t, ErrNoSnapshot.Error(), missing["error"])

	seedSnapshot(t, st, db)

	var snap reconcile.Snapshot
	assert.Equal(t, 200, getJSON(t, app, "GET", "/tlf/snapshot", &snap))
	assert.Len(t, snap.Boards, 2)

	var agg reconcile.AggregateSnapshot
	assert.Equal(t, 200, getJSON(t, app, "GET", "/tlf/snapshot/aggregate", &agg))
	assert.Equal(t, map[string]int{"MDF-19": 2, "OSB-12": 1}, agg.QuantityByKey)

	var cur reconcile.Cursor
	assert.Equal(t, 200, getJSON(t, app, "GET", "/tlf/cursor", &cur))
	assert.Equal(t, int64(5), cur.LastProcessedID)
}

func TestHandleOutfeedLog(t *testing.T) {
	app, st, db := setupTestApp(t, &stubRunner{}, nil)
	seedSnapshot(t, st, db)

	var entries []store.OutfeedLogEntry
	assert.Equal(t, 200, getJSON(t, app, "GET", "/tlf/outfeed?board=GONE-1&source=TLF_STORAGE", &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "CNC", entries[0].Destination)

	assert.Equal(t, 400, getJSON(t, app, "GET", "/tlf/outfeed?source=SHELF", nil))
	assert.Equal(t, 400, getJSON(t, app, "GET", "/tlf/outfeed?limit=-1", nil))
}

func TestHandleOrphans(t *testing.T) {
	app, st, db := setupTestApp(t, &stubRunner{}, nil)
	seedSnapshot(t, st, db)

	var orphans []store.Orphan
	assert.Equal(t, 200, getJSON(t, app, "GET", "/tlf/orphans", &orphans))
	require.Len(t, orphans, 1)
	assert.Equal(t, "GONE-1", orphans[0].BoardCode)

	resp, err := app.Test(httptest.NewRequest("GET", "/tlf/orphans/export", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "tlf-orphans.xlsx")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	rows, err := f.GetRows("Orphans")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestHandleWarehouse(t *testing.T) {
	app, _, db := setupTestApp(t, &stubRunner{}, nil)
	require.NoError(t, db.Create(&store.WarehouseRecord{BoardCode: "MDF-19", WarehouseQty: 2}).Error)
	require.NoError(t, db.Create(&store.PurchaseOrderLine{MaterialCode: "MDF-19", OrderedQty: 4, Status: store.OrderStatusOpen}).Error)

	var body map[string]any
	assert.Equal(t, 200, getJSON(t, app, "POST", "/tlf/warehouse/recompute", &body))
	assert.Equal(t, float64(1), body["changed"])

	var records []store.WarehouseRecord
	assert.Equal(t, 200, getJSON(t, app, "GET", "/tlf/warehouse", &records))
	require.Len(t, records, 1)
	assert.Equal(t, 6, records[0].ProjectedQty)
}

func TestHandleArchive(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		app, _, _ := setupTestApp(t, &stubRunner{}, nil)
		assert.Equal(t, 404, getJSON(t, app, "GET", "/tlf/archive", nil))
		assert.Equal(t, 404, getJSON(t, app, "GET", "/tlf/archive/snapshot?key=x", nil))
	})

	t.Run("list", func(t *testing.T) {
		client := new(mocks.Client)
		ch := make(chan minio.ObjectInfo, 1)
		ch <- minio.ObjectInfo{Key: "snapshots/2026/03/02/060000.000000000.json", Size: 42}
		close(ch)
		client.On("ListObjects", mock.Anything, "tlf-archive", minio.ListObjectsOptions{Prefix: "snapshots/2026/03/02/", Recursive: true}).
			Return((<-chan minio.ObjectInfo)(ch))
		app, _, _ := setupTestApp(t, &stubRunner{}, client)

		var entries []archive.Entry
		assert.Equal(t, 200, getJSON(t, app, "GET", "/tlf/archive?day=2026-03-02", &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, int64(42), entries[0].Size)

		assert.Equal(t, 400, getJSON(t, app, "GET", "/tlf/archive?day=yesterday", nil))
	})

	t.Run("snapshot", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "tlf-archive", "k.json", mock.Anything).
			Return(io.NopCloser(bytes.NewBufferString(`{"fetchedAt":"2026-03-02T06:00:00Z","boards":[]}`)), nil)
		app, _, _ := setupTestApp(t, &stubRunner{}, client)

		var snap reconcile.Snapshot
		assert.Equal(t, 200, getJSON(t, app, "GET", "/tlf/archive/snapshot?key=k.json", &snap))
		assert.True(t, snap.FetchedAt.Equal(fetchedAt))

		assert.Equal(t, 400, getJSON(t, app, "GET", "/tlf/archive/snapshot", nil))
	})
}
