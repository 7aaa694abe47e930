package tlf

import (
	"bytes"
	"errors"
	"time"

	"tlf-sync/core/logger"
	"tlf-sync/core/reconcile"
	"tlf-sync/feature/tlf/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler handles HTTP requests for the sync.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/tlf")
	group.Post("/sync", h.HandleSync)
	group.Get("/snapshot", h.HandleSnapshot)
	group.Get("/snapshot/aggregate", h.HandleAggregate)
	group.Get("/cursor", h.HandleCursor)
	group.Get("/outfeed", h.HandleOutfeedLog)
	group.Get("/orphans", h.HandleOrphans)
	group.Get("/orphans/export", h.HandleOrphanExport)
	group.Get("/warehouse", h.HandleWarehouse)
	group.Post("/warehouse/recompute", h.HandleRecompute)
	group.Get("/archive", h.HandleArchiveList)
	group.Get("/archive/snapshot", h.HandleArchiveSnapshot)
}

// HandleSync runs a sync cycle now.
// @Summary Run Sync Cycle
// @Description Runs one reconciliation cycle and returns its outcome. Returns 409 when another cycle holds the lock.
// @Tags tlf
// @Produce json
// @Success 200 {object} reconcile.CycleResult "Cycle Result"
// @Failure 409 {object} reconcile.CycleResult "Cycle Skipped"
// @Failure 500 {object} reconcile.CycleResult "Cycle Failed"
// @Router /tlf/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering sync cycle")

	result := h.service.Sync(c.UserContext())
	switch {
	case result.Skipped:
		return c.Status(fiber.StatusConflict).JSON(result)
	case !result.OK:
		return c.Status(fiber.StatusInternalServerError).JSON(result)
	}
	return c.JSON(result)
}

// HandleSnapshot returns the current snapshot.
// @Summary Get Snapshot
// @Tags tlf
// @Produce json
// @Success 200 {object} reconcile.Snapshot "Snapshot"
// @Failure 404 {object} map[string]string "No Snapshot Yet"
// @Router /tlf/snapshot [get]
func (h *Handler) HandleSnapshot(c *fiber.Ctx) error {
	snap, err := h.service.Snapshot(c.UserContext())
	if err != nil {
		return h.fail(c, "Snapshot read failed", err)
	}
	return c.JSON(snap)
}

// HandleAggregate returns the snapshot summed per aggregation key.
// @Summary Get Aggregate Snapshot
// @Tags tlf
// @Produce json
// @Success 200 {object} reconcile.AggregateSnapshot "Aggregate"
// @Failure 404 {object} map[string]string "No Snapshot Yet"
// @Router /tlf/snapshot/aggregate [get]
func (h *Handler) HandleAggregate(c *fiber.Ctx) error {
	agg, err := h.service.Aggregate(c.UserContext())
	if err != nil {
		return h.fail(c, "Aggregate read failed", err)
	}
	return c.JSON(agg)
}

// HandleCursor returns the outfeed cursor.
// @Summary Get Outfeed Cursor
// @Tags tlf
// @Produce json
// @Success 200 {object} reconcile.Cursor "Cursor"
// @Router /tlf/cursor [get]
func (h *Handler) HandleCursor(c *fiber.Ctx) error {
	cur, err := h.service.Cursor(c.UserContext())
	if err != nil {
		return h.fail(c, "Cursor read failed", err)
	}
	return c.JSON(cur)
}

// HandleOutfeedLog queries the attribution log.
// @Summary Query Outfeed Log
// @Description Lists attributed outfeed events, newest first.
// @Tags tlf
// @Produce json
// @Param board query string false "Board code"
// @Param source query string false "TLF_STORAGE, WAREHOUSE or UNKNOWN"
// @Param limit query int false "Maximum rows (default 100)"
// @Success 200 {array} store.OutfeedLogEntry "Log Entries"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /tlf/outfeed [get]
func (h *Handler) HandleOutfeedLog(c *fiber.Ctx) error {
	q := store.LogQuery{
		BoardCode: c.Query("board"),
		Source:    c.Query("source"),
		Limit:     c.QueryInt("limit", 0),
	}
	if q.Limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must not be negative"})
	}
	switch reconcile.Origin(q.Source) {
	case "", reconcile.OriginStorage, reconcile.OriginWarehouse, reconcile.OriginUnknown:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown source " + q.Source})
	}

	entries, err := h.service.OutfeedLog(c.UserContext(), q)
	if err != nil {
		return h.fail(c, "Outfeed log query failed", err)
	}
	return c.JSON(entries)
}

// HandleOrphans lists the orphan registry.
// @Summary List Orphans
// @Tags tlf
// @Produce json
// @Success 200 {array} store.Orphan "Orphans"
// @Router /tlf/orphans [get]
func (h *Handler) HandleOrphans(c *fiber.Ctx) error {
	orphans, err := h.service.Orphans(c.UserContext())
	if err != nil {
		return h.fail(c, "Orphan read failed", err)
	}
	return c.JSON(orphans)
}

// HandleOrphanExport downloads the orphan registry as xlsx.
// @Summary Export Orphans
// @Tags tlf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "Workbook"
// @Router /tlf/orphans/export [get]
func (h *Handler) HandleOrphanExport(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportOrphans(c.UserContext(), &buf); err != nil {
		return h.fail(c, "Orphan export failed", err)
	}
	c.Attachment("tlf-orphans.xlsx")
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}

// HandleWarehouse lists the warehouse ledger.
// @Summary List Warehouse Records
// @Tags tlf
// @Produce json
// @Success 200 {array} store.WarehouseRecord "Records"
// @Router /tlf/warehouse [get]
func (h *Handler) HandleWarehouse(c *fiber.Ctx) error {
	records, err := h.service.Warehouse(c.UserContext())
	if err != nil {
		return h.fail(c, "Warehouse read failed", err)
	}
	return c.JSON(records)
}

// HandleRecompute refreshes derived warehouse quantities.
// @Summary Recompute Warehouse
// @Description Recomputes on-order, on-hand, available and projected quantities of every record.
// @Tags tlf
// @Produce json
// @Success 200 {object} map[string]interface{} "Changed Records"
// @Router /tlf/warehouse/recompute [post]
func (h *Handler) HandleRecompute(c *fiber.Ctx) error {
	changed, err := h.service.Recompute(c.UserContext())
	if err != nil {
		return h.fail(c, "Warehouse recompute failed", err)
	}
	return c.JSON(fiber.Map{"status": "recomputed", "changed": changed})
}

// HandleArchiveList lists archived snapshots of one day.
// @Summary List Archived Snapshots
// @Tags tlf
// @Produce json
// @Param day query string false "UTC day as YYYY-MM-DD (default today)"
// @Success 200 {array} archive.Entry "Entries"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Archive Disabled"
// @Router /tlf/archive [get]
func (h *Handler) HandleArchiveList(c *fiber.Ctx) error {
	day := time.Now().UTC()
	if raw := c.Query("day"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "day must be YYYY-MM-DD"})
		}
		day = parsed
	}

	entries, err := h.service.ArchivedSnapshots(c.UserContext(), day)
	if err != nil {
		return h.fail(c, "Archive listing failed", err)
	}
	return c.JSON(entries)
}

// HandleArchiveSnapshot returns one archived snapshot.
// @Summary Get Archived Snapshot
// @Tags tlf
// @Produce json
// @Param key query string true "Object key"
// @Success 200 {object} reconcile.Snapshot "Snapshot"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Archive Disabled"
// @Router /tlf/archive/snapshot [get]
func (h *Handler) HandleArchiveSnapshot(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "key is required"})
	}
	snap, err := h.service.ArchivedSnapshot(c.UserContext(), key)
	if err != nil {
		return h.fail(c, "Archive read failed", err)
	}
	return c.JSON(snap)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, ErrNoSnapshot) || errors.Is(err, ErrArchiveDisabled) {
		status = fiber.StatusNotFound
	} else {
		logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
