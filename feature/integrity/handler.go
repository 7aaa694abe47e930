package integrity

import (
	"errors"

	"tlf-sync/core/logger"
	"tlf-sync/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	// Force import for Swagger
	var _ = checks.SchemaReport{}
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/source", h.HandleSourceCheck)
	group.Get("/ledger", h.HandleLedgerCheck)
	group.Get("/archive", h.HandleArchiveCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs all available integrity checks (Source, Ledger, Archive).
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report := make(map[string]interface{})

	if srcReport, err := h.service.CheckSource(); err != nil {
		report["source"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["source"] = srcReport
	}

	if ledgerReport, err := h.service.CheckLedger(); err != nil {
		report["ledger"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["ledger"] = ledgerReport
	}

	switch archiveReport, err := h.service.CheckArchive(c.UserContext()); {
	case errors.Is(err, ErrArchiveNotConfigured):
		report["archive"] = map[string]interface{}{"status": "disabled"}
	case err != nil:
		report["archive"] = map[string]interface{}{"status": "error", "error": err.Error()}
	default:
		report["archive"] = archiveReport
	}

	return c.JSON(report)
}

// HandleSourceCheck checks the storage controller schema.
// @Summary Check Source Schema
// @Description Checks if the storage controller tables match the models the sync reads.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} checks.SchemaReport "Source Check Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/source [get]
func (h *Handler) HandleSourceCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckSource()
	if err != nil {
		l.Error("Source schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

// HandleLedgerCheck checks and optionally migrates the ledger schema.
// @Summary Check Ledger Schema
// @Description Checks if the ledger tables match the sync's models. Optionally migrates them.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Migrate ledger tables"
// @Success 200 {object} checks.SchemaReport "Ledger Check Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/ledger [get]
func (h *Handler) HandleLedgerCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	check := h.service.CheckLedger
	if fix {
		l.Info("Attempting to migrate ledger tables")
		check = h.service.FixLedger
	}

	report, err := check()
	if err != nil {
		l.Error("Ledger schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

// HandleArchiveCheck checks and optionally creates the archive bucket.
// @Summary Check Snapshot Archive
// @Description Checks if the archive bucket exists. Optionally creates it.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Create missing bucket"
// @Success 200 {object} checks.ArchiveReport "Archive Report"
// @Failure 404 {object} map[string]string "Archive Not Configured"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/archive [get]
func (h *Handler) HandleArchiveCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	check := h.service.CheckArchive
	if fix {
		check = h.service.FixArchive
	}

	report, err := check(c.UserContext())
	if errors.Is(err, ErrArchiveNotConfigured) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Archive check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if !report.Exists {
		l.Warn("Archive bucket missing", zap.String("bucket", report.Bucket))
	}
	return c.JSON(report)
}
