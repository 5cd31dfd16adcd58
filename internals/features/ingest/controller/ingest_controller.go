// file: internals/features/ingest/controller/ingest_controller.go
package controller

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"libsense_backend/internals/configs"
	ingestService "libsense_backend/internals/features/ingest/service"
	helper "libsense_backend/internals/helpers"
)

// maxUploadBytes caps feed uploads; exports run well under this.
const maxUploadBytes = 8 << 20

type IngestController struct {
	DB     *gorm.DB
	Ingest *ingestService.IngestService
	SrcDir string
}

func NewIngestController(db *gorm.DB, settings configs.SettingsProvider) *IngestController {
	return &IngestController{
		DB:     db,
		Ingest: ingestService.NewIngestService(db, settings),
		SrcDir: configs.GetEnv("FEED_SOURCE_DIR", "assets/source"),
	}
}

// Upload receives one feed export, stores it, and runs ingestion plus the
// tag flush synchronously so the response carries the run stats.
func (ctrl *IngestController) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "missing file field")
	}
	if fileHeader.Size > maxUploadBytes {
		return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, "file exceeds the upload limit")
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".csv" && ext != ".xls" && ext != ".xlsx" {
		return helper.JsonError(c, fiber.StatusBadRequest, "please upload a .csv, .xls or .xlsx file")
	}

	if err := os.MkdirAll(ctrl.SrcDir, 0o755); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "could not prepare upload directory")
	}
	dst := filepath.Join(ctrl.SrcDir, filepath.Base(fileHeader.Filename))
	if err := c.SaveFile(fileHeader, dst); err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "could not store upload")
	}

	stats, err := ctrl.Ingest.IngestFile(dst)
	if err != nil {
		switch {
		case errors.Is(err, ingestService.ErrIngestBusy):
			return helper.JsonError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, ingestService.ErrUnsupportedFile),
			errors.Is(err, ingestService.ErrEmptyFeed),
			errors.Is(err, ingestService.ErrMissingColumns):
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		default:
			return helper.JsonError(c, fiber.StatusInternalServerError, "there was an error processing your file")
		}
	}
	return helper.JsonOK(c, "feed ingested", stats)
}

// FlushTags recomputes derived tags without a new upload, used after
// vendor or rush-type settings change.
func (ctrl *IngestController) FlushTags(c *fiber.Ctx) error {
	flushed, err := ctrl.Ingest.FlushTags()
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "tags flushed", fiber.Map{"tagsFlushed": flushed})
}

func (ctrl *IngestController) Metadata(c *fiber.Ctx) error {
	meta, err := ingestService.Metadata(ctrl.DB)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "OK", meta)
}
