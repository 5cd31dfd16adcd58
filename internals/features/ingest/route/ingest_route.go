// file: internals/features/ingest/route/ingest_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"libsense_backend/internals/configs"
	ingestController "libsense_backend/internals/features/ingest/controller"
	"libsense_backend/internals/middlewares"
)

// Mount with: route.IngestRoutes(app.Group("/api/data"), db, settings)
func IngestRoutes(r fiber.Router, db *gorm.DB, settings configs.SettingsProvider) {
	ctrl := ingestController.NewIngestController(db, settings)

	r.Get("/metadata", ctrl.Metadata)
	r.Post("/upload", middlewares.UploadRateLimiter(), ctrl.Upload)
	r.Post("/flush-tags", middlewares.AdminOnly(), ctrl.FlushTags)
}
