// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"libsense_backend/internals/configs"
	ingestRoute "libsense_backend/internals/features/ingest/route"
	orderRoute "libsense_backend/internals/features/orders/route"
	presetRoute "libsense_backend/internals/features/presets/route"
	reportRoute "libsense_backend/internals/features/reports/route"
	reportService "libsense_backend/internals/features/reports/service"
	userRoute "libsense_backend/internals/features/users/route"
	vendorRoute "libsense_backend/internals/features/vendors/route"
	"libsense_backend/internals/logger"
	"libsense_backend/internals/middlewares"
)

var startTime time.Time

// SetupRoutes mounts every feature. Auth routes are open (the login rate
// limiter guards them); everything else requires a valid session.
func SetupRoutes(app *fiber.App, db *gorm.DB, settings configs.SettingsProvider, mailer reportService.Mailer) {
	startTime = time.Now()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "uptime": time.Since(startTime).String()})
	})

	logger.Log.Info("mounting routes", zap.String("prefix", "/api"))

	userRoute.AuthRoutes(app.Group("/api/auth"), db)

	authed := app.Group("/api", middlewares.AuthRequired())

	orderRoute.OrderRoutes(authed.Group("/orders"), db, settings)
	ingestRoute.IngestRoutes(authed.Group("/data"), db, settings)
	reportRoute.ReportRoutes(authed.Group("/reports"), db, settings, mailer)
	vendorRoute.VendorRoutes(authed.Group("/vendors"), db)
	presetRoute.PresetRoutes(authed.Group("/presets"), db)

	userRoute.UserRoutes(authed.Group("/users", middlewares.AdminOnly()), db)
	orderRoute.SettingsRoutes(authed.Group("/settings", middlewares.AdminOnly()), db, settings)
}
