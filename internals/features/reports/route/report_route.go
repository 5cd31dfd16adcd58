// file: internals/features/reports/route/report_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"libsense_backend/internals/configs"
	reportController "libsense_backend/internals/features/reports/controller"
	reportService "libsense_backend/internals/features/reports/service"
)

// Mount with: route.ReportRoutes(app.Group("/api/reports"), db, settings, mailer)
func ReportRoutes(r fiber.Router, db *gorm.DB, settings configs.SettingsProvider, mailer reportService.Mailer) {
	ctrl := reportController.NewReportController(db, settings, mailer)

	r.Get("/:kind/download", ctrl.Download)
	r.Post("/:kind/send", ctrl.Send)
}
