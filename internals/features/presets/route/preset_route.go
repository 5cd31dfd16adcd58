// file: internals/features/presets/route/preset_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	presetController "libsense_backend/internals/features/presets/controller"
)

// Mount with: route.PresetRoutes(app.Group("/api/presets"), db)
func PresetRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := presetController.NewPresetController(db)

	r.Get("/", ctrl.List)
	r.Post("/", ctrl.Save)
	r.Delete("/:id", ctrl.Delete)
}
