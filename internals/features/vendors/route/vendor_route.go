// file: internals/features/vendors/route/vendor_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	vendorController "libsense_backend/internals/features/vendors/controller"
	"libsense_backend/internals/middlewares"
)

// Mount with: route.VendorRoutes(app.Group("/api/vendors"), db)
func VendorRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := vendorController.NewVendorController(db)

	r.Get("/", ctrl.List)

	admin := r.Group("/", middlewares.AdminOnly())
	admin.Put("/", ctrl.Upsert)
	admin.Delete("/:code", ctrl.Delete)
}
