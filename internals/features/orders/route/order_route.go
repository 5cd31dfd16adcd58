// file: internals/features/orders/route/order_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"libsense_backend/internals/configs"
	orderController "libsense_backend/internals/features/orders/controller"
)

// Mount with: route.OrderRoutes(app.Group("/api/orders"), db, settings)
func OrderRoutes(r fiber.Router, db *gorm.DB, settings configs.SettingsProvider) {
	ctrl := orderController.NewOrderController(db, settings)

	r.Post("/all-orders", ctrl.Query) // every paged view, selected by the views block
	r.Get("/overview", ctrl.Overview)
	r.Get("/:id", ctrl.GetByID)

	r.Patch("/", ctrl.Patch)
	r.Patch("/checked", ctrl.SetChecked)
	r.Patch("/attention", ctrl.SetAttention)

	cdl := r.Group("/cdl")
	cdl.Post("/", ctrl.MarkCDL)
	cdl.Delete("/:id", ctrl.RemoveCDL)
}

// Mount with: route.SettingsRoutes(app.Group("/api/settings", middlewares.AdminOnly()), db, settings)
func SettingsRoutes(r fiber.Router, db *gorm.DB, settings configs.SettingsProvider) {
	ctrl := orderController.NewOrderController(db, settings)
	r.Patch("/cdl-cutoff", ctrl.PatchCDLCutoff)
}
