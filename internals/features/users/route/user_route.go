// file: internals/features/users/route/user_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userController "libsense_backend/internals/features/users/controller"
	"libsense_backend/internals/middlewares"
)

// Mount with: route.AuthRoutes(app.Group("/api/auth"), db)
func AuthRoutes(r fiber.Router, db *gorm.DB) {
	authCtl := userController.NewAuthController(db)

	r.Post("/login", middlewares.LoginRateLimiter(), authCtl.Login)
	r.Post("/logout", authCtl.Logout)
	r.Get("/me", middlewares.AuthRequired(), authCtl.Me)
}

// Mount with: route.UserRoutes(app.Group("/api/users"), db) — admin only.
func UserRoutes(r fiber.Router, db *gorm.DB) {
	userCtl := userController.NewUserController(db)

	r.Get("/", userCtl.List)
	r.Post("/", userCtl.Create)
	r.Delete("/:username", userCtl.Delete)
}
