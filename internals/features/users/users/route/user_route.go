// file: internals/features/users/users/route/user_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ktx_backend/internals/features/users/users/controller"
)

func UserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewUserController(db)

	users := r.Group("/users")
	users.Get("/me", ctrl.GetProfile)
	users.Patch("/me", ctrl.UpdateProfile)
}
