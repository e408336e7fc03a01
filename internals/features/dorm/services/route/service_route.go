// file: internals/features/dorm/services/route/service_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ktx_backend/internals/features/dorm/services/controller"
)

func ServiceUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewServiceController(db)

	services := r.Group("/services")
	services.Get("/", ctrl.ListPackages)
	services.Post("/subscribe", ctrl.Subscribe)
	services.Get("/subscriptions/me", ctrl.MySubscriptions)
	services.Delete("/subscriptions/:id", ctrl.Unsubscribe)
}

func ServiceAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewServiceController(db)

	r.Post("/services", ctrl.CreatePackage)
}
