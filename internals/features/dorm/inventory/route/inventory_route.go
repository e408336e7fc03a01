// file: internals/features/dorm/inventory/route/inventory_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ktx_backend/internals/features/dorm/inventory/controller"
)

// InventoryPublicRoutes: tra cứu không cần đăng nhập (trang tìm phòng).
func InventoryPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewInventoryController(db)

	r.Get("/campuses", ctrl.ListCampuses)
	r.Get("/campuses/:id/buildings", ctrl.ListBuildings)
	r.Get("/rooms/vacancy", ctrl.ListVacancy)
}

func InventoryUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewInventoryController(db)

	r.Get("/rooms/:id/beds", ctrl.ListAvailableBeds)
}

func InventoryAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewInventoryController(db)

	r.Post("/campuses", ctrl.CreateCampus)
	r.Post("/buildings", ctrl.CreateBuilding)
	r.Post("/rooms", ctrl.CreateRoom)
	r.Patch("/beds/:id/status", ctrl.SetBedStatus)
}
