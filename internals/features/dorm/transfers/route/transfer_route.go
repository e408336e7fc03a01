// file: internals/features/dorm/transfers/route/transfer_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ktx_backend/internals/features/dorm/transfers/controller"
)

func TransferUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewTransferController(db)

	transfers := r.Group("/transfers")
	transfers.Post("/", ctrl.Create)
	transfers.Get("/me", ctrl.GetMine)
	transfers.Get("/:id", ctrl.GetByID)
}

func TransferAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewTransferController(db)

	transfers := r.Group("/transfers")
	transfers.Get("/pending", ctrl.ListPending)
	transfers.Post("/:id/approve", ctrl.Approve)
	transfers.Post("/:id/reject", ctrl.Reject)
}
