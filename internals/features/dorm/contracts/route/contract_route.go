// file: internals/features/dorm/contracts/route/contract_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ktx_backend/internals/features/dorm/contracts/controller"
)

// ContractUserRoutes: nhóm /api/u — sinh viên đã đăng nhập.
func ContractUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewContractController(db)

	contracts := r.Group("/contracts")
	contracts.Post("/book", ctrl.BookBed)
	contracts.Get("/me", ctrl.GetMyContracts)
	contracts.Get("/me/current", ctrl.GetMyCurrentContract)
	contracts.Get("/:id", ctrl.GetByID)
	contracts.Get("/:id/liquidation", ctrl.GetLiquidation)
	contracts.Delete("/:id", ctrl.Cancel)
}

// ContractAdminRoutes: nhóm /api/a — admin / quản lý tòa.
func ContractAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewContractController(db)

	contracts := r.Group("/contracts")
	contracts.Get("/", ctrl.List)
	contracts.Patch("/:id/status", ctrl.UpdateStatus)
	contracts.Post("/:id/liquidate", ctrl.Liquidate)
}
