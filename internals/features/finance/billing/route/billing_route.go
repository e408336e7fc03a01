// file: internals/features/finance/billing/route/billing_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ktx_backend/internals/features/finance/billing/controller"
)

func BillingUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewBillingController(db)

	invoices := r.Group("/invoices")
	invoices.Get("/me", ctrl.GetMyInvoices)
	invoices.Get("/:id", ctrl.GetInvoice)

	r.Get("/rooms/:id/invoices", ctrl.GetRoomInvoices)
}

func BillingAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewBillingController(db)

	utilities := r.Group("/utilities")
	utilities.Post("/readings", ctrl.RecordUtilityBatch)
	utilities.Get("/readings/latest/:roomId", ctrl.GetLatestReading)
	utilities.Put("/config", ctrl.UpsertUtilityConfig)

	invoices := r.Group("/invoices")
	invoices.Post("/generate", ctrl.GenerateMonthlyInvoices)
	invoices.Post("/:id/cancel", ctrl.CancelInvoice)

	r.Get("/contracts/:id/invoices", ctrl.GetContractInvoices)
}
