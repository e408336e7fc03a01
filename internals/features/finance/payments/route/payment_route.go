// file: internals/features/finance/payments/route/payment_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ktx_backend/internals/features/finance/payments/controller"
)

// PaymentPublicRoutes: callback server-to-server của gateway + trang
// redirect. Không qua auth — chữ ký HMAC là lớp xác thực.
func PaymentPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewPaymentController(db)

	payments := r.Group("/payments")
	payments.Post("/ipn", ctrl.HandleIPN)
	payments.Get("/return", ctrl.HandleReturn)
	payments.Post("/midtrans/notification", ctrl.HandleMidtransNotification)
}

func PaymentUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewPaymentController(db)

	payments := r.Group("/payments")
	payments.Post("/create-url", ctrl.CreatePaymentURL)
	payments.Post("/midtrans/snap-token", ctrl.CreateSnapToken)
}

func PaymentAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewPaymentController(db)

	r.Post("/payments", ctrl.RecordPayment)
	r.Get("/invoices/:id/payments", ctrl.ListByInvoice)
}
