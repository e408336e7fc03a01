// file: internals/features/finance/payments/controller/payment_controller.go
package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ktx_backend/internals/configs"
	billingModel "ktx_backend/internals/features/finance/billing/model"
	"ktx_backend/internals/features/finance/payments/dto"
	"ktx_backend/internals/features/finance/payments/service"
	helper "ktx_backend/internals/helpers"
	userModel "ktx_backend/internals/features/users/users/model"
)

type PaymentController struct {
	DB      *gorm.DB
	Gateway *service.GatewayService
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{
		DB: db,
		Gateway: &service.GatewayService{
			Secret:    configs.PaymentSecretKey,
			PayURL:    configs.GetEnv("PAYMENT_GATEWAY_URL", "https://sandbox.vbank.example.vn/checkout"),
			ReturnURL: configs.GetEnv("PAYMENT_RETURN_URL", ""),
		},
	}
}

/* =========================================================
   ADMIN (thu ngân)
========================================================= */

// POST /api/a/payments — ghi nhận tiền mặt / chuyển khoản
func (ctrl *PaymentController) RecordPayment(c *fiber.Ctx) error {
	var body dto.RecordPaymentRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	payment, err := service.ProcessPayment(c.Context(), ctrl.DB, body.InvoiceID, body.Amount, body.Method, body.TransactionID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Đã ghi nhận thanh toán", dto.ToPaymentResponse(payment))
}

// GET /api/a/invoices/:id/payments
func (ctrl *PaymentController) ListByInvoice(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID hóa đơn không hợp lệ")
	}
	payments, err := service.ListPaymentsByInvoice(c.Context(), ctrl.DB, invoiceID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", dto.ToPaymentResponses(payments))
}

/* =========================================================
   STUDENT (thanh toán online)
========================================================= */

// POST /api/u/payments/create-url
func (ctrl *PaymentController) CreatePaymentURL(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var body dto.CreatePaymentURLRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	var user userModel.User
	if err := ctrl.DB.WithContext(c.Context()).First(&user, "user_id = ?", userID).Error; err != nil {
		return helper.JsonFromError(c, err)
	}

	payURL, err := ctrl.Gateway.CreatePaymentURL(c.Context(), ctrl.DB, body.InvoiceID, c.IP(), user.UserFullName)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", fiber.Map{"payment_url": payURL})
}

// POST /api/u/payments/midtrans/snap-token
func (ctrl *PaymentController) CreateSnapToken(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var body dto.CreatePaymentURLRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	var user userModel.User
	if err := ctrl.DB.WithContext(c.Context()).First(&user, "user_id = ?", userID).Error; err != nil {
		return helper.JsonFromError(c, err)
	}

	token, redirectURL, err := service.GenerateSnapToken(c.Context(), ctrl.DB, body.InvoiceID, user.UserFullName, user.UserEmail)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", fiber.Map{"token": token, "redirect_url": redirectURL})
}

/* =========================================================
   PUBLIC (gateway server-to-server + redirect)
========================================================= */

// POST /api/payments/ipn — notify của cổng ngân hàng ảo.
// Body là JSON phẳng; số tiền đến dưới dạng số nên phải normalize
// trước khi verify chữ ký.
func (ctrl *PaymentController) HandleIPN(c *fiber.Ctx) error {
	var raw map[string]any
	if err := c.BodyParser(&raw); err != nil {
		return c.Status(fiber.StatusOK).JSON(service.IPNAck{RspCode: "99", Message: "Invalid payload"})
	}
	params := service.NormalizeParams(raw)
	ack := ctrl.Gateway.ProcessIPN(c.Context(), ctrl.DB, params)
	// cổng chỉ đọc body, luôn trả HTTP 200
	return c.Status(fiber.StatusOK).JSON(ack)
}

// GET /api/payments/return — người dùng redirect về sau khi trả.
// Query string mang cùng bộ field đã ký như IPN; verify xong mới tin
// orderId. IPN có thể tới chậm hơn redirect vài trăm ms nên poll ngắn
// trước khi trả "pending".
func (ctrl *PaymentController) HandleReturn(c *fiber.Ctx) error {
	params := c.Queries()
	if !ctrl.Gateway.VerifySignature(params) {
		return helper.JsonError(c, fiber.StatusBadRequest, "Chữ ký không hợp lệ")
	}

	invoiceID, err := uuid.Parse(params["orderId"])
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "orderId không hợp lệ")
	}

	if params["responseCode"] != "00" {
		return helper.JsonOK(c, "Giao dịch không thành công phía ngân hàng", fiber.Map{
			"invoice_id": invoiceID,
			"status":     billingModel.InvoiceStatusUnpaid,
		})
	}

	for i := 0; i < 5; i++ {
		var invoice billingModel.Invoice
		if err := ctrl.DB.WithContext(c.Context()).
			First(&invoice, "invoice_id = ?", invoiceID).Error; err != nil {
			return helper.JsonError(c, fiber.StatusNotFound, "Hóa đơn không tồn tại")
		}
		if invoice.InvoiceStatus == billingModel.InvoiceStatusPaid ||
			invoice.InvoiceStatus == billingModel.InvoiceStatusPartial {
			return helper.JsonOK(c, "Thanh toán thành công", fiber.Map{
				"invoice_id": invoice.InvoiceID,
				"status":     invoice.InvoiceStatus,
			})
		}
		time.Sleep(500 * time.Millisecond)
	}

	return helper.JsonOK(c, "Hệ thống chưa nhận được xác nhận từ ngân hàng, vui lòng kiểm tra lại sau", fiber.Map{
		"invoice_id": invoiceID,
		"status":     billingModel.InvoiceStatusUnpaid,
	})
}

// POST /api/payments/midtrans/notification
func (ctrl *PaymentController) HandleMidtransNotification(c *fiber.Ctx) error {
	var payload map[string]any
	if err := c.BodyParser(&payload); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if err := service.HandleMidtransNotification(c.Context(), ctrl.DB, payload); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", nil)
}
