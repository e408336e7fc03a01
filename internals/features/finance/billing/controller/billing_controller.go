// file: internals/features/finance/billing/controller/billing_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ktx_backend/internals/constants"
	contractModel "ktx_backend/internals/features/dorm/contracts/model"
	"ktx_backend/internals/features/finance/billing/dto"
	billingModel "ktx_backend/internals/features/finance/billing/model"
	"ktx_backend/internals/features/finance/billing/service"
	helper "ktx_backend/internals/helpers"
)

type BillingController struct {
	DB    *gorm.DB
	Rates service.RateSource
}

func NewBillingController(db *gorm.DB) *BillingController {
	return &BillingController{DB: db, Rates: &service.ConfigRateSource{DB: db}}
}

/* =========================================================
   STUDENT
========================================================= */

// GET /api/u/invoices/me — hóa đơn của mọi hợp đồng mình từng có
func (ctrl *BillingController) GetMyInvoices(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var contractIDs []uuid.UUID
	if err := ctrl.DB.WithContext(c.Context()).Model(&contractModel.Contract{}).
		Where("contract_student_id = ?", userID).
		Pluck("contract_id", &contractIDs).Error; err != nil {
		return helper.JsonFromError(c, err)
	}
	if len(contractIDs) == 0 {
		return helper.JsonOK(c, "", []dto.InvoiceResponse{})
	}

	var invoices []billingModel.Invoice
	if err := ctrl.DB.WithContext(c.Context()).
		Where("invoice_contract_id IN ?", contractIDs).
		Order("invoice_created_at DESC").
		Find(&invoices).Error; err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", dto.ToInvoiceResponses(invoices))
}

// GET /api/u/invoices/:id
func (ctrl *BillingController) GetInvoice(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID hóa đơn không hợp lệ")
	}

	invoice, err := service.GetInvoiceByID(c.Context(), ctrl.DB, invoiceID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	// sinh viên chỉ xem hóa đơn gắn hợp đồng của mình; hóa đơn phòng
	// (điện nước) mở cho mọi người ở để đối soát chia tiền
	role := helper.GetUserRole(c)
	if role == constants.RoleStudent && invoice.InvoiceContractID != nil {
		var owned int64
		if err := ctrl.DB.WithContext(c.Context()).Model(&contractModel.Contract{}).
			Where("contract_id = ? AND contract_student_id = ?", *invoice.InvoiceContractID, userID).
			Count(&owned).Error; err != nil {
			return helper.JsonFromError(c, err)
		}
		if owned == 0 {
			return helper.JsonError(c, fiber.StatusForbidden, "Bạn không có quyền xem hóa đơn này")
		}
	}
	return helper.JsonOK(c, "", dto.ToInvoiceResponse(invoice))
}

// GET /api/u/rooms/:id/invoices — hóa đơn điện nước của phòng
func (ctrl *BillingController) GetRoomInvoices(c *fiber.Ctx) error {
	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID phòng không hợp lệ")
	}
	invoices, err := service.ListInvoicesByRoom(c.Context(), ctrl.DB, roomID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", dto.ToInvoiceResponses(invoices))
}

/* =========================================================
   ADMIN
========================================================= */

// POST /api/a/utilities/readings — ghi chỉ số hàng loạt
func (ctrl *BillingController) RecordUtilityBatch(c *fiber.Ctx) error {
	adminID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var body dto.RecordUtilityBatchRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	items := make([]service.UtilityReadingInput, 0, len(body.Readings))
	for _, r := range body.Readings {
		items = append(items, service.UtilityReadingInput{
			RoomID:        r.RoomID,
			ElectricIndex: r.ElectricIndex,
			WaterIndex:    r.WaterIndex,
		})
	}

	readings, err := service.RecordUtilityBatch(c.Context(), ctrl.DB, adminID, body.Month, body.Year, items)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Đã chốt chỉ số công tơ", readings)
}

// GET /api/a/utilities/readings/latest/:roomId
func (ctrl *BillingController) GetLatestReading(c *fiber.Ctx) error {
	roomID, err := uuid.Parse(c.Params("roomId"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID phòng không hợp lệ")
	}
	reading, err := service.GetLatestReading(c.Context(), ctrl.DB, roomID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", reading)
}

// POST /api/a/invoices/generate — phát hành hóa đơn kỳ
func (ctrl *BillingController) GenerateMonthlyInvoices(c *fiber.Ctx) error {
	var body dto.GenerateMonthlyInvoicesRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	result, err := service.GenerateMonthlyInvoices(c.Context(), ctrl.DB, ctrl.Rates, body.Month, body.Year)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Phát hành hóa đơn kỳ hoàn tất", dto.GenerateInvoicesResponse{
		Month:           body.Month,
		Year:            body.Year,
		UtilityCreated:  result.UtilityCreated,
		PersonalCreated: result.PersonalCreated,
		Skipped:         result.Skipped,
	})
}

// POST /api/a/invoices/:id/cancel
func (ctrl *BillingController) CancelInvoice(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID hóa đơn không hợp lệ")
	}

	var body dto.CancelInvoiceRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	invoice, err := service.CancelInvoice(c.Context(), ctrl.DB, invoiceID, body.Reason)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Đã hủy hóa đơn", dto.ToInvoiceResponse(invoice))
}

// PUT /api/a/utilities/config — cập nhật đơn giá điện/nước
func (ctrl *BillingController) UpsertUtilityConfig(c *fiber.Ctx) error {
	var body dto.UpdateUtilityConfigRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	cfg, err := service.UpsertUtilityConfig(c.Context(), ctrl.DB, body.Type, body.PricePerUnit)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Đã cập nhật đơn giá", cfg)
}

// GET /api/a/contracts/:id/invoices
func (ctrl *BillingController) GetContractInvoices(c *fiber.Ctx) error {
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID hợp đồng không hợp lệ")
	}
	invoices, err := service.ListInvoicesByContract(c.Context(), ctrl.DB, contractID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", dto.ToInvoiceResponses(invoices))
}
