// file: internals/features/dorm/transfers/controller/transfer_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ktx_backend/internals/constants"
	contractDto "ktx_backend/internals/features/dorm/contracts/dto"
	billingDto "ktx_backend/internals/features/finance/billing/dto"

	"ktx_backend/internals/features/dorm/transfers/dto"
	"ktx_backend/internals/features/dorm/transfers/service"
	helper "ktx_backend/internals/helpers"
)

type TransferController struct {
	DB *gorm.DB
}

func NewTransferController(db *gorm.DB) *TransferController {
	return &TransferController{DB: db}
}

/* =========================================================
   STUDENT
========================================================= */

// POST /api/u/transfers
func (ctrl *TransferController) Create(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var body dto.CreateTransferRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	transfer, err := service.CreateTransferRequest(c.Context(), ctrl.DB, userID, body.TargetBedID, body.Reason)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Đã gửi yêu cầu chuyển phòng", dto.ToTransferResponse(transfer))
}

// GET /api/u/transfers/me
func (ctrl *TransferController) GetMine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	transfers, err := service.ListTransfersByStudent(c.Context(), ctrl.DB, userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", dto.ToTransferResponses(transfers))
}

// GET /api/u/transfers/:id
func (ctrl *TransferController) GetByID(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	transferID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID yêu cầu không hợp lệ")
	}

	transfer, err := service.GetTransferByID(c.Context(), ctrl.DB, transferID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	role := helper.GetUserRole(c)
	if transfer.TransferStudentID != userID && role != constants.RoleAdmin && role != constants.RoleManager {
		return helper.JsonError(c, fiber.StatusForbidden, "Bạn không có quyền xem yêu cầu này")
	}
	return helper.JsonOK(c, "", dto.ToTransferResponse(transfer))
}

/* =========================================================
   ADMIN
========================================================= */

// GET /api/a/transfers/pending
func (ctrl *TransferController) ListPending(c *fiber.Ctx) error {
	transfers, err := service.ListPendingTransfers(c.Context(), ctrl.DB)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", dto.ToTransferResponses(transfers))
}

// POST /api/a/transfers/:id/approve
func (ctrl *TransferController) Approve(c *fiber.Ctx) error {
	transferID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID yêu cầu không hợp lệ")
	}

	var body dto.ReviewTransferRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	result, err := service.ApproveTransfer(c.Context(), ctrl.DB, transferID, body.TargetBedID, body.AdminResponse)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	payload := fiber.Map{
		"transfer":           dto.ToTransferResponse(result.Transfer),
		"old_contract":       contractDto.ToContractResponse(result.OldContract),
		"new_contract":       contractDto.ToContractResponse(result.NewContract),
		"refund_rent_amount": result.RefundRentAmount,
	}
	if result.SettlementInvoice != nil {
		payload["settlement_invoice"] = billingDto.ToInvoiceResponse(result.SettlementInvoice)
	}
	return helper.JsonUpdated(c, "Đã duyệt chuyển phòng", payload)
}

// POST /api/a/transfers/:id/reject
func (ctrl *TransferController) Reject(c *fiber.Ctx) error {
	transferID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID yêu cầu không hợp lệ")
	}

	var body dto.ReviewTransferRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}

	transfer, err := service.RejectTransfer(c.Context(), ctrl.DB, transferID, body.AdminResponse)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Đã từ chối yêu cầu chuyển phòng", dto.ToTransferResponse(transfer))
}
