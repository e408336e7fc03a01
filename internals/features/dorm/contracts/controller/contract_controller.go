// file: internals/features/dorm/contracts/controller/contract_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ktx_backend/internals/constants"
	"ktx_backend/internals/features/dorm/contracts/dto"
	contractModel "ktx_backend/internals/features/dorm/contracts/model"
	"ktx_backend/internals/features/dorm/contracts/service"
	helper "ktx_backend/internals/helpers"
)

type ContractController struct {
	DB *gorm.DB
}

func NewContractController(db *gorm.DB) *ContractController {
	return &ContractController{DB: db}
}

/* =========================================================
   STUDENT
========================================================= */

// POST /api/u/contracts/book
func (ctrl *ContractController) BookBed(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var body dto.BookBedRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	// admin đặt hộ thì cho phép chỉ định student_id
	studentID := userID
	if body.StudentID != nil {
		role := helper.GetUserRole(c)
		if role != constants.RoleAdmin && role != constants.RoleManager {
			return helper.JsonError(c, fiber.StatusForbidden, "Bạn không được đặt giường cho người khác")
		}
		studentID = *body.StudentID
	}

	contract, err := service.BookBed(c.Context(), ctrl.DB, studentID, body.BedID, body.EndDate)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	// báo trước tổng tiền dự kiến cả kỳ để sinh viên cân nhắc
	months := service.CalculateMonths(contract.ContractStartDate, contract.ContractEndDate)
	return helper.JsonCreated(c, "Đặt giường thành công, chờ quản lý duyệt", fiber.Map{
		"contract":             dto.ToContractResponse(contract),
		"billed_months":        months,
		"estimated_rent_total": float64(months) * contract.ContractPricePerMonth,
		"deposit":              contract.ContractDepositAmount,
	})
}

// GET /api/u/contracts/me
func (ctrl *ContractController) GetMyContracts(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	contracts, err := service.ListByStudent(c.Context(), ctrl.DB, userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", dto.ToContractResponses(contracts))
}

// GET /api/u/contracts/me/current — hợp đồng đang hiệu lực (CHO_DUYET/DANG_O)
func (ctrl *ContractController) GetMyCurrentContract(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	contract, err := service.FindOpenByStudent(c.Context(), ctrl.DB, userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if contract == nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Bạn chưa có hợp đồng hiệu lực")
	}
	return helper.JsonOK(c, "", dto.ToContractResponse(contract))
}

// GET /api/u/contracts/:id
func (ctrl *ContractController) GetByID(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID hợp đồng không hợp lệ")
	}

	contract, err := service.GetByID(c.Context(), ctrl.DB, contractID, userID, helper.GetUserRole(c))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", dto.ToContractResponse(contract))
}

// DELETE /api/u/contracts/:id — sinh viên rút lại yêu cầu chờ duyệt
func (ctrl *ContractController) Cancel(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID hợp đồng không hợp lệ")
	}

	contract, err := service.CancelContract(c.Context(), ctrl.DB, contractID, userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "Đã hủy yêu cầu đặt phòng", dto.ToContractResponse(contract))
}

// GET /api/u/contracts/:id/liquidation
func (ctrl *ContractController) GetLiquidation(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID hợp đồng không hợp lệ")
	}

	// quyền xem đi theo quyền xem hợp đồng
	if _, err := service.GetByID(c.Context(), ctrl.DB, contractID, userID, helper.GetUserRole(c)); err != nil {
		return helper.JsonFromError(c, err)
	}
	record, err := service.GetLiquidationByContract(c.Context(), ctrl.DB, contractID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", dto.ToLiquidationResponse(record))
}

/* =========================================================
   ADMIN
========================================================= */

// GET /api/a/contracts?status=&page=&per_page=
func (ctrl *ContractController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.WithContext(c.Context()).Model(&contractModel.Contract{})
	if status := c.Query("status"); status != "" {
		q = q.Where("contract_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonFromError(c, err)
	}

	var contracts []contractModel.Contract
	if err := q.Order("contract_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&contracts).Error; err != nil {
		return helper.JsonFromError(c, err)
	}

	return helper.JsonList(c, "", dto.ToContractResponses(contracts),
		helper.BuildPagination(total, paging.Page, paging.PerPage))
}

// PATCH /api/a/contracts/:id/status
func (ctrl *ContractController) UpdateStatus(c *fiber.Ctx) error {
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID hợp đồng không hợp lệ")
	}

	var body dto.UpdateContractStatusRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	contract, err := service.UpdateStatus(c.Context(), ctrl.DB, contractID, body.Status)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Cập nhật trạng thái hợp đồng thành công", dto.ToContractResponse(contract))
}

// POST /api/a/contracts/:id/liquidate
func (ctrl *ContractController) Liquidate(c *fiber.Ctx) error {
	adminID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID hợp đồng không hợp lệ")
	}

	var body dto.LiquidateContractRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	record, err := service.LiquidateContract(c.Context(), ctrl.DB, contractID, adminID,
		body.PenaltyAmount, body.DamageFee, body.Notes)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Thanh lý hợp đồng thành công", dto.ToLiquidationResponse(record))
}
