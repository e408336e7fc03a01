// file: internals/features/dorm/services/controller/service_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ktx_backend/internals/features/dorm/services/dto"
	servicesModel "ktx_backend/internals/features/dorm/services/model"
	"ktx_backend/internals/features/dorm/services/service"
	helper "ktx_backend/internals/helpers"
)

type ServiceController struct {
	DB *gorm.DB
}

func NewServiceController(db *gorm.DB) *ServiceController {
	return &ServiceController{DB: db}
}

// GET /api/u/services
func (ctrl *ServiceController) ListPackages(c *fiber.Ctx) error {
	pkgs, err := service.ListActivePackages(c.Context(), ctrl.DB)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", pkgs)
}

// POST /api/u/services/subscribe
func (ctrl *ServiceController) Subscribe(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var body dto.SubscribeRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	sub, err := service.Subscribe(c.Context(), ctrl.DB, userID, body.ServiceID, body.Quantity, body.EndDate, body.Note)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Đã đăng ký dịch vụ", sub)
}

// DELETE /api/u/services/subscriptions/:id
func (ctrl *ServiceController) Unsubscribe(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	subID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID đăng ký không hợp lệ")
	}

	sub, err := service.Unsubscribe(c.Context(), ctrl.DB, userID, subID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "Đã hủy đăng ký dịch vụ", sub)
}

// GET /api/u/services/subscriptions/me
func (ctrl *ServiceController) MySubscriptions(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	subs, err := service.ListMySubscriptions(c.Context(), ctrl.DB, userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", subs)
}

// POST /api/a/services — admin tạo gói
func (ctrl *ServiceController) CreatePackage(c *fiber.Ctx) error {
	var body dto.CreateServicePackageRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	pkg := servicesModel.ServicePackage{
		ServicePackageName:         body.Name,
		ServicePackageDescription:  body.Description,
		ServicePackageType:         body.Type,
		ServicePackagePrice:        body.Price,
		ServicePackageBillingCycle: body.BillingCycle,
		ServicePackageIsActive:     true,
	}
	if err := ctrl.DB.WithContext(c.Context()).Create(&pkg).Error; err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Đã tạo gói dịch vụ", pkg)
}
