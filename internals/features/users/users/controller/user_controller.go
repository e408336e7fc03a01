// file: internals/features/users/users/controller/user_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ktx_backend/internals/features/users/users/dto"
	userModel "ktx_backend/internals/features/users/users/model"
	helper "ktx_backend/internals/helpers"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// GET /api/u/users/me
func (ctrl *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var user userModel.User
	if err := ctrl.DB.WithContext(c.Context()).First(&user, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "Tài khoản không tồn tại")
		}
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", dto.ToUserResponse(&user))
}

// PATCH /api/u/users/me — cập nhật hồ sơ hiển thị.
// Giới tính bắt buộc khai báo trước khi đặt phòng không HON_HOP.
func (ctrl *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var body dto.UpdateProfileRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload không hợp lệ")
	}
	if fieldErrs := helper.ValidateStruct(body); fieldErrs != nil {
		return helper.JsonValidationError(c, fieldErrs)
	}

	updates := map[string]any{}
	if body.FullName != nil {
		updates["user_full_name"] = *body.FullName
	}
	if body.Gender != nil {
		updates["user_gender"] = *body.Gender
	}
	if body.StudentCode != nil {
		updates["user_student_code"] = *body.StudentCode
	}
	if len(updates) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Không có trường nào để cập nhật")
	}

	if err := ctrl.DB.WithContext(c.Context()).Model(&userModel.User{}).
		Where("user_id = ?", userID).
		Updates(updates).Error; err != nil {
		return helper.JsonFromError(c, err)
	}

	var user userModel.User
	if err := ctrl.DB.WithContext(c.Context()).First(&user, "user_id = ?", userID).Error; err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Đã cập nhật hồ sơ", dto.ToUserResponse(&user))
}
