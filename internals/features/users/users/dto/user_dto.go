// file: internals/features/users/users/dto/user_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"ktx_backend/internals/features/users/users/model"
)

type UpdateProfileRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Gender      *string `json:"gender" validate:"omitempty,oneof=NAM NU"`
	StudentCode *string `json:"student_code" validate:"omitempty,max=20"`
}

type UserResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	StudentCode *string   `json:"student_code,omitempty"`
	Gender      *string   `json:"gender,omitempty"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToUserResponse(m *model.User) UserResponse {
	return UserResponse{
		UserID:      m.UserID,
		FullName:    m.UserFullName,
		Email:       m.UserEmail,
		StudentCode: m.UserStudentCode,
		Gender:      m.UserGender,
		Role:        m.UserRole,
		IsActive:    m.UserIsActive,
		CreatedAt:   m.CreatedAt,
	}
}
